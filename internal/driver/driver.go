// Package driver runs the per-frame expression pipeline for one character:
// viseme amplification, constraint propagation, bone posing and weight
// mirroring, in that order.
package driver

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"bonedriver/internal/blendshape"
	"bonedriver/internal/constraint"
	"bonedriver/internal/glossary"
	"bonedriver/internal/mirror"
	"bonedriver/internal/pose"
	"bonedriver/internal/viseme"
)

// ErrNotSetup is returned when an operation needs a completed Setup.
var ErrNotSetup = errors.New("driver: not set up")

// Host hands the driver the character's providers. The driver never searches
// for meshes or bones on its own.
type Host struct {
	Body    blendshape.Mesh   // base mesh whose weights drive everything
	Tongue  blendshape.Mesh   // optional second viseme source
	Targets []blendshape.Mesh // meshes that receive mirrored weights
	Bones   pose.Resolver
}

// Driver owns the setup tables and the enabled stage list of one character.
type Driver struct {
	mu     sync.Mutex
	host   Host
	logger *zap.Logger

	glossaryDoc   []byte
	constraintDoc []byte
	setupOpts     Options
	opts          Options
	ready         bool

	glossary    *glossary.Glossary
	constraints []constraint.UpdateConstraint
	synth       *pose.Synthesizer
	prop        *constraint.Propagator
	amp         *viseme.Amplifier
	mirror      *mirror.Table
	stages      []stage
}

// New creates an idle driver for host.
func New(host Host, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{host: host, logger: logger}
}

// SetupFiles reads both documents from disk and calls Setup. An empty
// constraintPath means no constraint document.
func (d *Driver) SetupFiles(glossaryPath, constraintPath string, opts Options) error {
	gdoc, err := os.ReadFile(glossaryPath)
	if err != nil {
		return fmt.Errorf("driver: read glossary %s: %w", glossaryPath, err)
	}
	var cdoc []byte
	if constraintPath != "" {
		cdoc, err = os.ReadFile(constraintPath)
		if err != nil {
			return fmt.Errorf("driver: read constraints %s: %w", constraintPath, err)
		}
	}
	return d.Setup(gdoc, cdoc, opts)
}

// Setup parses the glossary and constraint documents and rebuilds every
// table. A constraint document is required when opts.Constraint is set. On
// error the previous setup stays in place.
func (d *Driver) Setup(glossaryDoc, constraintDoc []byte, opts Options) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setup(glossaryDoc, constraintDoc, opts)
}

func (d *Driver) setup(glossaryDoc, constraintDoc []byte, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if d.host.Body == nil {
		return errors.New("driver: host has no body mesh")
	}
	if d.host.Bones == nil {
		return errors.New("driver: host has no bone resolver")
	}

	g, err := glossary.Parse(glossaryDoc)
	if err != nil {
		return fmt.Errorf("driver: %w", err)
	}

	shapeCount := d.host.Body.BlendShapeCount()

	var list []constraint.UpdateConstraint
	if len(constraintDoc) > 0 {
		list, err = constraint.Parse(constraintDoc, blendshape.Lookup(d.host.Body))
		if err != nil {
			return fmt.Errorf("driver: %w", err)
		}
		var rejected []constraint.UpdateConstraint
		list, rejected = constraint.Validate(list, shapeCount)
		for _, u := range rejected {
			d.logger.Warn("constraint slot out of range",
				zap.Stringer("constraint", u),
				zap.Int("shapes", shapeCount))
		}
	} else if opts.Constraint {
		return errors.New("driver: constraints enabled but no constraint document given")
	}

	synth := pose.Bind(g, d.host.Bones, shapeCount, d.logger)
	prop := constraint.NewPropagator(list, opts.Proportional)
	amp := viseme.NewAmplifier(d.host.Body, d.host.Tongue)
	tbl := mirror.Build(d.host.Body, d.host.Targets, d.logger)

	d.glossaryDoc = append([]byte(nil), glossaryDoc...)
	d.constraintDoc = append([]byte(nil), constraintDoc...)
	d.setupOpts = opts
	d.glossary = g
	d.constraints = list
	d.synth = synth
	d.prop = prop
	d.amp = amp
	d.mirror = tbl
	d.ready = true
	d.applyOptions(opts)

	add, limit := prop.Len()
	d.logger.Info("driver setup complete",
		zap.Int("bones", len(synth.Driven())),
		zap.Int("unresolved", len(synth.Unresolved())),
		zap.Int("add_constraints", add),
		zap.Int("limit_constraints", limit),
		zap.Int("viseme_slots", amp.Slots()),
		zap.Int("mirror_targets", tbl.TargetCount()),
		zap.Strings("stages", d.stageNames()))
	return nil
}

// Rebuild restores the setup-time toggles, turns amplification off with a
// neutral curve and re-runs Setup on the stored documents.
func (d *Driver) Rebuild() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.ready {
		return ErrNotSetup
	}
	opts := d.setupOpts
	opts.Amplify = false
	opts.VisemePower = 1
	opts.VisemeScale = 1
	return d.setup(d.glossaryDoc, d.constraintDoc, opts)
}

// SetOptions changes the toggles and curve without re-parsing anything.
func (d *Driver) SetOptions(opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.prop != nil && opts.Proportional != d.opts.Proportional {
		d.prop = constraint.NewPropagator(d.constraints, opts.Proportional)
	}
	d.applyOptions(opts)
	return nil
}

// Options returns the live options.
func (d *Driver) Options() Options {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opts
}

// Frame runs the enabled stages once. It does nothing before Setup.
func (d *Driver) Frame() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.stages {
		s.run()
	}
}

// Stages lists the enabled stages in execution order.
func (d *Driver) Stages() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stageNames()
}

// BoneNames lists the glossary bones, resolved or not.
func (d *Driver) BoneNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.glossary == nil {
		return nil
	}
	return d.glossary.BoneNames()
}

// ExpressionsByBone maps each glossary bone to its expression names.
func (d *Driver) ExpressionsByBone() map[string][]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.glossary == nil {
		return map[string][]string{}
	}
	return d.glossary.ExpressionsByBone()
}

// Driven lists the bones that are posed every frame.
func (d *Driver) Driven() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.synth == nil {
		return nil
	}
	return d.synth.Driven()
}

// Unresolved lists the glossary bones missing from the host hierarchy.
func (d *Driver) Unresolved() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.synth == nil {
		return nil
	}
	return d.synth.Unresolved()
}
