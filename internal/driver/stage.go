package driver

const (
	StageAmplify    = "amplify"
	StageConstraint = "constraint"
	StageBones      = "bones"
	StageMirror     = "mirror"
)

type stage struct {
	name string
	run  func()
}

// applyOptions stores opts and rebuilds the ordered stage list. Caller holds mu.
func (d *Driver) applyOptions(opts Options) {
	if opts.Amplify != d.opts.Amplify && d.amp != nil {
		d.amp.Reset()
	}
	d.opts = opts
	d.stages = d.stages[:0]
	if !d.ready {
		return
	}

	if opts.Amplify {
		power, scale := opts.VisemePower, opts.VisemeScale
		d.stages = append(d.stages, stage{StageAmplify, func() { d.amp.Apply(power, scale) }})
	}
	if opts.Constraint {
		d.stages = append(d.stages, stage{StageConstraint, func() { d.prop.Apply(d.host.Body) }})
	}
	if opts.Bones {
		d.stages = append(d.stages, stage{StageBones, func() { d.synth.Apply(d.host.Body) }})
	}
	if opts.Expressions {
		d.stages = append(d.stages, stage{StageMirror, d.mirror.Apply})
	}
}

func (d *Driver) stageNames() []string {
	names := make([]string, len(d.stages))
	for i, s := range d.stages {
		names[i] = s.name
	}
	return names
}
