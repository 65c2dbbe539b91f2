package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"bonedriver/internal/constraint"
	"bonedriver/internal/driver"
	"bonedriver/internal/preview"
)

// Config holds the bake run description.
type Config struct {
	OutputDir string `yaml:"output_dir"`
	Workers   int    `yaml:"workers"`

	Driver  DriverConfig  `yaml:"driver"`
	Preview PreviewConfig `yaml:"preview"`
	Jobs    []JobConfig   `yaml:"jobs"`

	dir string
}

// DriverConfig mirrors driver.Options. Pointers tell "unset" from false.
type DriverConfig struct {
	Bones        *bool    `yaml:"bones"`
	Expressions  *bool    `yaml:"expressions"`
	Constraint   *bool    `yaml:"constraint"`
	Amplify      *bool    `yaml:"amplify"`
	VisemePower  *float64 `yaml:"viseme_power"`
	VisemeScale  *float64 `yaml:"viseme_scale"`
	Proportional string   `yaml:"proportional"`
}

// PreviewConfig controls the per-job preview image.
type PreviewConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Size        int    `yaml:"size"`
	Supersample int    `yaml:"supersample"`
	Format      string `yaml:"format"`
	Frame       int    `yaml:"frame"` // clip frame to render, -1 for the last
	Backdrop    string `yaml:"backdrop"`
}

// JobConfig names the files for one character bake.
type JobConfig struct {
	Name        string `yaml:"name"`
	Rig         string `yaml:"rig"`
	Glossary    string `yaml:"glossary"`
	Constraints string `yaml:"constraints"`
	Clip        string `yaml:"clip"`
}

// Flags holds CLI flag values that override config file settings.
// Nil curve values leave the file's settings alone.
type Flags struct {
	OutputDir string
	Workers   int
	Preview   bool
	Format    string
	Amplify   bool
	Power     *float64
	Scale     *float64
}

// DefaultConfig returns a config with every default filled in.
func DefaultConfig() Config {
	var c Config
	c.Resolve(Flags{})
	return c
}

// Load reads a YAML config file. Relative paths inside it resolve against the
// file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Resolve applies flag overrides, then fills empty fields with defaults.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = fromCwd(flags.OutputDir)
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Preview {
		c.Preview.Enabled = true
	}
	if flags.Format != "" {
		c.Preview.Format = flags.Format
	}
	if flags.Amplify {
		c.Driver.Amplify = boolPtr(true)
	}
	if flags.Power != nil {
		c.Driver.VisemePower = float64Ptr(*flags.Power)
	}
	if flags.Scale != nil {
		c.Driver.VisemeScale = float64Ptr(*flags.Scale)
	}

	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
	c.OutputDir = c.abs(c.OutputDir)
	c.Preview.Backdrop = c.abs(c.Preview.Backdrop)
	for i := range c.Jobs {
		j := &c.Jobs[i]
		j.Rig = c.abs(j.Rig)
		j.Glossary = c.abs(j.Glossary)
		j.Constraints = c.abs(j.Constraints)
		j.Clip = c.abs(j.Clip)
		if j.Name == "" {
			j.Name = strings.TrimSuffix(filepath.Base(j.Clip), filepath.Ext(j.Clip))
		}
	}

	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Preview.Size <= 0 {
		c.Preview.Size = 256
	}
	if c.Preview.Supersample <= 0 {
		c.Preview.Supersample = 2
	}
	if c.Preview.Format == "" {
		c.Preview.Format = preview.FormatWebP
	}
	if c.Driver.VisemePower == nil {
		c.Driver.VisemePower = float64Ptr(1)
	}
	if c.Driver.VisemeScale == nil {
		c.Driver.VisemeScale = float64Ptr(1)
	}
}

// AddJob appends a job given on the command line. Its relative paths resolve
// against the working directory, not the config file.
func (c *Config) AddJob(j JobConfig) {
	j.Rig = fromCwd(j.Rig)
	j.Glossary = fromCwd(j.Glossary)
	j.Constraints = fromCwd(j.Constraints)
	j.Clip = fromCwd(j.Clip)
	c.Jobs = append(c.Jobs, j)
}

// fromCwd makes p absolute against the working directory. Empty stays empty.
func fromCwd(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// abs joins a relative path onto the config directory. Empty stays empty.
func (c *Config) abs(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// Options converts the driver section into driver.Options.
func (c *Config) Options() (driver.Options, error) {
	opts := driver.DefaultOptions()
	setBool(&opts.Bones, c.Driver.Bones)
	setBool(&opts.Expressions, c.Driver.Expressions)
	setBool(&opts.Constraint, c.Driver.Constraint)
	setBool(&opts.Amplify, c.Driver.Amplify)
	if c.Driver.VisemePower != nil {
		opts.VisemePower = *c.Driver.VisemePower
	}
	if c.Driver.VisemeScale != nil {
		opts.VisemeScale = *c.Driver.VisemeScale
	}
	if c.Driver.Proportional != "" {
		p, err := constraint.ParseProportionalPolicy(c.Driver.Proportional)
		if err != nil {
			return driver.Options{}, fmt.Errorf("config: %w", err)
		}
		opts.Proportional = p
	}
	if err := opts.Validate(); err != nil {
		return driver.Options{}, fmt.Errorf("config: %w", err)
	}
	return opts, nil
}

// Validate checks a resolved config.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Options(); err != nil {
		errs = append(errs, err)
	}
	if _, err := preview.ParseFormat(c.Preview.Format); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	if len(c.Jobs) == 0 {
		errs = append(errs, errors.New("config: no jobs"))
	}
	seen := make(map[string]bool, len(c.Jobs))
	for i, j := range c.Jobs {
		switch {
		case j.Rig == "":
			errs = append(errs, fmt.Errorf("config: job %d: rig is required", i))
		case j.Glossary == "":
			errs = append(errs, fmt.Errorf("config: job %d: glossary is required", i))
		case j.Clip == "":
			errs = append(errs, fmt.Errorf("config: job %d: clip is required", i))
		}
		if j.Name != "" && seen[j.Name] {
			errs = append(errs, fmt.Errorf("config: job %d: duplicate name %q", i, j.Name))
		}
		seen[j.Name] = true
	}
	return errors.Join(errs...)
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func boolPtr(v bool) *bool { return &v }

func float64Ptr(v float64) *float64 { return &v }
