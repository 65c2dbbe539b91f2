package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bonedriver/internal/batch"
	"bonedriver/internal/config"
	"bonedriver/internal/preview"
)

type bakeFlags struct {
	configPath string
	flags      config.Flags
	power      float64
	scale      float64
	job        config.JobConfig
}

func newBakeCmd(a *app) *cobra.Command {
	var f bakeFlags
	cmd := &cobra.Command{
		Use:   "bake",
		Short: "Bake clips into bone pose tracks",
		Long: `Runs every job of a bake config (or the single job given by flags) through
the driver and writes <name>.pose.json per job, an optional preview image and
manifest.json into the output directory.

Example:
  bonedriver bake -c bake.yaml --workers 4 --preview --format webp
  bonedriver bake --rig kevin.yaml --glossary kevin.json --clip hello.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("power") {
				f.flags.Power = &f.power
			}
			if cmd.Flags().Changed("scale") {
				f.flags.Scale = &f.scale
			}
			return runBake(cmd, a, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "Bake config file (YAML)")
	fl.StringVarP(&f.flags.OutputDir, "out", "o", "", "Output directory")
	fl.IntVarP(&f.flags.Workers, "workers", "w", 0, "Parallel jobs (default: NumCPU)")
	fl.BoolVar(&f.flags.Preview, "preview", false, "Write a preview image per job")
	fl.StringVar(&f.flags.Format, "format", "", "Preview format: webp, tga or png")
	fl.BoolVar(&f.flags.Amplify, "amplify", false, "Enable viseme amplification")
	fl.Float64Var(&f.power, "power", 1, "Viseme curve power (overrides the config)")
	fl.Float64Var(&f.scale, "scale", 1, "Viseme curve scale (overrides the config)")
	fl.StringVar(&f.job.Name, "name", "", "Job name (single job mode)")
	fl.StringVar(&f.job.Rig, "rig", "", "Rig description (single job mode)")
	fl.StringVar(&f.job.Glossary, "glossary", "", "Expression glossary (single job mode)")
	fl.StringVar(&f.job.Constraints, "constraints", "", "Constraint table (single job mode)")
	fl.StringVar(&f.job.Clip, "clip", "", "Weight clip (single job mode)")
	return cmd
}

func runBake(cmd *cobra.Command, a *app, f bakeFlags) error {
	var cfg config.Config
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return err
		}
	}
	if f.job.Rig != "" || f.job.Clip != "" {
		cfg.AddJob(f.job)
	}
	cfg.Resolve(f.flags)
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	popts := preview.DefaultOptions()
	popts.Size = cfg.Preview.Size
	popts.Supersample = cfg.Preview.Supersample
	if cfg.Preview.Enabled && cfg.Preview.Backdrop != "" {
		if popts.Backdrop, err = preview.LoadBackdrop(cfg.Preview.Backdrop); err != nil {
			return err
		}
	}

	jobs := make([]batch.Job, len(cfg.Jobs))
	for i, j := range cfg.Jobs {
		jobs[i] = batch.Job{Name: j.Name, Rig: j.Rig, Glossary: j.Glossary, Constraints: j.Constraints, Clip: j.Clip}
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := batch.NewRunID()
	a.logger.Info("bake started",
		zap.String("run_id", runID),
		zap.Int("jobs", len(jobs)),
		zap.Int("workers", cfg.Workers),
		zap.String("output", cfg.OutputDir))

	results := batch.Run(ctx, batch.Config{
		OutputDir:     cfg.OutputDir,
		Workers:       cfg.Workers,
		Options:       opts,
		Preview:       cfg.Preview.Enabled,
		PreviewFormat: cfg.Preview.Format,
		PreviewFrame:  cfg.Preview.Frame,
		PreviewOpts:   popts,
		Logger:        a.logger,
	}, jobs)

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, runID, results); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s: %s\n", r.Name, r.Error)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Baked %d/%d jobs into %s\n", len(results)-failed, len(results), cfg.OutputDir)
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(results))
	}
	return nil
}
