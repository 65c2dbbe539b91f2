// Package batch bakes clips through the driver for many characters at once.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bonedriver/internal/clip"
	"bonedriver/internal/driver"
	"bonedriver/internal/logging"
	"bonedriver/internal/mathutil"
	"bonedriver/internal/preview"
	"bonedriver/internal/rig"
)

// Job names the input files of one bake.
type Job struct {
	Name        string
	Rig         string
	Glossary    string
	Constraints string // optional
	Clip        string
}

// Config holds the settings shared by every job of a run.
type Config struct {
	OutputDir string
	Workers   int
	Options   driver.Options

	Preview       bool
	PreviewFormat string
	PreviewFrame  int // negative counts from the end
	PreviewOpts   preview.Options

	Logger           *zap.Logger
	ProgressInterval time.Duration
}

// Result holds the outcome of one job. Paths are relative to the output dir.
type Result struct {
	Name    string
	Frames  int
	Poses   string
	Image   string
	Misses  int
	Success bool
	Error   string
}

// Track is the baked pose file: one pose per driven bone per clip frame.
type Track struct {
	Job    string       `json:"job"`
	Clip   string       `json:"clip"`
	FPS    float64      `json:"fps"`
	Bones  []string     `json:"bones"`
	Frames []TrackFrame `json:"frames"`
}

// TrackFrame lists bone poses in Track.Bones order.
type TrackFrame struct {
	Time  float64    `json:"time"`
	Poses []BonePose `json:"poses"`
}

// BonePose is a local position and [x, y, z, w] rotation.
type BonePose struct {
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`
}

// Run bakes all jobs using a bounded worker pool. Each job owns its character
// and driver. Once ctx is done no further jobs start, and jobs that did not
// finish report the context error.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	logger := logging.OrNop(cfg.Logger)
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = 2 * time.Second
	}

	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64
	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	var reporter sync.WaitGroup
	reporter.Add(1)
	go func() {
		defer reporter.Done()
		ticker := time.NewTicker(cfg.ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					logger.Info("progress",
						zap.Int64("done", p),
						zap.Int("total", total),
						zap.Float64("jobs_per_sec", rate))
				}
			}
		}
	}()

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	dispatched := 0
	for i := range jobs {
		if ctx.Err() != nil {
			break
		}
		dispatched++
		g.Go(func() error {
			results[i] = runJob(ctx, cfg, jobs[i], logger.With(zap.String("job", jobs[i].Name)))
			processed.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	close(done)
	reporter.Wait()

	for i := dispatched; i < total; i++ {
		results[i] = Result{Name: jobs[i].Name, Error: ctx.Err().Error()}
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	logger.Info("bake finished",
		zap.Int("jobs", total),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)))
	return results
}

func runJob(ctx context.Context, cfg Config, job Job, logger *zap.Logger) Result {
	res := Result{Name: job.Name}
	fail := func(err error) Result {
		logger.Warn("job failed", zap.Error(err))
		res.Error = err.Error()
		return res
	}

	ch, err := rig.Load(job.Rig)
	if err != nil {
		return fail(err)
	}
	c, err := clip.Load(job.Clip)
	if err != nil {
		return fail(err)
	}

	opts := cfg.Options
	if job.Constraints == "" && opts.Constraint {
		logger.Debug("no constraint document, constraint stage disabled")
		opts.Constraint = false
	}
	d := driver.New(HostFor(ch), logger)
	if err := d.SetupFiles(job.Glossary, job.Constraints, opts); err != nil {
		return fail(err)
	}

	bones := d.Driven()
	joints := make([]*rig.Joint, len(bones))
	for i, name := range bones {
		joints[i], _ = ch.Skeleton.Joint(name)
	}

	previewAt := -1
	if cfg.Preview {
		previewAt = frameIndex(cfg.PreviewFrame, c.Len())
	}

	track := Track{Job: job.Name, Clip: c.Name, FPS: c.FPS, Bones: bones}
	missMeshes := map[string]bool{}
	missShapes := map[string]bool{}
	var still *previewImage

	for i := 0; i < c.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		miss := c.Apply(i, ch)
		for _, m := range miss.Meshes {
			missMeshes[m] = true
		}
		for _, s := range miss.Shapes {
			missShapes[s] = true
		}

		d.Frame()

		frame := TrackFrame{Time: c.Frames[i].Time, Poses: make([]BonePose, len(joints))}
		for k, j := range joints {
			frame.Poses[k] = BonePose{
				Position: mathutil.Vec3ToArr(j.LocalPosition),
				Rotation: mathutil.QuatToXYZW(j.LocalRotation),
			}
		}
		track.Frames = append(track.Frames, frame)

		if i == previewAt {
			still = &previewImage{frame: i, img: preview.Render(ch, cfg.PreviewOpts)}
		}
	}

	if len(missMeshes)+len(missShapes) > 0 {
		res.Misses = len(missMeshes) + len(missShapes)
		logger.Warn("clip names not found on rig",
			zap.Strings("meshes", sortedKeys(missMeshes)),
			zap.Strings("shapes", sortedKeys(missShapes)))
	}

	res.Frames = len(track.Frames)
	res.Poses = job.Name + ".pose.json"
	if err := writeTrack(filepath.Join(cfg.OutputDir, res.Poses), track); err != nil {
		return fail(err)
	}

	if still != nil {
		res.Image = fmt.Sprintf("%s.%s", job.Name, cfg.PreviewFormat)
		if err := preview.Save(filepath.Join(cfg.OutputDir, res.Image), still.img, cfg.PreviewFormat); err != nil {
			res.Image = ""
			return fail(err)
		}
		logger.Debug("preview written", zap.Int("frame", still.frame), zap.String("image", res.Image))
	}

	res.Success = true
	return res
}

type previewImage struct {
	frame int
	img   *image.NRGBA
}

// frameIndex clamps i into [0, n), counting negative values from the end.
func frameIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n-1))
}

func writeTrack(path string, t Track) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write %s: %w", path, err)
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
