package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Manifest describes one bake run.
type Manifest struct {
	RunID    string          `json:"run_id"`
	Finished time.Time       `json:"finished"`
	Jobs     []ManifestEntry `json:"jobs"`
}

// ManifestEntry represents one job in the output manifest.
type ManifestEntry struct {
	Name   string `json:"name"`
	Frames int    `json:"frames"`
	Poses  string `json:"poses,omitempty"`
	Image  string `json:"image,omitempty"`
	Misses int    `json:"misses,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewRunID returns a fresh identifier for a bake run.
func NewRunID() string { return uuid.NewString() }

// WriteManifest writes manifest.json for a finished run.
func WriteManifest(path, runID string, results []Result) error {
	m := Manifest{RunID: runID, Finished: time.Now().UTC(), Jobs: make([]ManifestEntry, len(results))}
	for i, r := range results {
		m.Jobs[i] = ManifestEntry{
			Name:   r.Name,
			Frames: r.Frames,
			Poses:  r.Poses,
			Image:  r.Image,
			Misses: r.Misses,
			Error:  r.Error,
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("batch: write %s: %w", path, err)
	}
	return nil
}
