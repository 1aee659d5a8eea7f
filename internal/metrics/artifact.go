package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

// Header is carried by every metric artifact.
type Header struct {
	SourceCollection string    `json:"source_collection"`
	GeneratedAt      time.Time `json:"generated_at"`
	StartDate        string    `json:"start_date,omitempty"`
	EndDate          string    `json:"end_date,omitempty"`
}

// headered lets the engine stamp the shared header on any artifact that
// embeds one.
type headered interface {
	setHeader(Header)
}

func (h *Header) setHeader(v Header) { *h = v }

// ArtifactPath builds the canonical file path for one metric artifact.
// Unwindowed outputs go under results/, windowed recomputations under
// runtime/, so a windowed run never clobbers the canonical file the
// dashboard defaults to.
func ArtifactPath(dataDir string, pool string, queue, minFriends, number int, name string, w Window) string {
	tree := "results"
	if !w.IsZero() {
		tree = "runtime"
	}

	file := fmt.Sprintf("metrics_%02d_%s", number, name)
	if !w.IsZero() {
		file += fmt.Sprintf("_%s_to_%s", w.Start, w.End)
	}
	file += ".json"

	return filepath.Join(dataDir, tree,
		fmt.Sprintf("pool_%s", pool),
		fmt.Sprintf("q%d", queue),
		fmt.Sprintf("min%d", minFriends),
		file)
}

// WriteArtifact serializes payload to path atomically (temp file + rename).
func WriteArtifact(path string, payload interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("install artifact: %w", err)
	}
	return nil
}
