package download

import (
	"fmt"
	"os"
	"path/filepath"

	"sellerhub-agent/internal/domain/model"
	"sellerhub-agent/internal/infra/metrics"
)

// Saver writes finished artifacts into the download directory. The write
// is temp-file-then-rename so a crash or fetch error never leaves a
// half-written spreadsheet behind, and repeated saves never leak temp
// files.
type Saver struct {
	dir string
}

func NewSaver(dir string) (*Saver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	return &Saver{dir: dir}, nil
}

// Save writes the artifact and returns its final path.
func (s *Saver) Save(a *model.Artifact) (string, error) {
	if a == nil || a.Filename == "" {
		metrics.IncDownload("failed", 0)
		return "", fmt.Errorf("artifact has no filename")
	}

	tmp, err := os.CreateTemp(s.dir, ".artifact-*")
	if err != nil {
		metrics.IncDownload("failed", 0)
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(a.Content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		metrics.IncDownload("failed", 0)
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		metrics.IncDownload("failed", 0)
		return "", fmt.Errorf("close artifact: %w", err)
	}

	final := filepath.Join(s.dir, filepath.Base(a.Filename))
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		metrics.IncDownload("failed", 0)
		return "", fmt.Errorf("move artifact into place: %w", err)
	}
	metrics.IncDownload("saved", len(a.Content))
	return final, nil
}

// FileName builds the saved-file naming convention:
// {semantic-label}_{serverJobID}.xlsx
func FileName(label, serverJobID string) string {
	return fmt.Sprintf("%s_%s.xlsx", label, serverJobID)
}
