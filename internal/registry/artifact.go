package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cadenza-ml/cadenza-api/internal/logger"
	"github.com/cadenza-ml/cadenza-api/internal/seqmodel"
	"github.com/cadenza-ml/cadenza-api/internal/vocab"
)

const artifactSuffix = ".model.json"

// Artifact is the persisted training output for one genre: everything needed
// to resume generation without retraining.
type Artifact struct {
	Genre     string            `json:"genre"`
	Window    int               `json:"window"`
	Tokens    []string          `json:"tokens"` // vocabulary, in id order
	Model     seqmodel.Snapshot `json:"model"`
	SeedPool  [][]int           `json:"seed_pool"`
	TrainedAt time.Time         `json:"trained_at"`
}

// SaveArtifact writes one genre's artifact to <dir>/<genre>.model.json,
// creating the directory if needed. The write goes through a temp file and
// rename so a crashed save never leaves a truncated artifact behind.
func SaveArtifact(dir string, a Artifact) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create models dir: %w", err)
	}

	data, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("marshal artifact for %s: %w", a.Genre, err)
	}

	path := filepath.Join(dir, a.Genre+artifactSuffix)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact for %s: %w", a.Genre, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("finalize artifact for %s: %w", a.Genre, err)
	}
	return path, nil
}

// LoadArtifact reads and validates one artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	if a.Genre == "" || a.Window < 1 || len(a.Tokens) == 0 {
		return nil, fmt.Errorf("artifact %s is incomplete", path)
	}
	return &a, nil
}

// LoadDir loads every artifact in a directory into the registry. Missing
// directories are treated as an empty model store (fresh deployment), not an
// error. One unreadable artifact does not block the rest.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		logger.Info("Models directory absent, starting with empty registry", logger.Fields{
			"dir": dir,
		})
		return nil
	}
	if err != nil {
		return fmt.Errorf("read models dir %s: %w", dir, err)
	}

	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), artifactSuffix) {
			continue
		}
		path := filepath.Join(dir, ent.Name())
		a, err := LoadArtifact(path)
		if err != nil {
			logger.Error("Skipping unreadable model artifact", err, logger.Fields{
				"path": path,
			})
			continue
		}
		if err := r.RegisterArtifact(a); err != nil {
			logger.Error("Skipping invalid model artifact", err, logger.Fields{
				"path":  path,
				"genre": a.Genre,
			})
			continue
		}
		logger.Info("Loaded genre model", logger.Fields{
			"genre":  a.Genre,
			"vocab":  len(a.Tokens),
			"window": a.Window,
		})
	}
	return nil
}

// RegisterArtifact rebuilds the vocabulary and model from a loaded artifact
// and registers them.
func (r *Registry) RegisterArtifact(a *Artifact) error {
	v, err := vocab.FromTokens(a.Tokens)
	if err != nil {
		return err
	}
	m, err := seqmodel.FromSnapshot(a.Model)
	if err != nil {
		return err
	}
	if m.Config.Window != a.Window {
		return fmt.Errorf("artifact window %d does not match model config %d", a.Window, m.Config.Window)
	}
	r.Register(a.Genre, v, m, a.SeedPool)
	return nil
}
