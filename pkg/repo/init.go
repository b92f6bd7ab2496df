package repo

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/odvcencio/grit/pkg/object"
)

// Init creates a new grit repository at path. The control directory is
// assembled under a temporary name and renamed into place, so a failed or
// interrupted init never leaves a partial .grit/ behind. Returns
// ErrRepositoryExists if a .grit/ directory is already present.
func Init(path string) (*Repo, error) {
	gritDir := filepath.Join(path, ControlDirName)

	if _, err := os.Stat(gritDir); err == nil {
		return nil, fmt.Errorf("init: %w at %s", ErrRepositoryExists, gritDir)
	}

	staging, err := os.MkdirTemp(path, ControlDirName+"-init-*")
	if err != nil {
		return nil, fmt.Errorf("init: tmpdir: %w", err)
	}
	defer os.RemoveAll(staging)

	dirs := []string{
		filepath.Join(staging, "objects"),
		filepath.Join(staging, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	cfg := DefaultConfig()
	head := fmt.Sprintf("ref: refs/heads/%s\n", cfg.Core.DefaultBranch)
	if err := os.WriteFile(filepath.Join(staging, "HEAD"), []byte(head), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, "index"), []byte("{\n  \"entries\": {}\n}"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write index: %w", err)
	}
	if err := writeConfigFile(filepath.Join(staging, "config.toml"), cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	if err := os.Rename(staging, gritDir); err != nil {
		// A concurrent init may have won the rename race.
		if _, statErr := os.Stat(gritDir); statErr == nil {
			return nil, fmt.Errorf("init: %w at %s", ErrRepositoryExists, gritDir)
		}
		return nil, fmt.Errorf("init: move control dir into place: %w", err)
	}

	log.WithField("dir", gritDir).Debug("repository initialized")
	return openAt(path, gritDir), nil
}

// Open searches upward from path for a .grit/ directory and opens the
// repository. Returns ErrRepositoryNotFound if none is found.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gritDir := filepath.Join(cur, ControlDirName)
		info, err := os.Stat(gritDir)
		if err == nil && info.IsDir() {
			return openAt(cur, gritDir), nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: %w (searched %s and parents)", ErrRepositoryNotFound, abs)
		}
		cur = parent
	}
}

func openAt(root, gritDir string) *Repo {
	r := &Repo{
		RootDir: root,
		GritDir: gritDir,
		Store:   object.NewStore(gritDir),
	}
	if cfg, err := r.ReadConfig(); err == nil {
		r.Store.SetCompressionLevel(cfg.Core.CompressionLevel)
	}
	return r
}
