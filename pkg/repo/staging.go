package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/grit/pkg/object"
)

// Staging holds the full staging area (index): a flat mapping from
// repo-relative forward-slash path to blob hash. It represents what the
// next commit will contain.
type Staging struct {
	Entries map[string]object.Hash `json:"entries"`
}

// indexPath returns the filesystem path to the staging index file.
func (r *Repo) indexPath() string {
	return filepath.Join(r.GritDir, "index")
}

// ReadStaging loads the staging area from .grit/index. A missing index file
// yields an empty Staging. An unreadable or corrupt index also yields an
// empty Staging with a logged warning: staged work is recoverable by
// re-staging, so recovery is deliberately lenient rather than fatal. The
// cost of that leniency is that corruption silently discards prior staged
// paths, which is why it is warned about rather than ignored.
func (r *Repo) ReadStaging() (*Staging, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("staging index unreadable, treating as empty")
		}
		return &Staging{Entries: make(map[string]object.Hash)}, nil
	}

	var stg Staging
	if err := json.Unmarshal(data, &stg); err != nil {
		log.WithError(err).Warn("staging index corrupt, treating as empty")
		return &Staging{Entries: make(map[string]object.Hash)}, nil
	}
	if stg.Entries == nil {
		stg.Entries = make(map[string]object.Hash)
	}
	return &stg, nil
}

// WriteStaging atomically writes the staging area to .grit/index.
func (r *Repo) WriteStaging(s *Staging) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("write staging: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(r.GritDir, ".index-tmp-*")
	if err != nil {
		return fmt.Errorf("write staging: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write staging: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write staging: close: %w", err)
	}

	if err := os.Rename(tmpName, r.indexPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write staging: rename: %w", err)
	}
	return nil
}

// pathKind is the staging-boundary classification of a filesystem path.
// It is determined once per path and switched over exhaustively.
type pathKind int

const (
	kindMissing pathKind = iota
	kindRegular
	kindDirectory
	kindOther
)

func classifyPath(absPath string) pathKind {
	info, err := os.Stat(absPath)
	if err != nil {
		// Stat follows symlinks; a path that Lstats but does not Stat is a
		// broken symlink, which is invalid rather than missing.
		if _, lerr := os.Lstat(absPath); lerr == nil {
			return kindOther
		}
		return kindMissing
	}
	switch {
	case info.Mode().IsRegular():
		return kindRegular
	case info.IsDir():
		return kindDirectory
	default:
		return kindOther
	}
}

// StageFile stages a single regular file: its content is written as a blob
// and the index entry for its repo-relative path is updated and persisted.
// Returns the blob hash.
func (r *Repo) StageFile(path string) (object.Hash, error) {
	relPath, err := r.repoRelPath(path)
	if err != nil {
		return "", fmt.Errorf("stage file: resolve path %q: %w", path, err)
	}

	stg, err := r.ReadStaging()
	if err != nil {
		return "", fmt.Errorf("stage file: %w", err)
	}

	h, err := r.stageOne(stg, relPath)
	if err != nil {
		return "", err
	}

	if err := r.WriteStaging(stg); err != nil {
		return "", fmt.Errorf("stage file: %w", err)
	}
	return h, nil
}

// stageOne reads one file, stores its blob, and records the index entry in
// stg. It does not persist the index.
func (r *Repo) stageOne(stg *Staging, relPath string) (object.Hash, error) {
	absPath := filepath.Join(r.RootDir, filepath.FromSlash(relPath))
	content, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stage %q: %w", relPath, ErrPathNotFound)
		}
		return "", fmt.Errorf("stage %q: %w", relPath, err)
	}

	blobHash, err := r.Store.WriteBlob(&object.Blob{Data: content})
	if err != nil {
		return "", fmt.Errorf("stage %q: write blob: %w", relPath, err)
	}

	stg.Entries[relPath] = blobHash
	log.WithFields(log.Fields{"path": relPath, "blob": blobHash}).Debug("staged file")
	return blobHash, nil
}

// StageDirectory recursively stages every regular file under path, skipping
// the repository control directory. Blobs are written concurrently; the
// index is persisted once at the end. Returns the number of files staged
// (zero means the directory held nothing stageable).
func (r *Repo) StageDirectory(path string) (int, error) {
	relDir, err := r.repoRelPath(path)
	if err != nil {
		return 0, fmt.Errorf("stage directory: resolve path %q: %w", path, err)
	}
	absDir := filepath.Join(r.RootDir, filepath.FromSlash(relDir))

	switch classifyPath(absDir) {
	case kindDirectory:
	case kindMissing:
		return 0, fmt.Errorf("stage directory %q: %w", relDir, ErrPathNotFound)
	default:
		return 0, fmt.Errorf("stage directory %q: %w", relDir, ErrNotADirectory)
	}

	var files []string
	err = filepath.WalkDir(absDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if d.Name() == ControlDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(r.RootDir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("stage directory %q: %w", relDir, err)
	}

	stg, err := r.ReadStaging()
	if err != nil {
		return 0, fmt.Errorf("stage directory: %w", err)
	}

	// Blob creation per file is independent; the store's atomic write
	// discipline makes concurrent Write calls safe within one process.
	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for _, relPath := range files {
		g.Go(func() error {
			absPath := filepath.Join(r.RootDir, filepath.FromSlash(relPath))
			content, err := os.ReadFile(absPath)
			if err != nil {
				return fmt.Errorf("stage %q: %w", relPath, err)
			}
			blobHash, err := r.Store.WriteBlob(&object.Blob{Data: content})
			if err != nil {
				return fmt.Errorf("stage %q: write blob: %w", relPath, err)
			}
			mu.Lock()
			stg.Entries[relPath] = blobHash
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("stage directory %q: %w", relDir, err)
	}

	if err := r.WriteStaging(stg); err != nil {
		return 0, fmt.Errorf("stage directory: %w", err)
	}
	return len(files), nil
}

// StagePath stages a file or a directory depending on what path resolves
// to. Anything else (device file, socket, broken symlink) fails with
// ErrInvalidPath.
func (r *Repo) StagePath(path string) error {
	relPath, err := r.repoRelPath(path)
	if err != nil {
		return fmt.Errorf("stage path: resolve %q: %w", path, err)
	}
	absPath := filepath.Join(r.RootDir, filepath.FromSlash(relPath))

	switch classifyPath(absPath) {
	case kindRegular:
		_, err := r.StageFile(path)
		return err
	case kindDirectory:
		_, err := r.StageDirectory(path)
		return err
	case kindMissing:
		return fmt.Errorf("stage path %q: %w", relPath, ErrPathNotFound)
	default:
		return fmt.Errorf("stage path %q: neither file nor directory: %w", relPath, ErrInvalidPath)
	}
}

// repoRelPath converts a path (absolute, or relative to CWD) into a path
// relative to the repository root. If the path is already relative and does
// not resolve inside the repo root, it is assumed to be repo-relative.
func (r *Repo) repoRelPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(r.RootDir, p)
		if err != nil {
			return "", fmt.Errorf("cannot make %q relative to %q: %w", p, r.RootDir, err)
		}
		return filepath.ToSlash(rel), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	abs := filepath.Join(cwd, p)
	rel, err := filepath.Rel(r.RootDir, abs)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	// A ".." prefix means p is outside the repo when resolved against CWD;
	// treat the original p as already repo-relative.
	if len(rel) >= 2 && rel[:2] == ".." {
		return filepath.ToSlash(filepath.Clean(p)), nil
	}

	return filepath.ToSlash(rel), nil
}
