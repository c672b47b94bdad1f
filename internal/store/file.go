package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileRepo keeps a single snapshot in a plain file. Every Save rewrites the
// whole file; there is no history, so Prune has nothing to do.
type FileRepo struct {
	path string
}

// NewFileRepo returns a FileRepo that reads and writes path.
func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

// Path returns the file the repo writes to.
func (r *FileRepo) Path() string {
	return r.path
}

// Save writes the snapshot data to a temporary file next to the target and
// renames it into place, so readers never observe a half-written document.
func (r *FileRepo) Save(_ context.Context, snap *Snapshot) error {
	if err := EnsureDir(r.path); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(snap.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}

// Latest returns the file contents, or nil if the file does not exist yet.
func (r *FileRepo) Latest(_ context.Context) (*Snapshot, error) {
	info, err := os.Stat(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", r.path, err)
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	return &Snapshot{Timestamp: info.ModTime(), Data: data}, nil
}

func (r *FileRepo) Prune(_ context.Context, _ int) error {
	return nil
}
