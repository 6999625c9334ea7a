// Package atomicfile implements optimistic read-modify-write for files that
// another process (an editor, a second run) may touch while we hold them.
//
// A Snapshot records the modification time and size observed at read time.
// WriteFile re-checks both immediately before replacing the file and refuses
// to write if either changed. The replacement itself is a temp file in the
// same directory renamed over the target, so readers never see a torn write.
package atomicfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrConcurrentModification is returned when the file changed between the
// snapshot and the write.
var ErrConcurrentModification = errors.New("file modified since it was read")

// Snapshot is the observed state of a file at read time.
type Snapshot struct {
	Path    string
	ModTime time.Time
	Size    int64
	Mode    os.FileMode
}

// Stat takes a snapshot of path without reading it.
func Stat(path string) (*Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &Snapshot{
		Path:    path,
		ModTime: info.ModTime(),
		Size:    info.Size(),
		Mode:    info.Mode().Perm(),
	}, nil
}

// Read returns the file content together with the snapshot it was read under.
func Read(path string) (*Snapshot, []byte, error) {
	snap, err := Stat(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	// A writer racing the read itself shows up as a changed snapshot.
	if changed, err := snap.Changed(); err != nil {
		return nil, nil, err
	} else if changed {
		return nil, nil, fmt.Errorf("read %s: %w", path, ErrConcurrentModification)
	}
	return snap, data, nil
}

// Changed reports whether the file on disk no longer matches the snapshot.
// A file that has disappeared counts as changed.
func (s *Snapshot) Changed() (bool, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return !info.ModTime().Equal(s.ModTime) || info.Size() != s.Size, nil
}

// WriteFile replaces the file with data if it is unchanged since the snapshot.
func (s *Snapshot) WriteFile(data []byte) error {
	if changed, err := s.Changed(); err != nil {
		return fmt.Errorf("stat %s: %w", s.Path, err)
	} else if changed {
		return fmt.Errorf("write %s: %w", s.Path, ErrConcurrentModification)
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(s.Mode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Second check narrows the window to the rename itself.
	if changed, err := s.Changed(); err != nil {
		return fmt.Errorf("stat %s: %w", s.Path, err)
	} else if changed {
		return fmt.Errorf("write %s: %w", s.Path, ErrConcurrentModification)
	}

	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("replace %s: %w", s.Path, err)
	}
	return nil
}
