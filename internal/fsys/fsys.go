// Package fsys is the filesystem capability consumed by the scanner.
//
// The scanner never touches the OS directly; it is handed a Lister so
// the whole scan pipeline can be exercised against a synthetic
// filesystem in tests. The capability contract is deliberately narrow:
// one call lists a directory AND bundles each entry's metadata, so the
// hot path never pays a second per-entry stat round-trip.
package fsys

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Entry is one directory listing result with metadata bundled.
//
// Err is per-entry: it means the entry's metadata could not be
// obtained, not that the entry is absent. Callers must still account
// for the entry.
type Entry struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
	Err     error
}

// Lister lists a directory, returning its entries with metadata.
// A returned error means the directory itself could not be listed;
// per-entry metadata failures are reported via Entry.Err instead.
type Lister interface {
	ListDir(path string) ([]Entry, error)
}

// OS is the real-filesystem Lister.
//
// Symlinks are never followed: a symlink entry is reported as a
// non-directory with its own (lstat) size, regardless of target type.
type OS struct{}

// Batch reading bounds memory when listing directories with millions
// of entries.
const readDirBatch = 1000

// ListDir reads one directory in batches, bundling metadata per entry.
func (OS) ListDir(path string) ([]Entry, error) {
	dir, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = dir.Close() }()

	var entries []Entry
	for {
		batch, err := dir.ReadDir(readDirBatch)
		if len(batch) == 0 {
			if err != nil && err != io.EOF {
				return entries, err
			}
			break
		}
		for _, de := range batch {
			entries = append(entries, osEntry(de))
		}
	}
	return entries, nil
}

// osEntry converts one DirEntry. DirEntry.IsDir uses the entry type
// from the readdir call itself, so a symlink to a directory reports
// false — exactly the no-follow semantic the scanner requires.
func osEntry(de os.DirEntry) Entry {
	e := Entry{Name: de.Name(), IsDir: de.IsDir()}

	// Info is served from the readdir result on Unix; it does not
	// re-stat the path in the hot path.
	info, err := de.Info()
	if err != nil {
		e.Err = err
		return e
	}
	e.ModTime = info.ModTime()
	if !e.IsDir {
		e.Size = info.Size()
	}
	return e
}

// ResolveRoot validates a scan root: it must exist and be a directory.
// Returns the absolute path.
func ResolveRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Lstat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", &os.PathError{Op: "scan", Path: abs, Err: ErrNotDir}
	}
	return abs, nil
}

// ErrNotDir is returned by ResolveRoot when the root exists but is not
// a directory.
var ErrNotDir = errors.New("not a directory")
