package fsys

import (
	"fmt"
	"path"
	"sort"
	"time"
)

// MemFS is an in-memory Lister for tests. Directories are registered
// with AddDir/AddFile; listings are returned in insertion order so a
// single-worker scan over a MemFS is fully deterministic.
//
// Failures are injected per path: FailList makes ListDir itself fail,
// FailEntry marks one entry's metadata as unobtainable.
type MemFS struct {
	dirs     map[string][]Entry
	listErrs map[string]error
}

// NewMemFS creates an empty synthetic filesystem.
func NewMemFS() *MemFS {
	return &MemFS{
		dirs:     make(map[string][]Entry),
		listErrs: make(map[string]error),
	}
}

// AddDir registers a directory and records it as an entry of its parent.
func (m *MemFS) AddDir(dir string) {
	if _, ok := m.dirs[dir]; ok {
		return
	}
	m.dirs[dir] = nil
	m.link(dir, Entry{Name: path.Base(dir), IsDir: true})
}

// AddFile registers a file with its size and a fixed mod time.
func (m *MemFS) AddFile(file string, size int64) {
	m.link(file, Entry{
		Name:    path.Base(file),
		Size:    size,
		ModTime: time.Unix(1700000000, 0),
	})
}

// FailList makes ListDir fail for the given directory.
func (m *MemFS) FailList(dir string, err error) {
	m.listErrs[dir] = err
}

// FailEntry marks one existing entry's metadata as unobtainable.
func (m *MemFS) FailEntry(p string, err error) {
	parent := path.Dir(p)
	name := path.Base(p)
	for i, e := range m.dirs[parent] {
		if e.Name == name {
			m.dirs[parent][i] = Entry{Name: name, IsDir: e.IsDir, Err: err}
			return
		}
	}
	panic(fmt.Sprintf("memfs: no entry %q under %q", name, parent))
}

// link appends an entry to its parent's listing, creating ancestor
// directories as needed.
func (m *MemFS) link(p string, e Entry) {
	parent := path.Dir(p)
	if parent != p {
		m.AddDir(parent)
	}
	for _, prev := range m.dirs[parent] {
		if prev.Name == e.Name {
			return
		}
	}
	m.dirs[parent] = append(m.dirs[parent], e)
}

// ListDir implements Lister.
func (m *MemFS) ListDir(dir string) ([]Entry, error) {
	if err, ok := m.listErrs[dir]; ok {
		return nil, err
	}
	entries, ok := m.dirs[dir]
	if !ok {
		return nil, fmt.Errorf("memfs: no such directory: %s", dir)
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Paths returns every registered directory, sorted. Handy for test
// assertions.
func (m *MemFS) Paths() []string {
	out := make([]string, 0, len(m.dirs))
	for p := range m.dirs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
