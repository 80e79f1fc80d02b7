// Package scanner builds an immutable snapshot of a directory subtree
// using parallel traversal.
//
// # Concurrency Model
//
// A fixed pool of worker goroutines pulls directory-expansion tasks
// from a shared FIFO work queue seeded with the root:
//
//	Run() starts
//	    │
//	    ├──► enqueue root task
//	    ├──► spawn N workers, each looping:
//	    │        │
//	    │        ├──► q.get() → directory task (nil = all work done)
//	    │        ├──► ListDir() via the injected capability (one call,
//	    │        │    metadata bundled — never a second per-entry stat)
//	    │        ├──► files → leaf Nodes, appended to parent.Children
//	    │        ├──► subdirs → child Nodes, expansion enqueued
//	    │        │    (unless depth/exclude gated → undescended leaf)
//	    │        └──► q.done()
//	    │
//	    ├──► wg.Wait() [queue empty AND no in-flight tasks]
//	    ├──► finalize: bottom-up directory size roll-up
//	    └──► return frozen ScanSnapshot
//
// # Synchronization
//
//	┌──────────────────┬───────────────────────────────────────────────┐
//	│ Primitive        │ Purpose                                       │
//	├──────────────────┼───────────────────────────────────────────────┤
//	│ workQueue        │ FIFO task distribution (mutex + condvar)      │
//	│ pending counter  │ Completion barrier gating worker shutdown     │
//	│ atomic counters  │ Lock-free stats updates from any worker       │
//	│ errMu            │ Guards the shared ScanError slice             │
//	└──────────────────┴───────────────────────────────────────────────┘
//
// The tree itself needs no lock: each directory task is dequeued by
// exactly one worker, and only that worker appends to the task node's
// Children. A completed subtree is published to its parent simply by
// having been linked before the pending counter reaches zero.
//
// # Determinism
//
// With workers=1 the traversal is fully deterministic: tasks run in
// queue order and each directory's children appear in entry-yield
// order, so two scans of the same filesystem produce structurally
// identical snapshots. Tests rely on this mode.
package scanner

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ivoronin/diskhound/internal/fsys"
	"github.com/ivoronin/diskhound/internal/progress"
	"github.com/ivoronin/diskhound/internal/types"
)

// Scanner walks a directory subtree and produces a ScanSnapshot.
//
// The scanner is designed for single-use: create with New(), call Run()
// once.
type Scanner struct {
	// Config (immutable, set by New)
	root         string
	fs           fsys.Lister
	workers      int
	maxDepth     int // 0 = unlimited
	excludes     map[string]struct{}
	showProgress bool

	// Runtime (initialized in Run)
	queue *workQueue
	stats *stats
	bar   *progress.Bar

	errMu   sync.Mutex
	errs    []types.ScanError
	rootErr error
}

// New creates a Scanner rooted at root (an absolute path, see
// fsys.ResolveRoot).
//
// maxDepth limits descent: directories maxDepth levels below the root
// are kept as undescended leaves (0 = unlimited). excludes are absolute
// paths that are recorded but never descended into.
func New(root string, fs fsys.Lister, workers, maxDepth int, excludes []string, showProgress bool) *Scanner {
	ex := make(map[string]struct{}, len(excludes))
	for _, p := range excludes {
		ex[filepath.Clean(p)] = struct{}{}
	}
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		root:         root,
		fs:           fs,
		workers:      workers,
		maxDepth:     maxDepth,
		excludes:     ex,
		showProgress: showProgress,
	}
}

// stats tracks scan progress using atomic counters for lock-free
// updates from any worker. Reads may see the counters mid-update
// relative to each other, which is fine for progress display; the
// final snapshot reads them after all workers have exited.
type stats struct {
	files     atomic.Int64
	dirs      atomic.Int64
	bytes     atomic.Int64
	errors    atomic.Int64
	startTime time.Time
}

func (s *stats) String() string {
	return fmt.Sprintf("Scanned %d files, %d dirs (%s) in %.1fs",
		s.files.Load(), s.dirs.Load(),
		humanize.IBytes(uint64(s.bytes.Load())),
		time.Since(s.startTime).Seconds())
}

// Run executes the scan.
//
// It fails only when the root itself cannot be listed; every
// per-descendant failure is recorded as a ScanError (and as HadError on
// the corresponding node) and the walk continues. Failed filesystem
// calls are never retried.
func (s *Scanner) Run() (*types.ScanSnapshot, error) {
	s.stats = &stats{startTime: time.Now()}
	s.bar = progress.New(s.showProgress)
	s.bar.Describe(s.stats)

	root := &types.Node{
		Name: filepath.Base(s.root),
		Path: s.root,
		Kind: types.Directory,
	}
	s.stats.dirs.Add(1)

	s.queue = newWorkQueue()
	s.queue.put(&task{node: root, depth: 0})

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				t := s.queue.get()
				if t == nil {
					return
				}
				s.expand(t)
				s.queue.done()
			}
		}()
	}
	wg.Wait()

	if s.rootErr != nil {
		s.bar.Abandon()
		return nil, fmt.Errorf("list root %s: %w", s.root, s.rootErr)
	}

	finalize(root)
	s.bar.Finish(s.stats)

	return &types.ScanSnapshot{
		Root: root,
		Stats: types.ScanStats{
			Files:       s.stats.files.Load(),
			Directories: s.stats.dirs.Load(),
			TotalBytes:  s.stats.bytes.Load(),
			Errors:      s.stats.errors.Load(),
		},
		Errors: s.errs,
	}, nil
}

// expand processes one directory task: list entries, build child
// nodes, enqueue subdirectory expansions. Only the worker holding the
// task touches t.node.Children, so no lock guards the tree.
func (s *Scanner) expand(t *task) {
	entries, err := s.fs.ListDir(t.node.Path)
	if err != nil {
		t.node.HadError = true
		s.recordError(t.node.Path, err)
		if t.depth == 0 {
			s.rootErr = err // root task is unique; read after wg.Wait
		}
		return
	}

	for _, e := range entries {
		child := &types.Node{
			Name:    e.Name,
			Path:    filepath.Join(t.node.Path, e.Name),
			ModTime: e.ModTime,
		}
		if e.Err != nil {
			child.HadError = true
			s.recordError(child.Path, e.Err)
		}

		if e.IsDir {
			child.Kind = types.Directory
			s.stats.dirs.Add(1)
			// Depth and exclusion gates keep the directory as an
			// undescended leaf: present in the tree, size zero.
			if !child.HadError && s.descendable(child.Path, t.depth) {
				s.queue.put(&task{node: child, depth: t.depth + 1})
			}
		} else {
			// Symlinks arrive here too: the capability never reports
			// them as directories, so they stay unexpanded leaves.
			child.Kind = types.File
			child.Size = e.Size
			s.stats.files.Add(1)
			s.stats.bytes.Add(e.Size)
		}
		t.node.Children = append(t.node.Children, child)
	}
	s.bar.Describe(s.stats)
}

// descendable reports whether a subdirectory at parentDepth+1 should
// be expanded.
func (s *Scanner) descendable(path string, parentDepth int) bool {
	if s.maxDepth > 0 && parentDepth+1 >= s.maxDepth {
		return false
	}
	_, excluded := s.excludes[path]
	return !excluded
}

// recordError appends one ScanError and bumps the errored-entry count.
func (s *Scanner) recordError(path string, err error) {
	s.stats.errors.Add(1)
	s.errMu.Lock()
	s.errs = append(s.errs, types.ScanError{Path: path, Reason: err.Error()})
	s.errMu.Unlock()
}

// finalize rolls directory sizes up from the leaves: every directory's
// size becomes the sum of its children's sizes. Runs single-threaded
// after all workers have exited, which is the point at which every
// subtree is complete. Children keep entry-yield order.
func finalize(root *types.Node) {
	// Iterative post-order: collect directories top-down, then sum
	// bottom-up, so each child is final before its parent reads it.
	var dirs []*types.Node
	visit := []*types.Node{root}
	for len(visit) > 0 {
		n := visit[len(visit)-1]
		visit = visit[:len(visit)-1]
		if !n.IsDir() {
			continue
		}
		dirs = append(dirs, n)
		visit = append(visit, n.Children...)
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		var total int64
		for _, c := range dirs[i].Children {
			total += c.Size
		}
		dirs[i].Size = total
	}
}
