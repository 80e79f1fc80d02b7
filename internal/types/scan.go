// Package types provides shared types used across the diskhound codebase.
package types

import "time"

// NodeKind distinguishes files from directories in the scan tree.
type NodeKind uint8

const (
	File NodeKind = iota
	Directory
)

func (k NodeKind) String() string {
	if k == Directory {
		return "dir"
	}
	return "file"
}

// Node is one filesystem entry in the frozen scan tree.
//
// Nodes are created exactly once during the scan and never mutated
// afterwards. A directory owns its children outright; there is no
// child→parent back-pointer, so the tree is a pure single-owner
// hierarchy that any number of readers can traverse without locks.
type Node struct {
	Name     string    // final path component
	Path     string    // absolute path
	Kind     NodeKind
	Size     int64     // files: byte length; dirs: sum of descendant sizes
	ModTime  time.Time // zero when metadata could not be obtained
	HadError bool      // metadata or listing for this entry failed
	Children []*Node   // entry-yield order; nil for files
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return n.Kind == Directory }

// ScanStats holds aggregate counters accumulated during a scan.
// They are computed once by the scanner and never recomputed downstream.
type ScanStats struct {
	Files       int64
	Directories int64
	TotalBytes  int64
	Errors      int64
}

// ScanError records one entry that could not be listed or stat'd.
// With multiple workers only completeness is guaranteed, not order.
type ScanError struct {
	Path   string
	Reason string
}

// ScanSnapshot is the complete, immutable result of one scan:
// the tree, its aggregate stats, and every access error encountered.
//
// Immutability is the central invariant of the design: downstream
// consumers (aggregator, summary, UI) treat the snapshot as read-only
// and may cache derived views without any invalidation logic.
type ScanSnapshot struct {
	Root   *Node
	Stats  ScanStats
	Errors []ScanError
}

// Walk visits every node in the snapshot exactly once, depth-first,
// children in stored order. It stops early if fn returns false.
func (s *ScanSnapshot) Walk(fn func(*Node) bool) {
	stack := []*Node{s.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		// Push in reverse so children are visited in stored order.
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
}
