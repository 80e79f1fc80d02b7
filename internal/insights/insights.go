// Package insights streams a frozen scan snapshot through a compiled
// matcher and aggregates per-category disk-usage findings.
//
// The aggregator visits every node exactly once, classifies it, and
// offers each hit to that category's bounded top-K ranking. Totals are
// counted past the ranking cap, so a report can always say "showing
// top K of N". The snapshot and matcher are both read-only inputs, so
// the whole pass runs without locks.
//
// Two pruning mechanisms cut traversal cost on matched subtrees:
//
//   - StopRecursion rules: a matched directory is recorded but its
//     children are skipped entirely (node_modules gets one aggregate
//     insight, not one per file).
//   - Temp/Cache suppression: children of a directory already
//     attributed to the Temp or Cache category are not classified —
//     the parent's rolled-up size covers them.
package insights

import (
	"fmt"
	"sort"

	"github.com/ivoronin/diskhound/internal/matcher"
	"github.com/ivoronin/diskhound/internal/types"
)

// DefaultTopK bounds the per-category ranking when Options.TopK is
// unset.
const DefaultTopK = 50

// PathRule attributes a whole configured directory (e.g. ~/.cache) to
// a category by literal path prefix instead of a compiled pattern.
type PathRule struct {
	Base     string // absolute path, no trailing separator
	Category types.Category
	Name     string
}

// Options tune one aggregation pass.
type Options struct {
	TopK    int   // per-category ranking bound; DefaultTopK if <= 0
	MinSize int64 // matches smaller than this are counted but not ranked
	Paths   []PathRule
}

// Aggregate traverses the snapshot, classifies every node with the
// matcher, and returns the per-category bundle. The matcher must be
// built; the classify state error is the only failure mode.
func Aggregate(snap *types.ScanSnapshot, m *matcher.Matcher, opts Options) (*types.InsightBundle, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	cats := make(map[types.Category]*catState)
	state := func(c types.Category) *catState {
		cs, ok := cats[c]
		if !ok {
			cs = &catState{heap: newTopK(topK)}
			cats[c] = cs
		}
		return cs
	}

	record := func(cs *catState, in types.Insight) {
		// Totals see every match; the heap only keeps the ranked ones.
		cs.total++
		cs.bytes += in.Size
		if in.Size >= opts.MinSize {
			cs.heap.offer(in)
		}
	}

	type frame struct {
		node       *types.Node
		suppressed bool // under an already-attributed Temp/Cache dir
	}
	stack := []frame{{node: snap.Root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.suppressed {
			continue
		}
		n := f.node

		matches, err := m.Classify(n.Name, n.Path, n.Kind)
		if err != nil {
			return nil, fmt.Errorf("classify %s: %w", n.Path, err)
		}
		for _, pr := range opts.Paths {
			if underPath(n.Path, pr.Base) {
				record(state(pr.Category), types.Insight{
					Category: pr.Category,
					Path:     n.Path,
					Size:     n.Size,
					Kind:     n.Kind,
					RuleName: pr.Name,
				})
			}
		}

		inTempOrCache := false
		stopped := false
		for _, match := range matches {
			record(state(match.Category), types.Insight{
				Category: match.Category,
				Path:     n.Path,
				Size:     n.Size,
				Kind:     n.Kind,
				RuleName: match.Rule.Name,
			})
			if match.Category == types.CategoryTemp || match.Category == types.CategoryCache {
				inTempOrCache = true
			}
			if match.Rule.StopRecursion {
				stopped = true
			}
		}

		if n.IsDir() && !stopped {
			// Reverse push keeps visit order equal to stored order.
			for i := len(n.Children) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: n.Children[i], suppressed: inTempOrCache})
			}
		}
	}

	bundle := &types.InsightBundle{}
	for cat, cs := range cats {
		bundle.Categories = append(bundle.Categories, types.CategoryReport{
			Category:   cat,
			Top:        cs.heap.drain(),
			Total:      cs.total,
			TotalBytes: cs.bytes,
		})
	}
	sort.Slice(bundle.Categories, func(i, j int) bool {
		a, b := &bundle.Categories[i], &bundle.Categories[j]
		if a.TotalBytes != b.TotalBytes {
			return a.TotalBytes > b.TotalBytes
		}
		return a.Category < b.Category
	})
	return bundle, nil
}

type catState struct {
	heap  *topK
	total int64
	bytes int64
}

// underPath reports whether p equals base or lies beneath it.
func underPath(p, base string) bool {
	if len(p) < len(base) || p[:len(base)] != base {
		return false
	}
	return len(p) == len(base) || p[len(base)] == '/'
}
