// Package summary renders a scan snapshot and insight bundle as plain
// text: aggregate stats, the largest space consumers, and per-category
// insight tables. It only reads the frozen snapshot; sorting happens
// on private copies.
package summary

import (
	"container/heap"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/ivoronin/diskhound/internal/history"
	"github.com/ivoronin/diskhound/internal/types"
)

const maxErrorLines = 5

var (
	heading  = color.New(color.Bold, color.FgCyan).SprintFunc()
	label    = color.New(color.Bold).SprintFunc()
	category = color.New(color.FgYellow).SprintFunc()
	errLabel = color.New(color.FgRed).SprintFunc()
)

// Render writes the full report. prev may be nil (no history); topN
// bounds every table, values below zero mean empty tables.
func Render(w io.Writer, snap *types.ScanSnapshot, bundle *types.InsightBundle, prev *history.Run, topN int) {
	topN = max(topN, 0)
	renderStats(w, snap, prev)
	renderTopNodes(w, snap, topN)
	renderCategories(w, bundle, prev, topN)
	renderErrors(w, snap.Errors)
}

func renderStats(w io.Writer, snap *types.ScanSnapshot, prev *history.Run) {
	st := snap.Stats
	fmt.Fprintln(w, heading("Scan Summary"))
	fmt.Fprintf(w, "  %s %d\n", label("Files:"), st.Files)
	fmt.Fprintf(w, "  %s %d\n", label("Directories:"), st.Directories)
	fmt.Fprintf(w, "  %s %s%s\n", label("Total Size:"),
		humanize.IBytes(uint64(st.TotalBytes)), delta(st.TotalBytes, prevBytes(prev)))
	fmt.Fprintf(w, "  %s %d\n", label("Access Errors:"), st.Errors)
	fmt.Fprintln(w)
}

func renderTopNodes(w io.Writer, snap *types.ScanSnapshot, topN int) {
	fmt.Fprintln(w, heading("Top Space Consumers"))
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	for _, n := range largestNodes(snap, topN) {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n",
			humanize.IBytes(uint64(n.Size)), strings.ToUpper(n.Kind.String()), n.Path)
	}
	_ = tw.Flush()
	fmt.Fprintln(w)
}

func renderCategories(w io.Writer, bundle *types.InsightBundle, prev *history.Run, topN int) {
	for _, rep := range bundle.Categories {
		shown := min(len(rep.Top), topN)
		fmt.Fprintf(w, "%s — %s across %d matches%s (showing %d)\n",
			category(categoryLabel(rep.Category)),
			humanize.IBytes(uint64(rep.TotalBytes)), rep.Total,
			delta(rep.TotalBytes, prevCategoryBytes(prev, rep.Category)), shown)
		tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
		for _, in := range rep.Top[:shown] {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n",
				humanize.IBytes(uint64(in.Size)), in.Path, in.RuleName)
		}
		_ = tw.Flush()
		fmt.Fprintln(w)
	}
}

func renderErrors(w io.Writer, errs []types.ScanError) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(w, "%s %d entries could not be read\n", errLabel("Warning:"), len(errs))
	for i, e := range errs {
		if i == maxErrorLines {
			fmt.Fprintf(w, "  … and %d more\n", len(errs)-maxErrorLines)
			break
		}
		fmt.Fprintf(w, "  %s: %s\n", e.Path, e.Reason)
	}
}

// categoryLabel turns "build_artifact" into "Build Artifact".
func categoryLabel(c types.Category) string {
	words := strings.Split(string(c), "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// delta formats a signed growth suffix against a previous value, or ""
// when there is no history or no change.
func delta(current, previous int64) string {
	if previous < 0 || current == previous {
		return ""
	}
	d := current - previous
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	return fmt.Sprintf(" (%s%s since last scan)", sign, humanize.IBytes(uint64(d)))
}

func prevBytes(prev *history.Run) int64 {
	if prev == nil {
		return -1
	}
	return prev.TotalBytes
}

func prevCategoryBytes(prev *history.Run, c types.Category) int64 {
	if prev == nil {
		return -1
	}
	t, ok := prev.Categories[string(c)]
	if !ok {
		return -1
	}
	return t.Bytes
}

// largestNodes returns the topN largest nodes in the snapshot,
// excluding the root itself, descending by size. A bounded min-heap
// keeps the walk O(nodes × log topN) with O(topN) memory.
func largestNodes(snap *types.ScanSnapshot, topN int) []*types.Node {
	h := &nodeHeap{}
	snap.Walk(func(n *types.Node) bool {
		if n == snap.Root {
			return true
		}
		if h.Len() < topN {
			heap.Push(h, n)
		} else if topN > 0 && n.Size > (*h)[0].Size {
			(*h)[0] = n
			heap.Fix(h, 0)
		}
		return true
	})
	out := make([]*types.Node, h.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(*types.Node)
	}
	return out
}

type nodeHeap []*types.Node

func (h nodeHeap) Len() int      { return len(h) }
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].Size != h[j].Size {
		return h[i].Size < h[j].Size
	}
	return h[i].Path > h[j].Path
}

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(*types.Node)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
