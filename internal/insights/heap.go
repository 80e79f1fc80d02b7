package insights

import (
	"container/heap"

	"github.com/ivoronin/diskhound/internal/types"
)

// topK is a fixed-capacity min-heap of insights keyed by size, so the
// smallest retained match sits at the root ready for eviction. Memory
// stays O(cap) no matter how many candidates are offered, and each
// offer costs O(log cap).
//
// Ordering ties on size break by path: among equal sizes the heap
// prefers lexicographically smaller paths, which keeps the drained
// result deterministic.
type topK struct {
	cap   int
	items insightHeap
}

func newTopK(capacity int) *topK {
	return &topK{cap: capacity}
}

// offer inserts the candidate if the heap has room, otherwise evicts
// the current minimum when the candidate outranks it.
func (t *topK) offer(in types.Insight) {
	if t.cap <= 0 {
		return
	}
	if t.items.Len() < t.cap {
		heap.Push(&t.items, in)
		return
	}
	if beats(in, t.items[0]) {
		t.items[0] = in
		heap.Fix(&t.items, 0)
	}
}

// drain empties the heap and returns insights sorted descending by
// size, ascending by path on ties.
func (t *topK) drain() []types.Insight {
	out := make([]types.Insight, t.items.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&t.items).(types.Insight)
	}
	return out
}

// beats reports whether a ranks above b: larger size first, smaller
// path on equal size.
func beats(a, b types.Insight) bool {
	if a.Size != b.Size {
		return a.Size > b.Size
	}
	return a.Path < b.Path
}

// insightHeap implements heap.Interface with the WORST-ranked insight
// at the root.
type insightHeap []types.Insight

func (h insightHeap) Len() int           { return len(h) }
func (h insightHeap) Less(i, j int) bool { return beats(h[j], h[i]) }
func (h insightHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *insightHeap) Push(x any) { *h = append(*h, x.(types.Insight)) }

func (h *insightHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
