package matcher

// trie is a prefix automaton: a trie over the full byte alphabet with
// a dense 256-entry transition table per node.
//
// walk scans a subject left to right and reports EVERY visited node
// that carries payloads, so all registered prefixes matching the
// subject are found in one O(len(subject)) pass — a shorter prefix
// never suppresses a longer one.
//
// The dense table trades memory (1 KiB per node) for constant-time
// transitions. Rule sets are hundreds of short patterns, so the node
// count stays low. A build targeting very large rule sets would switch
// to a sparse per-node map.
//
// Suffix matching reuses the same construction: insert with
// reverse=true and scan with walkReverse, which walks the subject from
// its last byte. No second algorithm needed.
type trie struct {
	nodes []trieNode
}

type trieNode struct {
	next     [256]int32 // -1 = no transition
	payloads []int32    // rule indices terminating at this node
}

func newTrie() *trie {
	t := &trie{}
	t.grow() // root
	return t
}

func (t *trie) grow() int32 {
	n := trieNode{}
	for i := range n.next {
		n.next[i] = -1
	}
	t.nodes = append(t.nodes, n)
	return int32(len(t.nodes) - 1)
}

// insert registers a pattern. With reverse=true the pattern's bytes
// are inserted last-to-first (suffix mode).
func (t *trie) insert(pattern string, rule int32, reverse bool) {
	cur := int32(0)
	for i := 0; i < len(pattern); i++ {
		b := pattern[i]
		if reverse {
			b = pattern[len(pattern)-1-i]
		}
		next := t.nodes[cur].next[b]
		if next == -1 {
			next = t.grow()
			t.nodes[cur].next[b] = next
		}
		cur = next
	}
	t.nodes[cur].payloads = append(t.nodes[cur].payloads, rule)
}

// empty reports whether no pattern was ever inserted.
func (t *trie) empty() bool { return len(t.nodes) == 1 && len(t.nodes[0].payloads) == 0 }

// walk follows subject bytes from the root, invoking fn for every
// payload encountered along the way, until the path leaves the trie.
func (t *trie) walk(subject string, fn func(rule int32)) {
	cur := int32(0)
	for i := 0; i < len(subject); i++ {
		cur = t.nodes[cur].next[subject[i]]
		if cur == -1 {
			return
		}
		for _, r := range t.nodes[cur].payloads {
			fn(r)
		}
	}
}

// walkReverse is walk over the subject's bytes in reverse order, for
// tries built with reverse inserts.
func (t *trie) walkReverse(subject string, fn func(rule int32)) {
	cur := int32(0)
	for i := len(subject) - 1; i >= 0; i-- {
		cur = t.nodes[cur].next[subject[i]]
		if cur == -1 {
			return
		}
		for _, r := range t.nodes[cur].payloads {
			fn(r)
		}
	}
}
