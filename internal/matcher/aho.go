package matcher

// ahoCorasick is a multi-pattern substring automaton: all Contains
// patterns are merged into one structure so a subject scan stays
// linear in subject length regardless of rule count.
//
// Transitions are sparse (map per node) unlike the prefix trie's dense
// tables: substring patterns share fewer prefixes than name prefixes
// do, so dense tables would mostly hold -1 here.
type ahoCorasick struct {
	nodes []acNode
	built bool
}

type acNode struct {
	next map[byte]int32
	fail int32
	out  []int32 // rule indices whose pattern ends at this node
}

func newAhoCorasick() *ahoCorasick {
	return &ahoCorasick{nodes: []acNode{{next: make(map[byte]int32)}}}
}

// insert adds one pattern to the goto trie. Must precede build.
func (a *ahoCorasick) insert(pattern string, rule int32) {
	cur := int32(0)
	for i := 0; i < len(pattern); i++ {
		b := pattern[i]
		next, ok := a.nodes[cur].next[b]
		if !ok {
			a.nodes = append(a.nodes, acNode{next: make(map[byte]int32)})
			next = int32(len(a.nodes) - 1)
			a.nodes[cur].next[b] = next
		}
		cur = next
	}
	a.nodes[cur].out = append(a.nodes[cur].out, rule)
}

// build computes failure links breadth-first and merges each node's
// output with its fail target's, so scan never has to chase fail
// chains to report matches.
func (a *ahoCorasick) build() {
	queue := make([]int32, 0, len(a.nodes))
	for _, next := range a.nodes[0].next {
		a.nodes[next].fail = 0
		queue = append(queue, next)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for b, next := range a.nodes[cur].next {
			fail := a.nodes[cur].fail
			for fail != 0 {
				if f, ok := a.nodes[fail].next[b]; ok {
					fail = f
					break
				}
				fail = a.nodes[fail].fail
			}
			if fail == 0 {
				if f, ok := a.nodes[0].next[b]; ok && f != next {
					fail = f
				}
			}
			a.nodes[next].fail = fail
			a.nodes[next].out = append(a.nodes[next].out, a.nodes[fail].out...)
			queue = append(queue, next)
		}
	}
	a.built = true
}

// scan feeds the subject through the automaton, invoking fn for each
// pattern occurrence. The same rule may fire more than once if its
// pattern occurs at several offsets; callers deduplicate.
func (a *ahoCorasick) scan(subject string, fn func(rule int32)) {
	cur := int32(0)
	for i := 0; i < len(subject); i++ {
		b := subject[i]
		for {
			if next, ok := a.nodes[cur].next[b]; ok {
				cur = next
				break
			}
			if cur == 0 {
				break
			}
			cur = a.nodes[cur].fail
		}
		for _, r := range a.nodes[cur].out {
			fn(r)
		}
	}
}

// empty reports whether no pattern was ever inserted.
func (a *ahoCorasick) empty() bool { return len(a.nodes) == 1 }
