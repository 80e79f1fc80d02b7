// Package matcher compiles pattern rules into kind-specific matchers
// and classifies entry names/paths against all of them in one call.
//
// # Compilation strategy
//
// Rules are partitioned by match kind and each kind gets the cheapest
// adequate structure:
//
//	┌────────────┬──────────────────────────────┬─────────────────────┐
//	│ Kind       │ Structure                    │ Classify cost       │
//	├────────────┼──────────────────────────────┼─────────────────────┤
//	│ Exact      │ map[name][]rule              │ O(1) avg            │
//	│ StartsWith │ dense prefix trie            │ O(len(name))        │
//	│ EndsWith   │ same trie, reversed patterns │ O(len(name))        │
//	│ Contains   │ Aho–Corasick over all rules  │ O(len(path))        │
//	│ Glob       │ one filepath.Match per rule  │ O(rules)            │
//	└────────────┴──────────────────────────────┴─────────────────────┘
//
// Rules are additionally split into file and directory buckets at
// build time (ApplyTo bitflag), so classification never branches on
// node kind inside the hot loop.
//
// Matching is case-insensitive: patterns are lowercased when added and
// subjects once per Classify call.
//
// # Build-once, read-many
//
// Add and Build mutate; Classify only reads. After Build the matcher
// is immutable and safe for unsynchronized concurrent use. Calling Add
// or Build again returns ErrAlreadyBuilt; calling Classify before
// Build returns ErrNotBuilt.
package matcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ivoronin/diskhound/internal/types"
)

var (
	// ErrAlreadyBuilt is returned by Add or Build after Build has run.
	ErrAlreadyBuilt = errors.New("matcher: already built")
	// ErrNotBuilt is returned by Classify before Build has run.
	ErrNotBuilt = errors.New("matcher: not built")
)

// Match is one classification hit. A single entry may produce several
// matches across rules and categories; the matcher never collapses
// them.
type Match struct {
	Category types.Category
	Rule     *types.PatternRule
}

// Matcher holds the per-kind structures. Zero value is not usable;
// create with New.
type Matcher struct {
	built   bool
	rules   []types.PatternRule
	lowered []string // rules[i].Pattern lowercased
	file    bucket
	dir     bucket
}

// bucket is the compiled rule set for one node kind.
type bucket struct {
	exact    map[string][]int32
	prefixes *trie
	suffixes *trie
	contains *ahoCorasick
	globs    []int32
}

// New creates an empty, unbuilt Matcher.
func New() *Matcher {
	return &Matcher{
		file: newBucket(),
		dir:  newBucket(),
	}
}

func newBucket() bucket {
	return bucket{
		exact:    make(map[string][]int32),
		prefixes: newTrie(),
		suffixes: newTrie(),
		contains: newAhoCorasick(),
	}
}

// Compile builds a Matcher from a complete rule sequence in one step.
func Compile(rules []types.PatternRule) (*Matcher, error) {
	m := New()
	for _, r := range rules {
		if err := m.Add(r); err != nil {
			return nil, err
		}
	}
	if err := m.Build(); err != nil {
		return nil, err
	}
	return m, nil
}

// Add registers one rule. Rules with empty patterns are rejected;
// glob patterns are validated eagerly so Classify never sees a
// malformed one.
func (m *Matcher) Add(rule types.PatternRule) error {
	if m.built {
		return ErrAlreadyBuilt
	}
	if rule.Pattern == "" {
		return fmt.Errorf("rule %q: empty pattern", rule.Name)
	}
	if rule.Kind == types.Glob {
		if _, err := filepath.Match(rule.Pattern, ""); err != nil {
			return fmt.Errorf("rule %q: %w", rule.Name, err)
		}
	}
	if rule.ApplyTo == 0 {
		rule.ApplyTo = types.ApplyBoth
	}

	idx := int32(len(m.rules))
	m.rules = append(m.rules, rule)
	m.lowered = append(m.lowered, strings.ToLower(rule.Pattern))

	// ApplyBoth distributes the rule into both buckets here, at
	// compile time, not in the hot loop.
	if rule.ApplyTo&types.ApplyFiles != 0 {
		m.file.add(m.lowered[idx], rule.Kind, idx)
	}
	if rule.ApplyTo&types.ApplyDirs != 0 {
		m.dir.add(m.lowered[idx], rule.Kind, idx)
	}
	return nil
}

func (b *bucket) add(pattern string, kind types.MatchKind, idx int32) {
	switch kind {
	case types.Exact:
		b.exact[pattern] = append(b.exact[pattern], idx)
	case types.StartsWith:
		b.prefixes.insert(pattern, idx, false)
	case types.EndsWith:
		b.suffixes.insert(pattern, idx, true)
	case types.Contains:
		b.contains.insert(pattern, idx)
	case types.Glob:
		b.globs = append(b.globs, idx)
	}
}

// Build finalizes the matcher. After Build the matcher is read-only.
func (m *Matcher) Build() error {
	if m.built {
		return ErrAlreadyBuilt
	}
	m.file.contains.build()
	m.dir.contains.build()
	m.built = true
	return nil
}

// Len returns the number of registered rules.
func (m *Matcher) Len() int { return len(m.rules) }

// Classify evaluates every rule kind against an entry and returns the
// union of all hits — it never stops at the first match, so an entry
// matching a Cache rule and a Temp rule yields both.
//
// name is the final path component, path the full path; Exact,
// StartsWith, EndsWith and Glob compare against the name, Contains
// against the path. Classify is a pure function of the built matcher
// and its inputs, and is safe for concurrent use.
func (m *Matcher) Classify(name, path string, kind types.NodeKind) ([]Match, error) {
	if !m.built {
		return nil, ErrNotBuilt
	}
	b := &m.file
	if kind == types.Directory {
		b = &m.dir
	}

	lname := strings.ToLower(name)
	var out []Match
	add := func(idx int32) {
		r := &m.rules[idx]
		out = append(out, Match{Category: r.Category, Rule: r})
	}

	if hits, ok := b.exact[lname]; ok {
		for _, idx := range hits {
			add(idx)
		}
	}

	// The trie walks report every matching registered prefix/suffix,
	// not just the longest.
	b.prefixes.walk(lname, add)
	b.suffixes.walkReverse(lname, add)

	if !b.contains.empty() {
		lpath := strings.ToLower(path)
		// A substring rule may fire at several offsets in one path;
		// report it once.
		var seen map[int32]struct{}
		b.contains.scan(lpath, func(idx int32) {
			if _, dup := seen[idx]; dup {
				return
			}
			if seen == nil {
				seen = make(map[int32]struct{}, 4)
			}
			seen[idx] = struct{}{}
			add(idx)
		})
	}

	// Globs are tried one by one in registration order; they share no
	// fixed alphabet-position structure to merge. Patterns were
	// validated in Add, so Match cannot fail here.
	for _, idx := range b.globs {
		if ok, _ := filepath.Match(m.lowered[idx], lname); ok {
			add(idx)
		}
	}
	return out, nil
}
