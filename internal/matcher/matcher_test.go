package matcher

import (
	"testing"

	"github.com/ivoronin/diskhound/internal/types"
)

// =============================================================================
// Helpers
// =============================================================================

func rule(name string, kind types.MatchKind, pattern string, cat types.Category) types.PatternRule {
	return types.PatternRule{Name: name, Kind: kind, Pattern: pattern, Category: cat, ApplyTo: types.ApplyBoth}
}

func mustCompile(t *testing.T, rules ...types.PatternRule) *Matcher {
	t.Helper()
	m, err := Compile(rules)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return m
}

func classify(t *testing.T, m *Matcher, name, path string, kind types.NodeKind) []Match {
	t.Helper()
	matches, err := m.Classify(name, path, kind)
	if err != nil {
		t.Fatalf("classify %q: %v", name, err)
	}
	return matches
}

func ruleNames(matches []Match) map[string]bool {
	out := make(map[string]bool, len(matches))
	for _, m := range matches {
		out[m.Rule.Name] = true
	}
	return out
}

// =============================================================================
// Build-once state machine
// =============================================================================

func TestClassifyBeforeBuildFails(t *testing.T) {
	m := New()
	if err := m.Add(rule("r", types.Exact, "tmp", types.CategoryTemp)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Classify("tmp", "/a/tmp", types.File); err != ErrNotBuilt {
		t.Errorf("expected ErrNotBuilt, got %v", err)
	}
}

func TestAddAfterBuildFails(t *testing.T) {
	m := mustCompile(t, rule("r", types.Exact, "tmp", types.CategoryTemp))
	if err := m.Add(rule("late", types.Exact, "x", types.CategoryTemp)); err != ErrAlreadyBuilt {
		t.Errorf("expected ErrAlreadyBuilt, got %v", err)
	}
	if err := m.Build(); err != ErrAlreadyBuilt {
		t.Errorf("expected ErrAlreadyBuilt on second Build, got %v", err)
	}
}

func TestAddRejectsEmptyPattern(t *testing.T) {
	if err := New().Add(rule("empty", types.Exact, "", types.CategoryTemp)); err == nil {
		t.Error("expected error for empty pattern")
	}
}

func TestAddRejectsMalformedGlob(t *testing.T) {
	if err := New().Add(rule("bad", types.Glob, "[invalid", types.CategoryTemp)); err == nil {
		t.Error("expected error for malformed glob")
	}
}

// =============================================================================
// Per-kind matching
// =============================================================================

func TestExactMatch(t *testing.T) {
	m := mustCompile(t, rule("nm", types.Exact, "node_modules", types.CategoryBuildArtifact))

	if got := classify(t, m, "node_modules", "/p/node_modules", types.Directory); len(got) != 1 {
		t.Errorf("expected 1 match, got %d", len(got))
	}
	if got := classify(t, m, "node_modules2", "/p/node_modules2", types.Directory); len(got) != 0 {
		t.Errorf("expected no match for longer name, got %d", len(got))
	}
}

// TestPrefixAutomatonCompleteness verifies that a shorter registered
// prefix does not suppress a longer one matching the same subject:
// both must be reported from a single pass.
func TestPrefixAutomatonCompleteness(t *testing.T) {
	m := mustCompile(t,
		rule("short", types.StartsWith, "tmp", types.CategoryTemp),
		rule("long", types.StartsWith, "tmp_cache", types.CategoryCache),
	)

	got := ruleNames(classify(t, m, "tmp_cache_01", "/a/tmp_cache_01", types.File))
	if !got["short"] || !got["long"] {
		t.Errorf("expected both prefix rules to match, got %v", got)
	}

	// Only the short prefix applies here.
	got = ruleNames(classify(t, m, "tmp_x", "/a/tmp_x", types.File))
	if !got["short"] || got["long"] {
		t.Errorf("expected only short prefix match, got %v", got)
	}
}

func TestEndsWithMatch(t *testing.T) {
	m := mustCompile(t,
		rule("logs", types.EndsWith, ".log", types.CategoryTemp),
		rule("gzlogs", types.EndsWith, ".log.gz", types.CategoryTemp),
	)

	got := ruleNames(classify(t, m, "app.log.gz", "/var/app.log.gz", types.File))
	if !got["gzlogs"] {
		t.Errorf("expected suffix .log.gz to match, got %v", got)
	}
	if got["logs"] {
		t.Errorf(".log should not match app.log.gz, got %v", got)
	}

	got = ruleNames(classify(t, m, "app.log", "/var/app.log", types.File))
	if !got["logs"] || got["gzlogs"] {
		t.Errorf("expected only .log suffix match, got %v", got)
	}
}

func TestContainsMatchesPath(t *testing.T) {
	m := mustCompile(t,
		rule("cachedir", types.Contains, "/.cache/", types.CategoryCache),
		rule("tmpdir", types.Contains, "/tmp/", types.CategoryTemp),
	)

	got := ruleNames(classify(t, m, "f.bin", "/home/u/.cache/f.bin", types.File))
	if !got["cachedir"] || got["tmpdir"] {
		t.Errorf("expected only cache rule, got %v", got)
	}
}

// TestContainsRepeatedOccurrence ensures a substring rule firing at
// several offsets in one path is reported once.
func TestContainsRepeatedOccurrence(t *testing.T) {
	m := mustCompile(t, rule("tmpdir", types.Contains, "/tmp/", types.CategoryTemp))

	got := classify(t, m, "f", "/tmp/a/tmp/f", types.File)
	if len(got) != 1 {
		t.Errorf("expected 1 deduplicated match, got %d", len(got))
	}
}

func TestGlobMatch(t *testing.T) {
	m := mustCompile(t, rule("pyc", types.Glob, "*.py?", types.CategoryCache))

	if got := classify(t, m, "mod.pyc", "/a/mod.pyc", types.File); len(got) != 1 {
		t.Errorf("expected glob match, got %d", len(got))
	}
	if got := classify(t, m, "mod.py", "/a/mod.py", types.File); len(got) != 0 {
		t.Errorf("expected no glob match, got %d", len(got))
	}
}

// =============================================================================
// Cross-kind behavior
// =============================================================================

// TestMultiCategoryUnion verifies the engine never short-circuits: an
// entry matching rules in two categories yields both matches.
func TestMultiCategoryUnion(t *testing.T) {
	m := mustCompile(t,
		rule("cache", types.Contains, "cache", types.CategoryCache),
		rule("logs", types.EndsWith, ".log", types.CategoryTemp),
	)

	got := classify(t, m, "build_cache_tmp.log", "/p/build_cache_tmp.log", types.File)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	cats := map[types.Category]bool{}
	for _, match := range got {
		cats[match.Category] = true
	}
	if !cats[types.CategoryCache] || !cats[types.CategoryTemp] {
		t.Errorf("expected cache and temp categories, got %v", cats)
	}
}

func TestCaseInsensitive(t *testing.T) {
	m := mustCompile(t, rule("thumbs", types.Exact, "Thumbs.db", types.CategoryCache))

	if got := classify(t, m, "THUMBS.DB", "/a/THUMBS.DB", types.File); len(got) != 1 {
		t.Errorf("expected case-insensitive match, got %d", len(got))
	}
}

func TestApplyToBuckets(t *testing.T) {
	fileRule := rule("files", types.EndsWith, ".log", types.CategoryTemp)
	fileRule.ApplyTo = types.ApplyFiles
	dirRule := rule("dirs", types.Exact, "cache", types.CategoryCache)
	dirRule.ApplyTo = types.ApplyDirs
	m := mustCompile(t, fileRule, dirRule)

	if got := classify(t, m, "a.log", "/p/a.log", types.Directory); len(got) != 0 {
		t.Errorf("file-only rule matched a directory: %d", len(got))
	}
	if got := classify(t, m, "cache", "/p/cache", types.File); len(got) != 0 {
		t.Errorf("dir-only rule matched a file: %d", len(got))
	}
	if got := classify(t, m, "cache", "/p/cache", types.Directory); len(got) != 1 {
		t.Errorf("dir-only rule missed a directory: %d", len(got))
	}
}

// TestClassifyIdempotent verifies classification is a pure function of
// the built matcher and its inputs.
func TestClassifyIdempotent(t *testing.T) {
	m := mustCompile(t,
		rule("pre", types.StartsWith, "tmp", types.CategoryTemp),
		rule("suf", types.EndsWith, ".tmp", types.CategoryTemp),
		rule("sub", types.Contains, "cache", types.CategoryCache),
	)

	first := classify(t, m, "tmp_cache.tmp", "/x/tmp_cache.tmp", types.File)
	second := classify(t, m, "tmp_cache.tmp", "/x/tmp_cache.tmp", types.File)
	if len(first) != len(second) {
		t.Fatalf("match counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("match %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestRulesWithSamePattern(t *testing.T) {
	m := mustCompile(t,
		rule("a", types.Exact, "tmp", types.CategoryTemp),
		rule("b", types.Exact, "tmp", types.CategoryCache),
	)

	if got := classify(t, m, "tmp", "/p/tmp", types.Directory); len(got) != 2 {
		t.Errorf("expected both same-pattern rules to match, got %d", len(got))
	}
}
