//go:build unix

package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ivoronin/diskhound/internal/config"
	"github.com/ivoronin/diskhound/internal/fsys"
	"github.com/ivoronin/diskhound/internal/history"
	"github.com/ivoronin/diskhound/internal/insights"
	"github.com/ivoronin/diskhound/internal/matcher"
	"github.com/ivoronin/diskhound/internal/scanner"
	"github.com/ivoronin/diskhound/internal/summary"
	"github.com/ivoronin/diskhound/internal/types"
)

func init() {
	color.NoColor = true
}

// =============================================================================
// Section: Full Pipeline Integration Tests
// =============================================================================

// TestFullPipelineDefaultRules scans a realistic project tree with the
// default rule set and checks that every category picks up what it should.
func TestFullPipelineDefaultRules(t *testing.T) {
	root := buildProjectTree(t)

	snap, bundle := runPipeline(t, root, insights.Options{})

	if snap.Stats.Errors != 0 {
		t.Fatalf("unexpected scan errors: %d", snap.Stats.Errors)
	}

	build := bundle.Report(types.CategoryBuildArtifact)
	if build == nil {
		t.Fatal("no build_artifact report")
	}
	if !hasInsightPath(build.Top, filepath.Join(root, "app", "node_modules")) {
		t.Errorf("node_modules not attributed to build_artifact: %+v", build.Top)
	}

	cache := bundle.Report(types.CategoryCache)
	if cache == nil {
		t.Fatal("no cache report")
	}
	if !hasInsightPath(cache.Top, filepath.Join(root, "app", "__pycache__")) {
		t.Errorf("__pycache__ not attributed to cache: %+v", cache.Top)
	}

	tmp := bundle.Report(types.CategoryTemp)
	if tmp == nil {
		t.Fatal("no temp report")
	}
	if !hasInsightPath(tmp.Top, filepath.Join(root, "scratch.tmp")) {
		t.Errorf("scratch.tmp not attributed to temp: %+v", tmp.Top)
	}
}

// TestFullPipelineStopRecursionPrunes verifies that a node_modules match
// produces a single directory insight rather than one per contained file.
func TestFullPipelineStopRecursionPrunes(t *testing.T) {
	root := buildProjectTree(t)

	_, bundle := runPipeline(t, root, insights.Options{})

	build := bundle.Report(types.CategoryBuildArtifact)
	if build == nil {
		t.Fatal("no build_artifact report")
	}
	nm := filepath.Join(root, "app", "node_modules")
	for _, in := range build.Top {
		if in.Path != nm && strings.HasPrefix(in.Path, nm+"/") {
			t.Errorf("insight below pruned node_modules: %s", in.Path)
		}
	}
}

// TestFullPipelineMinSize checks that small matches are counted in the
// totals but kept out of the ranking.
func TestFullPipelineMinSize(t *testing.T) {
	root := buildProjectTree(t)

	_, bundle := runPipeline(t, root, insights.Options{MinSize: 1 << 20})

	tmp := bundle.Report(types.CategoryTemp)
	if tmp == nil {
		t.Fatal("no temp report")
	}
	if len(tmp.Top) != 0 {
		t.Errorf("ranked %d temp insights below min size", len(tmp.Top))
	}
	if tmp.Total == 0 || tmp.TotalBytes == 0 {
		t.Error("totals should still count filtered matches")
	}
}

// TestFullPipelinePathRules attributes a configured directory by prefix,
// the way additional_paths entries do.
func TestFullPipelinePathRules(t *testing.T) {
	root := buildProjectTree(t)

	opts := insights.Options{
		Paths: []insights.PathRule{{
			Base:     filepath.Join(root, "app", "src"),
			Category: types.CategoryCache,
			Name:     "path:src",
		}},
	}
	_, bundle := runPipeline(t, root, opts)

	cache := bundle.Report(types.CategoryCache)
	if cache == nil {
		t.Fatal("no cache report")
	}
	if !hasInsightPath(cache.Top, filepath.Join(root, "app", "src")) {
		t.Error("configured path root not attributed")
	}
}

// =============================================================================
// Section: Summary and History Integration
// =============================================================================

// TestPipelineSummaryAndHistory runs two scans against the same history
// store and checks the second summary reports a growth delta.
func TestPipelineSummaryAndHistory(t *testing.T) {
	root := buildProjectTree(t)

	store, err := history.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	snap, bundle := runPipeline(t, root, insights.Options{})
	if err := store.Record(root, runFrom(snap, bundle)); err != nil {
		t.Fatal(err)
	}

	// Grow the tree and scan again.
	createFile(t, filepath.Join(root, "extra.log"), 4096)
	snap2, bundle2 := runPipeline(t, root, insights.Options{})

	prev, err := store.Last(root)
	if err != nil {
		t.Fatal(err)
	}
	if prev == nil {
		t.Fatal("expected a previous run")
	}

	var buf bytes.Buffer
	summary.Render(&buf, snap2, bundle2, prev, 10)
	out := buf.String()
	if !strings.Contains(out, "since last scan") {
		t.Errorf("expected growth delta in summary, got:\n%s", out)
	}
	if !strings.Contains(out, "Temp") {
		t.Errorf("expected category section in summary, got:\n%s", out)
	}
}

// =============================================================================
// Helper Functions
// =============================================================================

// buildProjectTree lays out a small but realistic project checkout:
//
//	root/
//	  scratch.tmp          (2 KiB)
//	  app/
//	    src/main.go        (1 KiB)
//	    node_modules/left-pad/index.js (8 KiB)
//	    __pycache__/mod.pyc (4 KiB)
func buildProjectTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	createFile(t, filepath.Join(root, "scratch.tmp"), 2048)
	createFile(t, filepath.Join(root, "app", "src", "main.go"), 1024)
	createFile(t, filepath.Join(root, "app", "node_modules", "left-pad", "index.js"), 8192)
	createFile(t, filepath.Join(root, "app", "__pycache__", "mod.pyc"), 4096)
	return root
}

func createFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

// testConfig mirrors the shipped rule set minus the tmp/temp directory
// rule: test trees live under the system temp directory, where a
// Contains "/tmp/" rule would attribute the whole tree to temp.
const testConfig = `{
	"patterns": [
		{"name": "Temp files", "pattern": "**/*.tmp", "category": "temp", "applyTo": "file"},
		{"name": "Log files", "pattern": "**/*.log", "category": "temp", "applyTo": "file"},
		{"name": "Python bytecode cache", "pattern": "**/__pycache__/**", "category": "cache", "applyTo": "dir", "stopRecursion": true},
		{"name": "Node modules", "pattern": "**/node_modules/**", "category": "build_artifact", "applyTo": "dir", "stopRecursion": true}
	]
}`

func runPipeline(t *testing.T, root string, opts insights.Options) (*types.ScanSnapshot, *types.InsightBundle) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(cfgPath, []byte(testConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	rules, err := cfg.Rules()
	if err != nil {
		t.Fatal(err)
	}
	m, err := matcher.Compile(rules)
	if err != nil {
		t.Fatal(err)
	}

	snap, err := scanner.New(root, fsys.OS{}, 4, 0, nil, false).Run()
	if err != nil {
		t.Fatal(err)
	}

	bundle, err := insights.Aggregate(snap, m, opts)
	if err != nil {
		t.Fatal(err)
	}
	return snap, bundle
}

func runFrom(snap *types.ScanSnapshot, bundle *types.InsightBundle) history.Run {
	run := history.Run{
		Files:       snap.Stats.Files,
		Directories: snap.Stats.Directories,
		TotalBytes:  snap.Stats.TotalBytes,
		Errors:      snap.Stats.Errors,
		Categories:  make(map[string]history.Total),
	}
	for _, rep := range bundle.Categories {
		run.Categories[string(rep.Category)] = history.Total{
			Count: rep.Total,
			Bytes: rep.TotalBytes,
		}
	}
	return run
}

func hasInsightPath(ins []types.Insight, path string) bool {
	for _, in := range ins {
		if in.Path == path {
			return true
		}
	}
	return false
}
