package summary

import (
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/ivoronin/diskhound/internal/history"
	"github.com/ivoronin/diskhound/internal/types"
)

func init() {
	color.NoColor = true // keep assertions free of escape codes
}

func sampleSnapshot() *types.ScanSnapshot {
	big := &types.Node{Name: "big.log", Path: "/r/big.log", Kind: types.File, Size: 2048}
	small := &types.Node{Name: "small", Path: "/r/small", Kind: types.File, Size: 1}
	root := &types.Node{
		Name: "r", Path: "/r", Kind: types.Directory, Size: 2049,
		Children: []*types.Node{big, small},
	}
	return &types.ScanSnapshot{
		Root:  root,
		Stats: types.ScanStats{Files: 2, Directories: 1, TotalBytes: 2049},
	}
}

func sampleBundle() *types.InsightBundle {
	return &types.InsightBundle{Categories: []types.CategoryReport{{
		Category:   types.CategoryTemp,
		Total:      5,
		TotalBytes: 2048,
		Top: []types.Insight{
			{Category: types.CategoryTemp, Path: "/r/big.log", Size: 2048, RuleName: "Log files"},
		},
	}}}
}

func TestRenderContainsSections(t *testing.T) {
	var b strings.Builder
	Render(&b, sampleSnapshot(), sampleBundle(), nil, 10)
	out := b.String()

	for _, want := range []string{
		"Scan Summary",
		"Files: 2",
		"Top Space Consumers",
		"/r/big.log",
		"Temp",
		"across 5 matches",
		"Log files",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "since last scan") {
		t.Error("delta shown without history")
	}
}

func TestRenderShowsDeltas(t *testing.T) {
	prev := &history.Run{
		TotalBytes: 1025,
		Categories: map[string]history.Total{"temp": {Bytes: 1024}},
	}
	var b strings.Builder
	Render(&b, sampleSnapshot(), sampleBundle(), prev, 10)
	out := b.String()

	if !strings.Contains(out, "+1.0 KiB since last scan") {
		t.Errorf("missing growth delta:\n%s", out)
	}
}

func TestRenderListsErrors(t *testing.T) {
	snap := sampleSnapshot()
	for i := 0; i < 7; i++ {
		snap.Errors = append(snap.Errors, types.ScanError{Path: "/r/x", Reason: "denied"})
	}
	snap.Stats.Errors = 7

	var b strings.Builder
	Render(&b, snap, &types.InsightBundle{}, nil, 10)
	out := b.String()

	if !strings.Contains(out, "7 entries could not be read") {
		t.Errorf("missing error summary:\n%s", out)
	}
	if !strings.Contains(out, "and 2 more") {
		t.Errorf("missing truncation marker:\n%s", out)
	}
}

// TestRenderClampsTopN verifies out-of-range table bounds degrade to
// empty tables instead of slicing past the rankings.
func TestRenderClampsTopN(t *testing.T) {
	for _, topN := range []int{-3, 0} {
		var b strings.Builder
		Render(&b, sampleSnapshot(), sampleBundle(), nil, topN)
		out := b.String()
		if !strings.Contains(out, "Scan Summary") || !strings.Contains(out, "showing 0") {
			t.Errorf("topN=%d: expected empty tables, got:\n%s", topN, out)
		}
		if strings.Contains(out, "/r/big.log") {
			t.Errorf("topN=%d: rows rendered past the bound:\n%s", topN, out)
		}
	}
}

func TestLargestNodesExcludesRootAndSorts(t *testing.T) {
	snap := sampleSnapshot()
	nodes := largestNodes(snap, 5)
	if len(nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(nodes))
	}
	if nodes[0].Path != "/r/big.log" || nodes[1].Path != "/r/small" {
		t.Errorf("wrong order: %s, %s", nodes[0].Path, nodes[1].Path)
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := categoryLabel(types.CategoryBuildArtifact); got != "Build Artifact" {
		t.Errorf("categoryLabel = %q", got)
	}
}
