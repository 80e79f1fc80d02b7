package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ivoronin/diskhound/internal/config"
	"github.com/ivoronin/diskhound/internal/fsys"
	"github.com/ivoronin/diskhound/internal/history"
	"github.com/ivoronin/diskhound/internal/insights"
	"github.com/ivoronin/diskhound/internal/matcher"
	"github.com/ivoronin/diskhound/internal/scanner"
	"github.com/ivoronin/diskhound/internal/summary"
	"github.com/ivoronin/diskhound/internal/types"
	"github.com/ivoronin/diskhound/internal/ui"
)

// scanOptions holds CLI flags for the scan command. Zero/negative
// sentinels mean "take the value from the config file".
type scanOptions struct {
	configFile  string
	workers     int
	maxDepth    int
	excludes    []string
	top         int
	perCategory int
	minSizeStr  string
	historyFile string
	noProgress  bool
	interactive bool
}

// newScanCmd creates the scan subcommand.
func newScanCmd() *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a directory tree and report disk-usage insights",
		Long: `Scans a directory tree in parallel, classifies entries against the
configured pattern rules (temp files, caches, build artifacts, custom
categories), and prints a summary of where the space went.

The scan is strictly read-only: nothing is deleted or modified, and
symbolic links are never followed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runScan(path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configFile, "config", "c", "", "Config file (default "+config.DefaultPath+")")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Number of parallel scan workers (default from config)")
	cmd.Flags().IntVarP(&opts.maxDepth, "max-depth", "d", -1, "Limit scan depth, 0 = unlimited (default from config)")
	cmd.Flags().StringSliceVarP(&opts.excludes, "exclude", "e", nil, "Paths to skip (never descended into)")
	cmd.Flags().IntVar(&opts.top, "top", 0, "Rows per summary table (default from config)")
	cmd.Flags().IntVar(&opts.perCategory, "per-category", 0, "Insights kept per category (default from config)")
	cmd.Flags().StringVarP(&opts.minSizeStr, "min-size", "m", "0", "Ignore insight matches smaller than this (e.g. 1M)")
	cmd.Flags().StringVar(&opts.historyFile, "history-file", "", "Path to run history database (enables growth deltas)")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Browse the result in a terminal UI")

	return cmd
}

// runScan executes the pipeline: scan → classify → aggregate → render.
func runScan(path string, opts *scanOptions) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}

	minSize, err := parseSize(opts.minSizeStr)
	if err != nil {
		return fmt.Errorf("invalid --min-size: %w", err)
	}

	workers := pick(opts.workers, cfg.ScanWorkers, 0)
	maxDepth := pick(opts.maxDepth, cfg.MaxDepth, -1)
	topN := pick(opts.top, cfg.SummaryTop, 0)
	perCategory := pick(opts.perCategory, cfg.TopPerCategory, 0)
	excludes := append(append([]string{}, cfg.ExcludePaths...), opts.excludes...)

	root, err := fsys.ResolveRoot(path)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	rules, err := cfg.Rules()
	if err != nil {
		return err
	}
	m, err := matcher.Compile(rules)
	if err != nil {
		return fmt.Errorf("compile rules: %w", err)
	}

	showProgress := !opts.noProgress && isatty.IsTerminal(os.Stderr.Fd())

	// Phase 1: scan the filesystem into a frozen snapshot.
	snap, err := scanner.New(root, fsys.OS{}, workers, maxDepth, excludes, showProgress).Run()
	if err != nil {
		return err
	}

	// Phase 2: aggregate insights over the snapshot.
	roots, err := cfg.PathRoots()
	if err != nil {
		return err
	}
	bundle, err := insights.Aggregate(snap, m, insights.Options{
		TopK:    perCategory,
		MinSize: minSize,
		Paths:   pathRules(roots),
	})
	if err != nil {
		return err
	}

	// Phase 3: look up the previous run and record this one.
	store, err := history.Open(opts.historyFile)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	prev, err := store.Last(root)
	if err != nil {
		return err
	}
	if err := store.Record(root, historyRun(snap, bundle)); err != nil {
		return err
	}

	if opts.interactive {
		return ui.Run(snap, bundle)
	}
	summary.Render(os.Stdout, snap, bundle, prev, topN)
	return nil
}

// pick resolves a flag against its config fallback: the flag wins
// unless it still holds its unset sentinel.
func pick(flag, cfg, unset int) int {
	if flag == unset {
		return cfg
	}
	return flag
}

func pathRules(roots map[types.Category][]string) []insights.PathRule {
	var out []insights.PathRule
	for cat, paths := range roots {
		for _, p := range paths {
			out = append(out, insights.PathRule{
				Base:     p,
				Category: cat,
				Name:     "Additional " + string(cat) + " path",
			})
		}
	}
	return out
}

func historyRun(snap *types.ScanSnapshot, bundle *types.InsightBundle) history.Run {
	run := history.Run{
		When:        time.Now(),
		Files:       snap.Stats.Files,
		Directories: snap.Stats.Directories,
		TotalBytes:  snap.Stats.TotalBytes,
		Errors:      snap.Stats.Errors,
		Categories:  make(map[string]history.Total, len(bundle.Categories)),
	}
	for _, rep := range bundle.Categories {
		run.Categories[string(rep.Category)] = history.Total{
			Count: rep.Total,
			Bytes: rep.TotalBytes,
		}
	}
	return run
}
