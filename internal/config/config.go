// Package config loads diskhound's JSON configuration: pattern rules,
// category path roots, and scan/report tuning. Absent file or absent
// fields fall back to built-in defaults; the shipped rule set covers
// common temp files, tool caches, and build artifacts.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivoronin/diskhound/internal/types"
)

// DefaultPath is the config file location unless overridden by flag.
const DefaultPath = "~/.config/diskhound/config.json"

// RuleConfig is one pattern rule as written in the config file. The
// pattern is a `**/`-anchored glob; Load classifies each pattern into
// the cheapest match kind it can (see classify).
type RuleConfig struct {
	Name          string `json:"name"`
	Pattern       string `json:"pattern"`
	Category      string `json:"category"`
	ApplyTo       string `json:"applyTo,omitempty"`       // file | dir | both
	StopRecursion bool   `json:"stopRecursion,omitempty"`
}

// Config is the full on-disk configuration.
type Config struct {
	Patterns        []RuleConfig        `json:"patterns"`
	AdditionalPaths map[string][]string `json:"additionalPaths,omitempty"` // category -> path roots
	ExcludePaths    []string            `json:"excludePaths,omitempty"`
	MaxDepth        int                 `json:"maxDepth,omitempty"`
	ScanWorkers     int                 `json:"scanWorkers,omitempty"`
	TopPerCategory  int                 `json:"topPerCategory,omitempty"`
	SummaryTop      int                 `json:"summaryTop,omitempty"`
}

// Load reads the config at path ("" = DefaultPath). A missing file is
// not an error: the defaults are returned. A present but malformed
// file is an error — silently ignoring a user's config would be worse.
func Load(path string) (*Config, error) {
	resolved, err := expandUser(firstNonEmpty(path, DefaultPath))
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(resolved)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", resolved, err)
	}
	// Decoding over the defaults keeps any field the file omits. The
	// pattern list is the exception: decoding a JSON array over a
	// non-empty slice merges element-wise, so a present "patterns" key
	// must drop the default rules first.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	if _, ok := probe["patterns"]; ok {
		cfg.Patterns = nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	if cfg.ScanWorkers < 0 || cfg.MaxDepth < 0 || cfg.TopPerCategory < 0 || cfg.SummaryTop < 0 {
		return nil, fmt.Errorf("parse config %s: negative tuning value", resolved)
	}
	return cfg, nil
}

// Rules converts the configured glob patterns into kinded PatternRules
// for the matcher compiler. Brace alternations are expanded first, so
// "**/*.{swp,bak}" contributes two rules.
func (c *Config) Rules() ([]types.PatternRule, error) {
	var out []types.PatternRule
	for _, rc := range c.Patterns {
		cat, err := parseCategory(rc.Category)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", rc.Name, err)
		}
		applyTo, err := parseApplyTo(rc.ApplyTo)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", rc.Name, err)
		}
		for _, pat := range expandBraces(rc.Pattern) {
			for _, kinded := range classify(pat) {
				out = append(out, types.PatternRule{
					Name:          rc.Name,
					Kind:          kinded.kind,
					Pattern:       kinded.pattern,
					Category:      cat,
					ApplyTo:       applyTo,
					StopRecursion: rc.StopRecursion,
				})
			}
		}
	}
	return out, nil
}

// PathRoots returns the per-category additional path roots with ~
// expanded and trailing separators trimmed.
func (c *Config) PathRoots() (map[types.Category][]string, error) {
	out := make(map[types.Category][]string, len(c.AdditionalPaths))
	for rawCat, paths := range c.AdditionalPaths {
		cat, err := parseCategory(rawCat)
		if err != nil {
			return nil, fmt.Errorf("additionalPaths: %w", err)
		}
		for _, p := range paths {
			expanded, err := expandUser(p)
			if err != nil {
				return nil, err
			}
			out[cat] = append(out[cat], strings.TrimRight(expanded, "/"))
		}
	}
	return out, nil
}

type kindedPattern struct {
	kind    types.MatchKind
	pattern string
}

func hasGlobChars(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// classify turns one expanded `**/…` glob into the cheapest matcher
// kind:
//
//	**/name      → Exact on the entry name
//	**/seg/**    → Contains "/seg/" on the path, plus Exact "seg" for
//	               the segment directory itself (a path never ends in
//	               a separator, so the substring alone would miss it)
//	**/*.ext     → EndsWith ".ext" on the name
//	**/prefix*   → StartsWith "prefix" on the name
//	anything else → Glob fallback on the name
func classify(pattern string) []kindedPattern {
	rest, anchored := strings.CutPrefix(pattern, "**/")
	if !anchored {
		return []kindedPattern{{types.Glob, pattern}}
	}

	if mid, ok := strings.CutSuffix(rest, "/**"); ok && !hasGlobChars(mid) {
		kinded := []kindedPattern{{types.Contains, "/" + mid + "/"}}
		if !strings.Contains(mid, "/") {
			kinded = append(kinded, kindedPattern{types.Exact, mid})
		}
		return kinded
	}
	if suffix, ok := strings.CutPrefix(rest, "*"); ok && !hasGlobChars(suffix) {
		return []kindedPattern{{types.EndsWith, suffix}}
	}
	if prefix, ok := strings.CutSuffix(rest, "*"); ok && !hasGlobChars(prefix) {
		return []kindedPattern{{types.StartsWith, prefix}}
	}
	if !hasGlobChars(rest) {
		return []kindedPattern{{types.Exact, rest}}
	}
	return []kindedPattern{{types.Glob, rest}}
}

// expandBraces expands one level of {a,b,c} alternation recursively:
// "**/*.{swp,bak}" → ["**/*.swp", "**/*.bak"].
func expandBraces(pattern string) []string {
	start := strings.IndexByte(pattern, '{')
	if start == -1 {
		return []string{pattern}
	}
	end := strings.IndexByte(pattern[start:], '}')
	if end == -1 {
		return []string{pattern}
	}
	end += start
	var out []string
	for _, choice := range strings.Split(pattern[start+1:end], ",") {
		out = append(out, expandBraces(pattern[:start]+choice+pattern[end+1:])...)
	}
	return out
}

func parseCategory(s string) (types.Category, error) {
	if s == "" {
		return "", fmt.Errorf("empty category")
	}
	return types.Category(s), nil
}

func parseApplyTo(s string) (types.ApplyTo, error) {
	switch s {
	case "", "both":
		return types.ApplyBoth, nil
	case "file":
		return types.ApplyFiles, nil
	case "dir":
		return types.ApplyDirs, nil
	}
	return 0, fmt.Errorf("invalid applyTo %q", s)
}

// expandUser resolves a leading ~ against the current user's home.
func expandUser(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %s: %w", p, err)
		}
		return filepath.Join(home, p[1:]), nil
	}
	return p, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
