package types

// Insight is one classified finding: a node attributed to a category
// by a matched rule. Produced by the aggregator, never mutated.
type Insight struct {
	Category Category
	Path     string
	Size     int64
	Kind     NodeKind
	RuleName string
}

// CategoryReport holds everything the aggregator learned about one
// category: the top-K largest matches (descending by size, ties broken
// by path) plus totals over every match seen, including the ones that
// fell out of the bounded ranking.
type CategoryReport struct {
	Category   Category
	Top        []Insight
	Total      int64 // all matches, may exceed len(Top)
	TotalBytes int64 // sum of sizes across all matches
}

// InsightBundle is the aggregator's complete output: one report per
// category that had at least one match, ordered by total bytes
// descending (ties by category name).
type InsightBundle struct {
	Categories []CategoryReport
}

// Report returns the report for a category, or nil if it had no matches.
func (b *InsightBundle) Report(c Category) *CategoryReport {
	for i := range b.Categories {
		if b.Categories[i].Category == c {
			return &b.Categories[i]
		}
	}
	return nil
}
