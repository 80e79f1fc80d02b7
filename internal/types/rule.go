package types

// MatchKind selects the comparison a pattern uses against an entry.
// The set is closed: the matcher compiler builds one dedicated
// structure per kind and dispatches exhaustively.
type MatchKind uint8

const (
	Exact      MatchKind = iota // whole name equals pattern
	Contains                    // pattern is a substring of the full path
	EndsWith                    // name ends with pattern
	StartsWith                  // name starts with pattern
	Glob                        // name matches a shell glob pattern
)

func (k MatchKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Contains:
		return "contains"
	case EndsWith:
		return "endswith"
	case StartsWith:
		return "startswith"
	case Glob:
		return "glob"
	}
	return "unknown"
}

// Category labels the disk-usage bucket an insight belongs to.
// Beyond the three built-in values, any other string is a valid
// user-defined category.
type Category string

const (
	CategoryTemp          Category = "temp"
	CategoryCache         Category = "cache"
	CategoryBuildArtifact Category = "build_artifact"
)

// ApplyTo restricts a rule to files, directories, or both.
// It is a bitflag so that a BOTH rule can be distributed into both
// compile-time buckets without the hot matching loop ever branching
// on node kind.
type ApplyTo uint8

const (
	ApplyFiles ApplyTo = 1 << iota
	ApplyDirs
	ApplyBoth = ApplyFiles | ApplyDirs
)

// PatternRule is one immutable classification rule, supplied once to
// the matcher compiler.
type PatternRule struct {
	Name          string
	Kind          MatchKind
	Pattern       string
	Category      Category
	ApplyTo       ApplyTo
	StopRecursion bool // don't descend into a matched directory's subtree
}
