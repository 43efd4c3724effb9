package tabular

// Canonical output file names, relative to the output directory.
const (
	ResolvedFile = "town_id_map.csv"
	ReviewFile   = "needs_review.csv"
	LongFile     = "neighbourhoods_long.csv"
	PivotFile    = "neighbourhoods_pivot.csv"
)
