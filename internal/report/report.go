// Package report renders a completed migration's counts (and, in
// --dry-run mode, its planned statement sequence) to an io.Writer.
//
// Kept and materially rewritten from internal/formatter/text.go and
// markdown.go: the teacher's formatters render a schema.Schema's
// columns/relations/indexes; these render a Summary's per-label node
// and edge counts, skipped rows, and migrated constraints, using the
// same io.Writer-based Format(...) error shape and section-heading
// style.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/tordrt/graphmigrate/internal/graphdest"
	"github.com/tordrt/graphmigrate/internal/graphmover"
	"github.com/tordrt/graphmigrate/internal/planner"
)

// Summary is the post-run shape both migration modes report through.
type Summary struct {
	Mode               string // "relational" or "graph"
	NodesCreated       map[string]int64
	EdgesCreated       map[string]int64
	RowsSkipped        map[string]int64
	IndexesMigrated    int
	ConstraintsCreated int

	// Statements is populated only in --dry-run mode: the full planned
	// statement sequence instead of execution counts.
	Statements []graphdest.Statement
}

// FromPlannerResult builds a Summary from a relational-source migration.
func FromPlannerResult(r *planner.Result) *Summary {
	return &Summary{
		Mode:               "relational",
		NodesCreated:       r.NodesCreated,
		EdgesCreated:       r.EdgesCreated,
		RowsSkipped:        r.RowsSkipped,
		ConstraintsCreated: r.ConstraintsCreated,
	}
}

// FromMoverResult builds a Summary from a graph-to-graph migration.
func FromMoverResult(r *graphmover.Result) *Summary {
	return &Summary{
		Mode:               "graph",
		NodesCreated:       map[string]int64{"vertices": r.NodesCreated},
		EdgesCreated:       map[string]int64{"edges": r.EdgesCreated},
		IndexesMigrated:    r.IndexesMigrated,
		ConstraintsCreated: r.ConstraintsCreated,
	}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Formatter renders a Summary to an io.Writer, matching the shape of
// formatter.TextFormatter/MarkdownFormatter in the teacher repo.
type Formatter interface {
	Format(s *Summary) error
}

// New returns the Formatter for the given --format value ("text" or
// "markdown"); unrecognized values are a caller error, reported the same
// way cmd/llmschema/main.go reports an invalid --format.
func New(w io.Writer, format string) (Formatter, error) {
	switch format {
	case "text", "":
		return NewTextFormatter(w), nil
	case "markdown":
		return NewMarkdownFormatter(w), nil
	default:
		return nil, fmt.Errorf("report: invalid format %q (must be %q or %q)", format, "text", "markdown")
	}
}
