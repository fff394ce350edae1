package report

import (
	"fmt"
	"io"
)

// MarkdownFormatter formats a Summary as markdown.
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter.
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the summary in markdown format.
func (f *MarkdownFormatter) Format(s *Summary) error {
	if len(s.Statements) > 0 {
		return f.formatDryRun(s)
	}

	_, _ = fmt.Fprintf(f.writer, "# Migration report (%s)\n\n", s.Mode)

	if len(s.NodesCreated) > 0 {
		_, _ = fmt.Fprintln(f.writer, "## Nodes")
		_, _ = fmt.Fprintln(f.writer)
		for _, label := range sortedKeys(s.NodesCreated) {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %d\n", label, s.NodesCreated[label])
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(s.EdgesCreated) > 0 {
		_, _ = fmt.Fprintln(f.writer, "## Edges")
		_, _ = fmt.Fprintln(f.writer)
		for _, edgeType := range sortedKeys(s.EdgesCreated) {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %d\n", edgeType, s.EdgesCreated[edgeType])
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(s.RowsSkipped) > 0 {
		_, _ = fmt.Fprintln(f.writer, "## Skipped rows (null foreign key)")
		_, _ = fmt.Fprintln(f.writer)
		for _, table := range sortedKeys(s.RowsSkipped) {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %d\n", table, s.RowsSkipped[table])
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	_, _ = fmt.Fprintln(f.writer, "## Indexes and constraints")
	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintf(f.writer, "- indexes migrated: %d\n", s.IndexesMigrated)
	_, _ = fmt.Fprintf(f.writer, "- constraints created: %d\n", s.ConstraintsCreated)

	return nil
}

func (f *MarkdownFormatter) formatDryRun(s *Summary) error {
	_, _ = fmt.Fprintf(f.writer, "# Dry run (%s)\n\n", s.Mode)
	for i, stmt := range s.Statements {
		_, _ = fmt.Fprintf(f.writer, "%d. `%s`\n", i, stmt.Text)
		if stmt.Params != nil && stmt.Params.Len() > 0 {
			_, _ = fmt.Fprintf(f.writer, "   - params: `%s`\n", stmt.Params.String())
		}
	}
	return nil
}
