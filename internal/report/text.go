package report

import (
	"fmt"
	"io"
)

// TextFormatter formats a Summary as compact text.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the summary in compact text format.
func (f *TextFormatter) Format(s *Summary) error {
	if len(s.Statements) > 0 {
		return f.formatDryRun(s)
	}

	_, _ = fmt.Fprintf(f.writer, "MIGRATION (%s)\n", s.Mode)

	if len(s.NodesCreated) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "NODES:")
		for _, label := range sortedKeys(s.NodesCreated) {
			_, _ = fmt.Fprintf(f.writer, "  %s: %d\n", label, s.NodesCreated[label])
		}
	}

	if len(s.EdgesCreated) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "EDGES:")
		for _, edgeType := range sortedKeys(s.EdgesCreated) {
			_, _ = fmt.Fprintf(f.writer, "  %s: %d\n", edgeType, s.EdgesCreated[edgeType])
		}
	}

	if len(s.RowsSkipped) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "SKIPPED (null FK):")
		for _, table := range sortedKeys(s.RowsSkipped) {
			_, _ = fmt.Fprintf(f.writer, "  %s: %d\n", table, s.RowsSkipped[table])
		}
	}

	_, _ = fmt.Fprintln(f.writer)
	_, _ = fmt.Fprintf(f.writer, "indexes migrated: %d\n", s.IndexesMigrated)
	_, _ = fmt.Fprintf(f.writer, "constraints created: %d\n", s.ConstraintsCreated)

	return nil
}

func (f *TextFormatter) formatDryRun(s *Summary) error {
	_, _ = fmt.Fprintf(f.writer, "DRY RUN (%s), %d statements\n\n", s.Mode, len(s.Statements))
	for i, stmt := range s.Statements {
		_, _ = fmt.Fprintf(f.writer, "%d: %s\n", i, stmt.Text)
		if stmt.Params != nil && stmt.Params.Len() > 0 {
			_, _ = fmt.Fprintf(f.writer, "   params: %s\n", stmt.Params.String())
		}
	}
	return nil
}
