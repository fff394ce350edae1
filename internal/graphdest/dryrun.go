package graphdest

import (
	"github.com/tordrt/graphmigrate/internal/value"
)

// Statement is one recorded dry-run statement: the Cypher text plus its
// bound-parameter map, in the exact form a live Client would have
// received it.
type Statement struct {
	Text   string
	Params *value.Map
}

// DryRunClient implements Client without touching a destination: it
// records every statement instead of sending it, and fabricates the
// result shape the emission primitives in emit.go expect (zero rows, or
// one int64 row for a RETURN COUNT(...) relationship statement) so a
// planner or mover run can be driven end to end for --dry-run reporting.
type DryRunClient struct {
	Statements []Statement

	pending *Statement
	fetched bool
}

// NewDryRunClient returns an empty recorder.
func NewDryRunClient() *DryRunClient { return &DryRunClient{} }

func (c *DryRunClient) Execute(statement string, params *value.Map) error {
	if c.pending != nil {
		return ErrBusyCursor
	}
	stmt := Statement{Text: statement, Params: params}
	c.Statements = append(c.Statements, stmt)
	c.pending = &stmt
	c.fetched = false
	return nil
}

func (c *DryRunClient) FetchOne() (Row, error) {
	if c.pending == nil {
		return nil, ErrDone
	}
	if c.fetched || !isCountStatement(c.pending.Text) {
		c.pending = nil
		return nil, ErrDone
	}
	c.fetched = true
	return Row{value.Int64(1)}, nil
}

func (c *DryRunClient) Close() error { return nil }

func isCountStatement(stmt string) bool {
	return len(stmt) > 0 && containsReturnCount(stmt)
}

func containsReturnCount(stmt string) bool {
	const needle = "RETURN COUNT("
	for i := 0; i+len(needle) <= len(stmt); i++ {
		if stmt[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
