// Package graphdest implements the GraphClient capability (spec §4.D)
// and the graph-emission primitives built on top of it (spec §4.E): a
// parameterized-statement, single-cursor client over a Bolt/Cypher
// destination, plus the exact CREATE/MERGE/DROP statement shapes the
// migration planner and the graph-to-graph mover use to write nodes,
// relationships, indexes and constraints.
package graphdest

import (
	"errors"
	"fmt"

	"github.com/tordrt/graphmigrate/internal/value"
)

// ErrBusyCursor is returned by Execute when a previous result has not
// been fully drained.
var ErrBusyCursor = errors.New("graphdest: a cursor is already open on this client")

// ErrDone is returned by FetchOne once a result set is exhausted.
var ErrDone = errors.New("graphdest: no more rows")

// ExecError wraps a failure to run a statement against the destination.
type ExecError struct {
	Statement string
	Err       error
}

func (e *ExecError) Error() string { return fmt.Sprintf("graphdest: exec failed: %v", e.Err) }
func (e *ExecError) Unwrap() error { return e.Err }

// FetchError wraps a failure to read the next row of a result.
type FetchError struct{ Err error }

func (e *FetchError) Error() string { return fmt.Sprintf("graphdest: fetch failed: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// UnexpectedResultError is raised when a statement that spec §4.E
// defines as returning no rows (or exactly one row of a known shape)
// returns something else — mirrors the CHECK(...) assertions in
// original_source/src/memgraph_destination.cpp.
type UnexpectedResultError struct {
	Reason string
}

func (e *UnexpectedResultError) Error() string { return "graphdest: unexpected result: " + e.Reason }

// Row is one row of a graph query result.
type Row []value.Value

// Client is the GraphClient capability: a parameterized-statement,
// single-cursor execute/fetch_one contract over a Bolt/Cypher
// destination (spec §4.D).
type Client interface {
	Execute(statement string, params *value.Map) error
	FetchOne() (Row, error)
	Close() error
}

// drainExpectNone runs stmt and asserts it returns no rows, the shape
// CreateNode/CreateLabelIndex/etc. expect in the original.
func drainExpectNone(client Client, stmt string, params *value.Map) error {
	if err := client.Execute(stmt, params); err != nil {
		return &ExecError{Statement: stmt, Err: err}
	}
	_, err := client.FetchOne()
	if errors.Is(err, ErrDone) {
		return nil
	}
	if err != nil {
		return &FetchError{Err: err}
	}
	return &UnexpectedResultError{Reason: "expected no rows, got at least one"}
}

// drainExpectOneInt64 runs stmt and asserts it returns exactly one row
// with exactly one int64 column, returning that value.
func drainExpectOneInt64(client Client, stmt string, params *value.Map) (int64, error) {
	if err := client.Execute(stmt, params); err != nil {
		return 0, &ExecError{Statement: stmt, Err: err}
	}
	row, err := client.FetchOne()
	if err != nil {
		return 0, &FetchError{Err: err}
	}
	if len(row) != 1 || row[0].Kind() != value.KindInt64 {
		return 0, &UnexpectedResultError{Reason: "expected a single int64 column"}
	}
	n := row[0].Int64()
	if _, err := client.FetchOne(); !errors.Is(err, ErrDone) {
		return 0, &UnexpectedResultError{Reason: "expected exactly one row"}
	}
	return n, nil
}
