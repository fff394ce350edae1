// Package sqlsrc implements the SqlClient capability (spec §4.B): a
// single-cursor, streaming statement executor over a relational source,
// plus the identifier/literal escaping the reflector needs to build
// information-schema queries.
package sqlsrc

import (
	"errors"
	"fmt"

	"github.com/tordrt/graphmigrate/internal/value"
)

// ErrBusyCursor is returned by Execute when a previous result stream on
// the same client has not been fully drained or cancelled.
var ErrBusyCursor = errors.New("sqlsrc: a cursor is already open on this client")

// ErrDone is returned by FetchOne once a result stream is exhausted.
var ErrDone = errors.New("sqlsrc: no more rows")

// ExecError wraps a failure to begin or run a statement.
type ExecError struct {
	Statement string
	Err       error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("sqlsrc: exec failed: %v", e.Err)
}
func (e *ExecError) Unwrap() error { return e.Err }

// FetchError wraps a failure while streaming a result.
type FetchError struct{ Err error }

func (e *FetchError) Error() string { return fmt.Sprintf("sqlsrc: fetch failed: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// Row is one positionally-ordered result row.
type Row []value.Value

// Client is the capability the schema reflector and the migration
// planner depend on. Only one result stream may be open at a time;
// calling Execute while a stream is open returns ErrBusyCursor.
type Client interface {
	// Execute begins a query, binding args as its statement parameters.
	Execute(statement string, args ...any) error
	// FetchOne returns the next row, or (nil, ErrDone) once the stream
	// is exhausted. After ErrDone the cursor is released and Execute may
	// be called again.
	FetchOne() (Row, error)
	// EscapeLiteral quotes text as a SQL string literal.
	EscapeLiteral(text string) string
	// EscapeIdentifier quotes text as a SQL identifier.
	EscapeIdentifier(text string) string
	// Close releases the underlying connection.
	Close() error
}

// ReadTable issues "SELECT col1, col2, ... FROM schema.table" with
// identifiers escaped by the client, and calls rowFn once per row in
// canonical column order, never materializing the whole table (spec
// §9's "dynamic row width" design note).
func ReadTable(c Client, schemaName, tableName string, columns []string, rowFn func(Row) error) error {
	stmt := buildSelectStatement(c, schemaName, tableName, columns)
	if err := c.Execute(stmt); err != nil {
		return &ExecError{Statement: stmt, Err: err}
	}
	for {
		row, err := c.FetchOne()
		if errors.Is(err, ErrDone) {
			return nil
		}
		if err != nil {
			return &FetchError{Err: err}
		}
		if err := rowFn(row); err != nil {
			return err
		}
	}
}

func buildSelectStatement(c Client, schemaName, tableName string, columns []string) string {
	stmt := "SELECT "
	for i, col := range columns {
		if i > 0 {
			stmt += ", "
		}
		stmt += c.EscapeIdentifier(col)
	}
	stmt += " FROM " + c.EscapeIdentifier(schemaName) + "." + c.EscapeIdentifier(tableName)
	return stmt
}
