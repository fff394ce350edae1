package sqlsrc

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// PostgresClient implements Client over a single pgx connection.
//
// Grounded on internal/db/postgres.go's connection setup; generalized
// from "run a query, collect all rows" to the spec's streaming
// execute/fetch_one cursor discipline.
type PostgresClient struct {
	ctx  context.Context
	conn *pgx.Conn
	rows pgx.Rows // non-nil while a cursor is open
}

// NewPostgresClient connects to PostgreSQL and verifies connectivity.
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("sqlsrc: failed to connect to postgresql: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("sqlsrc: failed to ping postgresql: %w", err)
	}
	return &PostgresClient{ctx: ctx, conn: conn}, nil
}

func (c *PostgresClient) Execute(statement string, args ...any) error {
	if c.rows != nil {
		return ErrBusyCursor
	}
	rows, err := c.conn.Query(c.ctx, statement, args...)
	if err != nil {
		return &ExecError{Statement: statement, Err: err}
	}
	c.rows = rows
	return nil
}

func (c *PostgresClient) FetchOne() (Row, error) {
	if c.rows == nil {
		return nil, ErrDone
	}
	if !c.rows.Next() {
		err := c.rows.Err()
		c.rows.Close()
		c.rows = nil
		if err != nil {
			return nil, &FetchError{Err: err}
		}
		return nil, ErrDone
	}
	raw, err := c.rows.Values()
	if err != nil {
		c.rows.Close()
		c.rows = nil
		return nil, &FetchError{Err: err}
	}
	row := make(Row, len(raw))
	for i, v := range raw {
		row[i] = convertDriverValue(v)
	}
	return row, nil
}

func (c *PostgresClient) EscapeLiteral(text string) string {
	return "'" + strings.ReplaceAll(text, "'", "''") + "'"
}

func (c *PostgresClient) EscapeIdentifier(text string) string {
	return `"` + strings.ReplaceAll(text, `"`, `""`) + `"`
}

func (c *PostgresClient) Close() error {
	if c.rows != nil {
		c.rows.Close()
		c.rows = nil
	}
	return c.conn.Close(c.ctx)
}
