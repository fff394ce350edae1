package sqlsrc

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLClient implements Client over database/sql with the MySQL
// driver.
//
// Grounded on internal/db/mysql.go's connection setup.
type MySQLClient struct {
	ctx      context.Context
	db       *sql.DB
	rows     *sql.Rows         // non-nil while a cursor is open
	colTypes []*sql.ColumnType // column metadata for the open cursor, by position
}

// NewMySQLClient connects to MySQL and verifies connectivity.
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("sqlsrc: failed to open mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlsrc: failed to ping mysql: %w", err)
	}
	return &MySQLClient{ctx: ctx, db: db}, nil
}

func (c *MySQLClient) Execute(statement string, args ...any) error {
	if c.rows != nil {
		return ErrBusyCursor
	}
	rows, err := c.db.QueryContext(c.ctx, statement, args...)
	if err != nil {
		return &ExecError{Statement: statement, Err: err}
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		return &ExecError{Statement: statement, Err: err}
	}
	c.rows = rows
	c.colTypes = colTypes
	return nil
}

func (c *MySQLClient) FetchOne() (Row, error) {
	if c.rows == nil {
		return nil, ErrDone
	}
	if !c.rows.Next() {
		err := c.rows.Err()
		c.rows.Close()
		c.rows = nil
		c.colTypes = nil
		if err != nil {
			return nil, &FetchError{Err: err}
		}
		return nil, ErrDone
	}

	raw := make([]any, len(c.colTypes))
	ptrs := make([]any, len(c.colTypes))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		c.rows.Close()
		c.rows = nil
		c.colTypes = nil
		return nil, &FetchError{Err: err}
	}

	row := make(Row, len(raw))
	for i, v := range raw {
		row[i] = convertMySQLValue(v, c.colTypes[i].DatabaseTypeName())
	}
	return row, nil
}

func (c *MySQLClient) EscapeLiteral(text string) string {
	return "'" + strings.ReplaceAll(text, "'", "''") + "'"
}

func (c *MySQLClient) EscapeIdentifier(text string) string {
	return "`" + strings.ReplaceAll(text, "`", "``") + "`"
}

func (c *MySQLClient) Close() error {
	if c.rows != nil {
		c.rows.Close()
		c.rows = nil
		c.colTypes = nil
	}
	return c.db.Close()
}
