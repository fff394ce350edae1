package schemainfo

import (
	"context"

	"github.com/tordrt/graphmigrate/internal/sqlsrc"
)

// NewMySQLReflector builds a Reflector for a MySQL source. databaseName
// is the schema (database) to reflect and doubles as MySQL's canonical
// default schema (spec §4.F.1: MySQL has no separate "public" concept,
// the connection's database plays that role).
//
// Grounded on internal/db/mysql_extractor.go's information_schema
// queries; the constraint grouping in listUniqueConstraints additionally
// follows original_source/src/source/mysql.cpp, which groups by
// (table, constraint_name) rather than constraint_name alone because
// MySQL names every primary key constraint "PRIMARY" regardless of
// table.
func NewMySQLReflector(client sqlsrc.Client, databaseName string) *Reflector {
	return &Reflector{client: client, queries: &mysqlQueries{client: client, schema: databaseName}}
}

type mysqlQueries struct {
	client sqlsrc.Client
	schema string
}

func (q *mysqlQueries) canonicalSchema() string { return q.schema }

func (q *mysqlQueries) listBaseTables(ctx context.Context) ([]tableRef, error) {
	rows, err := queryRows(q.client, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = `+q.client.EscapeLiteral(q.schema)+`
			AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, err
	}
	refs := make([]tableRef, len(rows))
	for i, row := range rows {
		refs[i] = tableRef{Schema: q.schema, Name: row[0].Str()}
	}
	return refs, nil
}

func (q *mysqlQueries) listColumns(ctx context.Context, t tableRef) ([]string, error) {
	rows, err := queryRows(q.client, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = `+q.client.EscapeLiteral(t.Schema)+`
			AND table_name = `+q.client.EscapeLiteral(t.Name)+`
		ORDER BY ordinal_position
	`)
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(rows))
	for i, row := range rows {
		cols[i] = row[0].Str()
	}
	return cols, nil
}

func (q *mysqlQueries) listPrimaryKeyColumns(ctx context.Context, t tableRef) ([]string, error) {
	rows, err := queryRows(q.client, `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = `+q.client.EscapeLiteral(t.Schema)+`
			AND table_name = `+q.client.EscapeLiteral(t.Name)+`
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`)
	if err != nil {
		return nil, err
	}
	cols := make([]string, len(rows))
	for i, row := range rows {
		cols[i] = row[0].Str()
	}
	return cols, nil
}

func (q *mysqlQueries) listForeignKeys(ctx context.Context) ([]fkRow, error) {
	rows, err := queryRows(q.client, `
		SELECT
			kcu.constraint_name,
			kcu.table_schema,
			kcu.table_name,
			kcu.column_name,
			kcu.referenced_table_schema,
			kcu.referenced_table_name,
			kcu.referenced_column_name
		FROM information_schema.key_column_usage kcu
		WHERE kcu.table_schema = `+q.client.EscapeLiteral(q.schema)+`
			AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.constraint_name, kcu.ordinal_position
	`)
	if err != nil {
		return nil, err
	}
	out := make([]fkRow, len(rows))
	for i, row := range rows {
		out[i] = fkRow{
			ConstraintName: row[0].Str(),
			ChildSchema:    row[1].Str(),
			ChildTable:     row[2].Str(),
			ChildColumn:    row[3].Str(),
			ParentSchema:   row[4].Str(),
			ParentTable:    row[5].Str(),
			ParentColumn:   row[6].Str(),
		}
	}
	return out, nil
}

func (q *mysqlQueries) listExistenceConstraints(ctx context.Context) ([]existenceRow, error) {
	rows, err := queryRows(q.client, `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = `+q.client.EscapeLiteral(q.schema)+`
			AND is_nullable = 'NO'
		ORDER BY table_name, ordinal_position
	`)
	if err != nil {
		return nil, err
	}
	out := make([]existenceRow, len(rows))
	for i, row := range rows {
		out[i] = existenceRow{Schema: q.schema, Table: row[0].Str(), Column: row[1].Str()}
	}
	return out, nil
}

// listUniqueConstraints groups by (table_name, index_name) because
// MySQL's statistics view names every primary key index "PRIMARY" on
// every table; grouping by index name alone would merge every table's
// primary key into one UniqueConstraint.
func (q *mysqlQueries) listUniqueConstraints(ctx context.Context) ([]uniqueRow, error) {
	rows, err := queryRows(q.client, `
		SELECT table_name, index_name, column_name
		FROM information_schema.statistics
		WHERE table_schema = `+q.client.EscapeLiteral(q.schema)+`
			AND non_unique = 0
		ORDER BY table_name, index_name, seq_in_index
	`)
	if err != nil {
		return nil, err
	}
	out := make([]uniqueRow, len(rows))
	for i, row := range rows {
		out[i] = uniqueRow{Table: row[0].Str(), ConstraintName: row[1].Str(), Schema: q.schema, Column: row[2].Str()}
	}
	return out, nil
}
