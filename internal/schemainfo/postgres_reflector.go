package schemainfo

import (
	"context"

	"github.com/tordrt/graphmigrate/internal/sqlsrc"
)

// NewPostgresReflector builds a Reflector for a PostgreSQL source.
// schemaName is the search-path schema to reflect; pass "public" unless
// the source uses a non-default schema.
//
// Grounded on internal/db/postgres_extractor.go's information_schema
// queries, reshaped from per-table extraction into the single
// cross-referenced SchemaInfo graph spec §4.C requires.
func NewPostgresReflector(client sqlsrc.Client, schemaName string) *Reflector {
	return &Reflector{client: client, queries: &postgresQueries{client: client, schema: schemaName}}
}

type postgresQueries struct {
	client sqlsrc.Client
	schema string
}

func (q *postgresQueries) canonicalSchema() string { return "public" }

func (q *postgresQueries) listBaseTables(ctx context.Context) ([]tableRef, error) {
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

func (q *postgresQueries) listColumns(ctx context.Context, t tableRef) ([]string, error) {
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

func (q *postgresQueries) listPrimaryKeyColumns(ctx context.Context, t tableRef) ([]string, error) {
	rows, err := queryRows(q.client, `
		SELECT kcu.column_name
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.table_constraints tc
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE kcu.table_schema = `+q.client.EscapeLiteral(t.Schema)+`
			AND kcu.table_name = `+q.client.EscapeLiteral(t.Name)+`
			AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position
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

// listForeignKeys returns every foreign key in the schema in one
// aggregate query, ordered so that rows belonging to the same
// constraint are contiguous and in declaration-column order.
func (q *postgresQueries) listForeignKeys(ctx context.Context) ([]fkRow, error) {
	rows, err := queryRows(q.client, `
		SELECT
			tc.constraint_name,
			tc.table_schema,
			tc.table_name,
			kcu.column_name,
			pku.table_schema,
			pku.table_name,
			pku.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_name = tc.constraint_name
			AND rc.constraint_schema = tc.table_schema
		JOIN information_schema.key_column_usage pku
			ON pku.constraint_name = rc.unique_constraint_name
			AND pku.constraint_schema = rc.unique_constraint_schema
			AND pku.ordinal_position = kcu.position_in_unique_constraint
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = `+q.client.EscapeLiteral(q.schema)+`
		ORDER BY tc.constraint_name, kcu.ordinal_position
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

func (q *postgresQueries) listExistenceConstraints(ctx context.Context) ([]existenceRow, error) {
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

func (q *postgresQueries) listUniqueConstraints(ctx context.Context) ([]uniqueRow, error) {
	rows, err := queryRows(q.client, `
		SELECT tc.table_name, tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = `+q.client.EscapeLiteral(q.schema)+`
			AND tc.constraint_type IN ('UNIQUE', 'PRIMARY KEY')
		ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position
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
