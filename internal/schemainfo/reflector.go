package schemainfo

import (
	"context"
	"errors"

	"github.com/tordrt/graphmigrate/internal/sqlsrc"
)

// tableRef identifies a base table before it has been assigned an index
// in SchemaInfo.Tables.
type tableRef struct {
	Schema string
	Name   string
}

// fkRow is one row of the aggregate foreign-key query, already ordered
// by (constraint name, ordinal position) by the dialect implementation.
type fkRow struct {
	ConstraintName string
	ChildSchema    string
	ChildTable     string
	ChildColumn    string
	ParentSchema   string
	ParentTable    string
	ParentColumn   string
}

// uniqueRow is one row of the aggregate unique-constraint query, ordered
// by table and then constraint name, so that the rows of one (table,
// constraint) pair are adjacent even in dialects that reuse a constraint
// name such as "PRIMARY" across tables.
type uniqueRow struct {
	ConstraintName string
	Schema         string
	Table          string
	Column         string
}

// existenceRow is a single non-nullable column.
type existenceRow struct {
	Schema string
	Table  string
	Column string
}

// dialectQueries is the capability set a concrete dialect (PostgreSQL,
// MySQL) implements; Reflector.GetSchemaInfo assembles SchemaInfo from
// it in the six-step order of spec §4.C, independent of dialect.
type dialectQueries interface {
	listBaseTables(ctx context.Context) ([]tableRef, error)
	listColumns(ctx context.Context, t tableRef) ([]string, error)
	listPrimaryKeyColumns(ctx context.Context, t tableRef) ([]string, error)
	listForeignKeys(ctx context.Context) ([]fkRow, error)
	listExistenceConstraints(ctx context.Context) ([]existenceRow, error)
	listUniqueConstraints(ctx context.Context) ([]uniqueRow, error)
	// canonicalSchema returns the name treated as the dialect's default
	// schema for naming purposes (spec §4.F.1): "public" for PostgreSQL,
	// the connection's database for MySQL.
	canonicalSchema() string
}

// Reflector implements spec §4.C's GetSchemaInfo and ReadTable against
// one dialectQueries implementation.
type Reflector struct {
	client  sqlsrc.Client
	queries dialectQueries
}

// GetSchemaInfo builds SchemaInfo in the order spec'd by §4.C:
// tables, columns, primary keys, foreign keys, existence constraints,
// unique constraints.
func (r *Reflector) GetSchemaInfo(ctx context.Context) (*SchemaInfo, error) {
	refs, err := r.queries.listBaseTables(ctx)
	if err != nil {
		return nil, err
	}

	info := &SchemaInfo{Tables: make([]Table, len(refs))}
	for i, ref := range refs {
		info.Tables[i] = Table{Schema: ref.Schema, Name: ref.Name}
	}

	for i := range info.Tables {
		cols, err := r.queries.listColumns(ctx, tableRef{info.Tables[i].Schema, info.Tables[i].Name})
		if err != nil {
			return nil, err
		}
		info.Tables[i].Columns = cols
	}

	for i := range info.Tables {
		pkCols, err := r.queries.listPrimaryKeyColumns(ctx, tableRef{info.Tables[i].Schema, info.Tables[i].Name})
		if err != nil {
			return nil, err
		}
		pk := make([]int, len(pkCols))
		for j, col := range pkCols {
			idx := info.Tables[i].ColumnIndex(col)
			if idx < 0 {
				return nil, newSchemaError("primary key column %q not found on table %s.%s",
					col, info.Tables[i].Schema, info.Tables[i].Name)
			}
			pk[j] = idx
		}
		info.Tables[i].PrimaryKey = pk
	}

	if err := r.assembleForeignKeys(ctx, info); err != nil {
		return nil, err
	}

	existRows, err := r.queries.listExistenceConstraints(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range existRows {
		ti := info.TableIndex(row.Schema, row.Table)
		if ti < 0 {
			return nil, newSchemaError("existence constraint on unknown table %s.%s", row.Schema, row.Table)
		}
		ci := info.Tables[ti].ColumnIndex(row.Column)
		if ci < 0 {
			return nil, newSchemaError("existence constraint on unknown column %s.%s.%s", row.Schema, row.Table, row.Column)
		}
		info.ExistenceConstraints = append(info.ExistenceConstraints, ExistenceConstraint{Table: ti, Column: ci})
	}

	if err := r.assembleUniqueConstraints(ctx, info); err != nil {
		return nil, err
	}

	return info, nil
}

func (r *Reflector) assembleForeignKeys(ctx context.Context, info *SchemaInfo) error {
	rows, err := r.queries.listForeignKeys(ctx)
	if err != nil {
		return err
	}

	groups := groupContiguous(rows, func(row fkRow) string { return row.ConstraintName })
	for _, group := range groups {
		first := group[0]
		childIdx := info.TableIndex(first.ChildSchema, first.ChildTable)
		if childIdx < 0 {
			return newSchemaError("foreign key %q references unknown child table %s.%s", first.ConstraintName, first.ChildSchema, first.ChildTable)
		}
		parentIdx := info.TableIndex(first.ParentSchema, first.ParentTable)
		if parentIdx < 0 {
			return newSchemaError("foreign key %q references unknown parent table %s.%s", first.ConstraintName, first.ParentSchema, first.ParentTable)
		}

		fk := ForeignKey{ChildTable: childIdx, ParentTable: parentIdx}
		for _, row := range group {
			ci := info.Tables[childIdx].ColumnIndex(row.ChildColumn)
			if ci < 0 {
				return newSchemaError("foreign key %q references unknown child column %s", first.ConstraintName, row.ChildColumn)
			}
			pi := info.Tables[parentIdx].ColumnIndex(row.ParentColumn)
			if pi < 0 {
				return newSchemaError("foreign key %q references unknown parent column %s", first.ConstraintName, row.ParentColumn)
			}
			fk.ChildColumns = append(fk.ChildColumns, ci)
			fk.ParentColumns = append(fk.ParentColumns, pi)
		}

		fkIdx := len(info.ForeignKeys)
		info.ForeignKeys = append(info.ForeignKeys, fk)
		info.Tables[childIdx].ForeignKeys = append(info.Tables[childIdx].ForeignKeys, fkIdx)
		info.Tables[parentIdx].PrimaryKeyReferenced = true
	}
	return nil
}

func (r *Reflector) assembleUniqueConstraints(ctx context.Context, info *SchemaInfo) error {
	rows, err := r.queries.listUniqueConstraints(ctx)
	if err != nil {
		return err
	}

	// Grouping key includes the table, not just the constraint name:
	// dialects such as MySQL reuse "PRIMARY" across every table.
	groups := groupContiguous(rows, func(row uniqueRow) string { return row.Table + "\x00" + row.ConstraintName })
	for _, group := range groups {
		first := group[0]
		ti := info.TableIndex(first.Schema, first.Table)
		if ti < 0 {
			return newSchemaError("unique constraint %q on unknown table %s.%s", first.ConstraintName, first.Schema, first.Table)
		}
		uc := UniqueConstraint{Table: ti}
		for _, row := range group {
			ci := info.Tables[ti].ColumnIndex(row.Column)
			if ci < 0 {
				return newSchemaError("unique constraint %q references unknown column %s", first.ConstraintName, row.Column)
			}
			uc.Columns = append(uc.Columns, ci)
		}
		info.UniqueConstraints = append(info.UniqueConstraints, uc)
	}
	return nil
}

// groupContiguous partitions rows into runs that share the same key,
// assuming rows are already ordered so that members of a group are
// adjacent (spec §4.C step 4/6: "group contiguous rows").
func groupContiguous[T any](rows []T, key func(T) string) [][]T {
	var groups [][]T
	var cur []T
	var curKey string
	for i, row := range rows {
		k := key(row)
		if i == 0 || k != curKey {
			if len(cur) > 0 {
				groups = append(groups, cur)
			}
			cur = nil
			curKey = k
		}
		cur = append(cur, row)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// ReadTable streams rows of table t in canonical column order.
func (r *Reflector) ReadTable(t *Table, rowFn func(sqlsrc.Row) error) error {
	return sqlsrc.ReadTable(r.client, t.Schema, t.Name, t.Columns, rowFn)
}

// queryRows runs stmt to completion against client and collects every
// row, for the small bookkeeping queries a Reflector issues against
// information_schema. Reflection never holds a cursor open across
// calls into dialectQueries, so this never competes with ReadTable.
func queryRows(client sqlsrc.Client, stmt string, args ...any) ([]sqlsrc.Row, error) {
	if err := client.Execute(stmt, args...); err != nil {
		return nil, err
	}
	var rows []sqlsrc.Row
	for {
		row, err := client.FetchOne()
		if errors.Is(err, sqlsrc.ErrDone) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// CanonicalSchema returns the name the dialect treats as its default
// schema (spec §4.F.1): "public" for PostgreSQL, the connection's
// database for MySQL. The planner uses it to decide whether a table's
// node/relationship label needs a "schema_" prefix.
func (r *Reflector) CanonicalSchema() string { return r.queries.canonicalSchema() }
