// Package schemainfo implements the schema reflector (spec §4.C): it
// turns a SqlClient's information-schema view into the read-only
// SchemaInfo graph the migration planner consumes.
package schemainfo

import "fmt"

// SchemaError reports a reflector invariant violation: a foreign key or
// constraint referencing a column or table that could not be resolved.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string { return "schemainfo: " + e.Reason }

func newSchemaError(format string, args ...any) *SchemaError {
	return &SchemaError{Reason: fmt.Sprintf(format, args...)}
}

// Table is identified by (Schema, Name). Columns is the canonical
// column order used everywhere a row is materialized.
type Table struct {
	Schema string
	Name   string

	Columns []string

	// PrimaryKey lists indexes into Columns, in key order.
	PrimaryKey []int

	// ForeignKeys lists indexes into SchemaInfo.ForeignKeys that
	// originate at this table (its outgoing FKs), in declaration order.
	ForeignKeys []int

	// PrimaryKeyReferenced is true iff some ForeignKey has
	// ParentTable == this table's index.
	PrimaryKeyReferenced bool
}

// ColumnIndex returns the index of name in t.Columns, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ForeignKey is a directed reference from a child table to a parent
// table. ChildColumns and ParentColumns are equal-length parallel
// lists: element i pairs a child column with the parent column it
// references.
type ForeignKey struct {
	ChildTable  int // index into SchemaInfo.Tables
	ParentTable int

	ChildColumns  []int // indexes into the child table's Columns
	ParentColumns []int // indexes into the parent table's Columns
}

// UniqueConstraint is (table, columns). Primary keys are reported here
// too (invariant 4 of spec §3).
type UniqueConstraint struct {
	Table   int
	Columns []int
}

// ExistenceConstraint is (table, column): a non-nullable column.
type ExistenceConstraint struct {
	Table  int
	Column int
}

// SchemaInfo is the reflected picture of the source relational schema.
// It is built once by a Reflector and is read-only thereafter; indexes
// within it are assigned during construction and never reassigned.
type SchemaInfo struct {
	Tables               []Table
	ForeignKeys          []ForeignKey
	UniqueConstraints    []UniqueConstraint
	ExistenceConstraints []ExistenceConstraint
}

// TableIndex returns the index of (schemaName, name) in s.Tables, or -1.
func (s *SchemaInfo) TableIndex(schemaName, name string) int {
	for i, t := range s.Tables {
		if t.Schema == schemaName && t.Name == name {
			return i
		}
	}
	return -1
}
