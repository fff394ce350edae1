//go:build integration
// +build integration

package integration

import (
	"testing"

	"github.com/tordrt/graphmigrate/internal/schemainfo"
)

// findTable locates a table by (schema, name) in a reflected SchemaInfo.
func findTable(info *schemainfo.SchemaInfo, schemaName, tableName string) *schemainfo.Table {
	idx := info.TableIndex(schemaName, tableName)
	if idx < 0 {
		return nil
	}
	return &info.Tables[idx]
}

// verifyTablesExist checks that every expected table was reflected.
func verifyTablesExist(t *testing.T, info *schemainfo.SchemaInfo, schemaName string, expectedTables []string) {
	t.Helper()

	tableMap := make(map[string]bool, len(info.Tables))
	for _, table := range info.Tables {
		tableMap[table.Name] = true
	}

	for _, tableName := range expectedTables {
		if !tableMap[tableName] {
			t.Errorf("expected table %s not found in reflected schema", tableName)
		}
	}
}

// verifyColumns checks that the expected column names are present, in
// any order, on table.
func verifyColumns(t *testing.T, table *schemainfo.Table, expectedColumns []string) {
	t.Helper()

	colSet := make(map[string]bool, len(table.Columns))
	for _, col := range table.Columns {
		colSet[col] = true
	}

	for _, col := range expectedColumns {
		if !colSet[col] {
			t.Errorf("expected column %s not found on table %s", col, table.Name)
		}
	}
}

// verifyPrimaryKey checks that table's primary key is exactly the
// expected column names, in order.
func verifyPrimaryKey(t *testing.T, table *schemainfo.Table, expectedPK []string) {
	t.Helper()

	if len(table.PrimaryKey) != len(expectedPK) {
		t.Errorf("table %s: expected primary key %v, got %d columns", table.Name, expectedPK, len(table.PrimaryKey))
		return
	}
	for i, colIdx := range table.PrimaryKey {
		if table.Columns[colIdx] != expectedPK[i] {
			t.Errorf("table %s: expected primary key %v, got column %s at position %d", table.Name, expectedPK, table.Columns[colIdx], i)
		}
	}
}

// verifyForeignKey checks that a foreign key from (childTable,
// childColumn) to parentTable exists in info.
func verifyForeignKey(t *testing.T, info *schemainfo.SchemaInfo, schemaName, childTable, childColumn, parentTable string) {
	t.Helper()

	idx := info.TableIndex(schemaName, childTable)
	if idx < 0 {
		t.Fatalf("table %s not found", childTable)
	}
	table := &info.Tables[idx]
	for _, fkIdx := range table.ForeignKeys {
		fk := info.ForeignKeys[fkIdx]
		parent := &info.Tables[fk.ParentTable]
		if parent.Name != parentTable {
			continue
		}
		for _, ci := range fk.ChildColumns {
			if table.Columns[ci] == childColumn {
				return
			}
		}
	}
	t.Errorf("expected foreign key from %s.%s to %s not found", childTable, childColumn, parentTable)
}

// verifyUniqueConstraint checks that some unique constraint on table
// covers exactly columnName.
func verifyUniqueConstraint(t *testing.T, info *schemainfo.SchemaInfo, schemaName, tableName, columnName string) {
	t.Helper()

	idx := info.TableIndex(schemaName, tableName)
	if idx < 0 {
		t.Fatalf("table %s not found", tableName)
	}
	table := &info.Tables[idx]
	for _, uc := range info.UniqueConstraints {
		if uc.Table != idx || len(uc.Columns) != 1 {
			continue
		}
		if table.Columns[uc.Columns[0]] == columnName {
			return
		}
	}
	t.Errorf("expected unique constraint on %s.%s not found", tableName, columnName)
}
