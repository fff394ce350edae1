//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/tordrt/graphmigrate/internal/schemainfo"
	"github.com/tordrt/graphmigrate/internal/sqlsrc"
)

func TestMySQLReflection(t *testing.T) {
	ctx := context.Background()

	connString := os.Getenv("MYSQL_TEST_URL")
	if connString == "" {
		connString = "root:testpassword@tcp(localhost:3306)/testdb"
	}

	client, err := sqlsrc.NewMySQLClient(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to MySQL: %v", err)
	}
	defer client.Close()

	reflector := schemainfo.NewMySQLReflector(client, "testdb")
	info, err := reflector.GetSchemaInfo(ctx)
	if err != nil {
		t.Fatalf("failed to reflect schema: %v", err)
	}

	expectedTables := []string{"users", "products", "orders", "order_items"}
	verifyTablesExist(t, info, "testdb", expectedTables)

	table := findTable(info, "testdb", "users")
	if table == nil {
		t.Fatal("users table not found")
	}
	verifyPrimaryKey(t, table, []string{"id"})
	verifyColumns(t, table, []string{"id", "username", "email", "status", "created_at"})

	verifyForeignKey(t, info, "testdb", "orders", "user_id", "users")
	verifyForeignKey(t, info, "testdb", "order_items", "order_id", "orders")
}

func TestMySQLSharedPrimaryConstraintName(t *testing.T) {
	ctx := context.Background()

	connString := os.Getenv("MYSQL_TEST_URL")
	if connString == "" {
		connString = "root:testpassword@tcp(localhost:3306)/testdb"
	}

	client, err := sqlsrc.NewMySQLClient(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to MySQL: %v", err)
	}
	defer client.Close()

	reflector := schemainfo.NewMySQLReflector(client, "testdb")
	info, err := reflector.GetSchemaInfo(ctx)
	if err != nil {
		t.Fatalf("failed to reflect schema: %v", err)
	}

	// MySQL names every primary key constraint "PRIMARY"; the grouping
	// key for unique constraints must include the table, or every
	// table's primary key would merge into one bogus UniqueConstraint.
	usersIdx := info.TableIndex("testdb", "users")
	ordersIdx := info.TableIndex("testdb", "orders")
	if usersIdx < 0 || ordersIdx < 0 {
		t.Fatal("users or orders table not found")
	}

	var usersPK, ordersPK *schemainfo.UniqueConstraint
	for i := range info.UniqueConstraints {
		uc := &info.UniqueConstraints[i]
		if uc.Table == usersIdx && len(uc.Columns) == 1 {
			usersPK = uc
		}
		if uc.Table == ordersIdx && len(uc.Columns) == 1 {
			ordersPK = uc
		}
	}
	if usersPK == nil || ordersPK == nil {
		t.Fatal("expected a distinct primary-key unique constraint per table")
	}
}
