package planner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tordrt/graphmigrate/internal/graphdest"
	"github.com/tordrt/graphmigrate/internal/schemainfo"
	"github.com/tordrt/graphmigrate/internal/sqlsrc"
	"github.com/tordrt/graphmigrate/internal/value"
)

// fakeReader serves canned rows for named tables without a live
// SqlClient, driving the planner the same way a *schemainfo.Reflector
// would.
type fakeReader struct {
	rows   map[string][]sqlsrc.Row
	schema string
}

func (f *fakeReader) ReadTable(t *schemainfo.Table, rowFn func(sqlsrc.Row) error) error {
	for _, row := range f.rows[t.Name] {
		if err := rowFn(row); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeReader) CanonicalSchema() string { return f.schema }

// fakeGraphClient records every statement issued and answers
// RETURN COUNT(u) queries with a single row reporting one match, which
// is enough to drive the planner through its success path.
type fakeGraphClient struct {
	statements []string
	pending    []graphdest.Row
}

func (f *fakeGraphClient) Execute(statement string, params *value.Map) error {
	f.statements = append(f.statements, statement)
	if containsReturnCount(statement) {
		f.pending = []graphdest.Row{{value.Int64(1)}}
	} else {
		f.pending = nil
	}
	return nil
}

func (f *fakeGraphClient) FetchOne() (graphdest.Row, error) {
	if len(f.pending) == 0 {
		return nil, graphdest.ErrDone
	}
	row := f.pending[0]
	f.pending = f.pending[1:]
	return row, nil
}

func (f *fakeGraphClient) Close() error { return nil }

var (
	_ tableReader      = (*fakeReader)(nil)
	_ graphdest.Client = (*fakeGraphClient)(nil)
)

func containsReturnCount(stmt string) bool {
	for i := 0; i+len("RETURN COUNT") <= len(stmt); i++ {
		if stmt[i:i+len("RETURN COUNT")] == "RETURN COUNT" {
			return true
		}
	}
	return false
}

func row(vals ...value.Value) sqlsrc.Row { return sqlsrc.Row(vals) }

// buildSchema constructs a users/posts/likes schema where "likes" is a
// classic join table (exactly two FKs, primary key never referenced)
// and "posts" is a node table carrying one FK, per spec §4.F.2.
func buildSchema() *schemainfo.SchemaInfo {
	info := &schemainfo.SchemaInfo{
		Tables: []schemainfo.Table{
			{Schema: "public", Name: "users", Columns: []string{"id", "name"}, PrimaryKey: []int{0}, PrimaryKeyReferenced: true},
			{Schema: "public", Name: "posts", Columns: []string{"id", "title", "user_id"}, PrimaryKey: []int{0}, ForeignKeys: []int{0}, PrimaryKeyReferenced: true},
			{Schema: "public", Name: "likes", Columns: []string{"user_id", "post_id", "created_at"}, ForeignKeys: []int{1, 2}},
		},
		ForeignKeys: []schemainfo.ForeignKey{
			{ChildTable: 1, ParentTable: 0, ChildColumns: []int{2}, ParentColumns: []int{0}},
			{ChildTable: 2, ParentTable: 0, ChildColumns: []int{0}, ParentColumns: []int{0}},
			{ChildTable: 2, ParentTable: 1, ChildColumns: []int{1}, ParentColumns: []int{0}},
		},
		ExistenceConstraints: []schemainfo.ExistenceConstraint{
			{Table: 1, Column: 1},
		},
		UniqueConstraints: []schemainfo.UniqueConstraint{
			{Table: 0, Columns: []int{1}},
		},
	}
	return info
}

func buildRows() map[string][]sqlsrc.Row {
	return map[string][]sqlsrc.Row{
		"users": {
			row(value.Int64(1), value.String("alice")),
			row(value.Int64(2), value.String("bob")),
		},
		"posts": {
			row(value.Int64(10), value.String("hello"), value.Int64(1)),
			row(value.Int64(11), value.String("world"), value.Int64(2)),
		},
		"likes": {
			row(value.Int64(1), value.Int64(10), value.String("t1")),
			row(value.Int64(2), value.Int64(11), value.String("t2")),
			row(value.Null(), value.Int64(10), value.String("t3")),
		},
	}
}

func TestRun_ClassifiesJoinTableAsRelationship(t *testing.T) {
	info := buildSchema()
	reader := &fakeReader{rows: buildRows(), schema: "public"}
	dest := &fakeGraphClient{}

	p := New(reader, info, dest, zap.NewNop())
	result, err := p.Run()
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.NodesCreated["users"])
	assert.Equal(t, int64(2), result.NodesCreated["posts"])
	_, hasLikesNode := result.NodesCreated["likes"]
	assert.False(t, hasLikesNode, "likes is a relationship table and must not get a node label")

	assert.Equal(t, int64(2), result.EdgesCreated["posts_to_users"])
	assert.Equal(t, int64(2), result.EdgesCreated["likes"])
	assert.Equal(t, int64(1), result.RowsSkipped["likes"], "the null user_id row must be skipped, not errored")

	assert.Equal(t, 2, result.ConstraintsCreated)
}

func TestRun_RelationshipEdgeOmitsChildForeignKeyColumnsFromProperties(t *testing.T) {
	info := buildSchema()
	reader := &fakeReader{rows: buildRows(), schema: "public"}
	dest := &fakeGraphClient{}

	p := New(reader, info, dest, zap.NewNop())
	_, err := p.Run()
	require.NoError(t, err)

	var relStatement string
	for _, s := range dest.statements {
		if containsPrefix(s, "MATCH (u:`users`), (v:`posts`)") {
			relStatement = s
			break
		}
	}
	require.NotEmpty(t, relStatement, "expected a likes relationship statement to have been issued")
	assert.Contains(t, relStatement, "`created_at`")
	assert.NotContains(t, relStatement, "`user_id`")
	assert.NotContains(t, relStatement, "`post_id`")
}

func containsPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// TestRun_NoPrimaryKeyFKTableUsesMergeWithFullRowIdentity covers spec
// §4.F.4/§8 scenario S5: a node table with no primary key uses every
// column as its own identity matcher (not just the FK column) and
// emits its FK edge with MERGE rather than CREATE, so the duplicate
// source rows a PK-less table can have don't produce duplicate edges.
func TestRun_NoPrimaryKeyFKTableUsesMergeWithFullRowIdentity(t *testing.T) {
	info := &schemainfo.SchemaInfo{
		Tables: []schemainfo.Table{
			{Schema: "public", Name: "users", Columns: []string{"id", "name"}, PrimaryKey: []int{0}, PrimaryKeyReferenced: true},
			{Schema: "public", Name: "page_views", Columns: []string{"user_id", "viewed_at"}, ForeignKeys: []int{0}},
		},
		ForeignKeys: []schemainfo.ForeignKey{
			{ChildTable: 1, ParentTable: 0, ChildColumns: []int{0}, ParentColumns: []int{0}},
		},
	}
	rows := map[string][]sqlsrc.Row{
		"users": {
			row(value.Int64(1), value.String("alice")),
		},
		"page_views": {
			row(value.Int64(1), value.String("2024-01-01")),
			row(value.Int64(1), value.String("2024-01-01")),
		},
	}
	reader := &fakeReader{rows: rows, schema: "public"}
	dest := &fakeGraphClient{}

	p := New(reader, info, dest, zap.NewNop())
	result, err := p.Run()
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.EdgesCreated["page_views_to_users"])

	var edgeStatement string
	for _, s := range dest.statements {
		if containsPrefix(s, "MATCH (u:`page_views`), (v:`users`)") {
			edgeStatement = s
			break
		}
	}
	require.NotEmpty(t, edgeStatement, "expected a page_views_to_users edge statement")
	assert.Contains(t, edgeStatement, " MERGE (u)-[:`page_views_to_users`]->(v)")
	assert.NotContains(t, edgeStatement, " CREATE (u)-[:")
	assert.Contains(t, edgeStatement, "u.`user_id` =", "no-PK identity matcher must cover every column")
	assert.Contains(t, edgeStatement, "u.`viewed_at` =", "no-PK identity matcher must cover every column")
}

func TestIsRelationshipTable(t *testing.T) {
	tests := []struct {
		name string
		t    schemainfo.Table
		want bool
	}{
		{"two fks not referenced", schemainfo.Table{ForeignKeys: []int{0, 1}}, true},
		{"two fks but referenced", schemainfo.Table{ForeignKeys: []int{0, 1}, PrimaryKeyReferenced: true}, false},
		{"one fk", schemainfo.Table{ForeignKeys: []int{0}}, false},
		{"three fks", schemainfo.Table{ForeignKeys: []int{0, 1, 2}}, false},
		{"no fks", schemainfo.Table{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isRelationshipTable(&tc.t))
		})
	}
}

// TestRun_IsDeterministic confirms the property the emission layer is
// built around: the same schema and the same source row order must
// produce byte-identical statement sequences run to run. cmp.Diff gives
// a readable failure if a future change (e.g. reintroducing the
// property-sorting bug pass3Cleanup once had) breaks that guarantee.
func TestRun_IsDeterministic(t *testing.T) {
	runOnce := func() []string {
		info := buildSchema()
		reader := &fakeReader{rows: buildRows(), schema: "public"}
		dest := &fakeGraphClient{}
		p := New(reader, info, dest, zap.NewNop())
		_, err := p.Run()
		require.NoError(t, err)
		return dest.statements
	}

	first := runOnce()
	second := runOnce()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("statement sequence differs between runs over identical input (-first +second):\n%s", diff)
	}
}

func TestCanonicalName(t *testing.T) {
	defaultSchema := schemainfo.Table{Schema: "public", Name: "orders"}
	other := schemainfo.Table{Schema: "billing", Name: "orders"}

	assert.Equal(t, "orders", canonicalName(&defaultSchema, "public"))
	assert.Equal(t, "billing_orders", canonicalName(&other, "public"))
}
