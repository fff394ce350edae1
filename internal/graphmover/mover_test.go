package graphmover

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tordrt/graphmigrate/internal/graphdest"
	"github.com/tordrt/graphmigrate/internal/value"
)

type fakeSource struct {
	nodes         []fakeNode
	relationships []fakeRel
	indices       IndexInfo
	constraints   ConstraintInfo
}

type fakeNode struct {
	labels []string
	id     int64
	props  *value.Map
}

type fakeRel struct {
	fromID, toID int64
	relType      string
	props        *value.Map
}

func (s *fakeSource) ReadNodes(fn func(labels []string, id int64, props *value.Map) error) error {
	for _, n := range s.nodes {
		if err := fn(n.labels, n.id, n.props); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeSource) ReadRelationships(fn func(fromID, toID int64, relType string, props *value.Map) error) error {
	for _, r := range s.relationships {
		if err := fn(r.fromID, r.toID, r.relType, r.props); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeSource) ReadIndices() (IndexInfo, error) { return s.indices, nil }

func (s *fakeSource) ReadConstraints() (ConstraintInfo, error) { return s.constraints, nil }

func (s *fakeSource) Close() error { return nil }

type fakeDest struct {
	statements []string
	pending    []graphdest.Row
}

func (f *fakeDest) Execute(statement string, params *value.Map) error {
	f.statements = append(f.statements, statement)
	if hasReturnCount(statement) {
		f.pending = []graphdest.Row{{value.Int64(1)}}
	} else {
		f.pending = nil
	}
	return nil
}

func (f *fakeDest) FetchOne() (graphdest.Row, error) {
	if len(f.pending) == 0 {
		return nil, graphdest.ErrDone
	}
	row := f.pending[0]
	f.pending = f.pending[1:]
	return row, nil
}

func (f *fakeDest) Close() error { return nil }

func hasReturnCount(stmt string) bool {
	for i := 0; i+len("RETURN COUNT") <= len(stmt); i++ {
		if stmt[i:i+len("RETURN COUNT")] == "RETURN COUNT" {
			return true
		}
	}
	return false
}

var (
	_ Source           = (*fakeSource)(nil)
	_ graphdest.Client = (*fakeDest)(nil)
)

func propsOf(pairs ...any) *value.Map {
	m := value.NewMap(len(pairs) / 2)
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1].(value.Value))
	}
	return m
}

func TestRun_TagsVerticesAndRebuildsEdgesByInternalID(t *testing.T) {
	source := &fakeSource{
		nodes: []fakeNode{
			{labels: []string{"Person"}, id: 1, props: propsOf("name", value.String("alice"))},
			{labels: []string{"Person"}, id: 2, props: propsOf("name", value.String("bob"))},
		},
		relationships: []fakeRel{
			{fromID: 1, toID: 2, relType: "KNOWS", props: value.NewMap(0)},
		},
		indices: IndexInfo{
			Label:         []string{"Person"},
			LabelProperty: []LabelProperty{{Label: "Person", Property: "name"}},
		},
		constraints: ConstraintInfo{
			Existence: []LabelProperty{{Label: "Person", Property: "name"}},
			Unique:    []UniqueConstraintInfo{{Label: "Person", Properties: []string{"name"}}},
		},
	}
	dest := &fakeDest{}

	m := New(source, dest, zap.NewNop())
	result, err := m.Run()
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.NodesCreated)
	assert.Equal(t, int64(1), result.EdgesCreated)
	assert.Equal(t, 2, result.IndexesMigrated)
	assert.Equal(t, 2, result.ConstraintsCreated)

	var createdNode, droppedIndex, removedLabel, removedProp bool
	for _, s := range dest.statements {
		switch {
		case contains(s, "CREATE (u:`__mg_vertex__`:`Person`"):
			createdNode = true
		case contains(s, "DROP INDEX ON :`__mg_vertex__`(`__mg_id__`)"):
			droppedIndex = true
		case contains(s, "REMOVE u:`__mg_vertex__`"):
			removedLabel = true
		case contains(s, "REMOVE u.`__mg_id__`"):
			removedProp = true
		}
	}
	assert.True(t, createdNode, "expected a vertex create statement tagging __mg_vertex__")
	assert.True(t, droppedIndex, "expected the staging index to be dropped during cleanup")
	assert.True(t, removedLabel, "expected cleanup to strip the internal label")
	assert.True(t, removedProp, "expected cleanup to strip the internal id property")
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
