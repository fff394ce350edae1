package graphmover

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tordrt/graphmigrate/internal/graphdest"
	"github.com/tordrt/graphmigrate/internal/value"
)

const (
	internalNodeLabel  = "__mg_vertex__"
	internalPropertyID = "__mg_id__"
)

// Result summarizes a completed graph-to-graph migration for reporting.
type Result struct {
	NodesCreated       int64
	EdgesCreated       int64
	IndexesMigrated    int
	ConstraintsCreated int
}

// Mover implements the graph-to-graph migration of spec §4.G.
type Mover struct {
	source Source
	dest   graphdest.Client
	log    *zap.Logger
}

// New builds a Mover.
func New(source Source, dest graphdest.Client, log *zap.Logger) *Mover {
	return &Mover{source: source, dest: dest, log: log}
}

// Run executes all five steps of spec §4.G in order. Cleanup (step 5)
// only runs if every earlier step succeeded, leaving the internal
// __mg_vertex__/__mg_id__ traces in place on failure so a restart can
// resume against them (spec §5, "scoped completion handler").
func (m *Mover) Run() (*Result, error) {
	result := &Result{}

	if err := m.migrateNodes(result); err != nil {
		return nil, err
	}
	if err := graphdest.CreateLabelPropertyIndex(m.dest, internalNodeLabel, internalPropertyID); err != nil {
		return nil, fmt.Errorf("graphmover: creating staging index: %w", err)
	}
	if err := m.migrateRelationships(result); err != nil {
		return nil, err
	}
	if err := m.migrateIndicesAndConstraints(result); err != nil {
		return nil, err
	}
	if err := m.cleanup(); err != nil {
		return nil, err
	}

	return result, nil
}

// migrateNodes implements spec §4.G step 1: every source vertex is
// recreated with its original labels plus __mg_vertex__, and its
// original properties plus __mg_id__ = the source node's integer id.
func (m *Mover) migrateNodes(result *Result) error {
	m.log.Info("migrating vertices")
	return m.source.ReadNodes(func(labels []string, id int64, props *value.Map) error {
		outLabels := append([]string{internalNodeLabel}, labels...)
		outProps := value.NewMap(props.Len() + 1)
		outProps.Set(internalPropertyID, value.Int64(id))
		props.Range(func(key string, v value.Value) { outProps.Set(key, v) })

		if err := graphdest.CreateNode(m.dest, outLabels, outProps); err != nil {
			return fmt.Errorf("graphmover: creating vertex %d: %w", id, err)
		}
		result.NodesCreated++
		return nil
	})
}

// migrateRelationships implements spec §4.G step 3: each source edge
// is recreated by matching both endpoints on __mg_vertex__/__mg_id__.
func (m *Mover) migrateRelationships(result *Result) error {
	m.log.Info("migrating edges")
	return m.source.ReadRelationships(func(fromID, toID int64, relType string, props *value.Map) error {
		id1 := value.NewMap(1)
		id1.Set(internalPropertyID, value.Int64(fromID))
		id2 := value.NewMap(1)
		id2.Set(internalPropertyID, value.Int64(toID))

		n, err := graphdest.CreateRelationship(m.dest, internalNodeLabel, id1, internalNodeLabel, id2, relType, props, false)
		if err != nil {
			return fmt.Errorf("graphmover: creating edge %d->%d: %w", fromID, toID, err)
		}
		if n != 1 {
			return &graphdest.UnexpectedResultError{Reason: fmt.Sprintf("expected exactly one edge created for %d->%d, got %d", fromID, toID, n)}
		}
		result.EdgesCreated++
		return nil
	})
}

// migrateIndicesAndConstraints implements spec §4.G step 4: indexes
// and constraints are read from the source and re-issued verbatim on
// the destination.
func (m *Mover) migrateIndicesAndConstraints(result *Result) error {
	indices, err := m.source.ReadIndices()
	if err != nil {
		return err
	}
	for _, label := range indices.Label {
		if err := graphdest.CreateLabelIndex(m.dest, label); err != nil {
			return err
		}
		result.IndexesMigrated++
	}
	for _, lp := range indices.LabelProperty {
		if err := graphdest.CreateLabelPropertyIndex(m.dest, lp.Label, lp.Property); err != nil {
			return err
		}
		result.IndexesMigrated++
	}

	constraints, err := m.source.ReadConstraints()
	if err != nil {
		return err
	}
	for _, lp := range constraints.Existence {
		if err := graphdest.CreateExistenceConstraint(m.dest, lp.Label, lp.Property); err != nil {
			return err
		}
		result.ConstraintsCreated++
	}
	for _, uc := range constraints.Unique {
		if err := graphdest.CreateUniqueConstraint(m.dest, uc.Label, uc.Properties); err != nil {
			return err
		}
		result.ConstraintsCreated++
	}

	return nil
}

// cleanup implements spec §4.G step 5: drop the staging index, then
// erase the internal label and id property from every node.
func (m *Mover) cleanup() error {
	if err := graphdest.DropLabelPropertyIndex(m.dest, internalNodeLabel, internalPropertyID); err != nil {
		return err
	}
	if err := graphdest.RemoveLabelFromNodes(m.dest, internalNodeLabel); err != nil {
		return err
	}
	if err := graphdest.RemovePropertyFromNodes(m.dest, internalPropertyID); err != nil {
		return err
	}
	return nil
}

