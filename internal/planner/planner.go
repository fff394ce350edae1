// Package planner implements the migration planner/runner (spec §4.F):
// it turns a reflected SchemaInfo plus a streaming SqlClient into a
// sequence of graph mutations against a GraphClient, in three passes —
// node emission and staging indexes, edge emission, and cleanup plus
// constraint migration.
package planner

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tordrt/graphmigrate/internal/graphdest"
	"github.com/tordrt/graphmigrate/internal/schemainfo"
	"github.com/tordrt/graphmigrate/internal/sqlsrc"
	"github.com/tordrt/graphmigrate/internal/value"
)

// Result summarizes a completed migration for reporting (internal/report).
type Result struct {
	NodesCreated       map[string]int64
	EdgesCreated       map[string]int64
	RowsSkipped        map[string]int64
	ConstraintsCreated int
}

// tableReader is the slice of schemainfo.Reflector the planner needs:
// streaming a table's rows and naming the dialect's default schema.
// Narrowed to an interface so tests can drive the planner off canned
// rows instead of a live SqlClient.
type tableReader interface {
	ReadTable(t *schemainfo.Table, rowFn func(sqlsrc.Row) error) error
	CanonicalSchema() string
}

// Planner runs the three-pass migration of spec §4.F against one
// reflected schema.
type Planner struct {
	reader tableReader
	info   *schemainfo.SchemaInfo
	dest   graphdest.Client
	log    *zap.Logger
}

// New builds a Planner. info must have been produced by reader (a
// *schemainfo.Reflector in production).
func New(reader tableReader, info *schemainfo.SchemaInfo, dest graphdest.Client, log *zap.Logger) *Planner {
	return &Planner{reader: reader, info: info, dest: dest, log: log}
}

// canonicalName implements spec §4.F.1: the table name alone if its
// schema is the dialect's default, else "schema_name".
func canonicalName(t *schemainfo.Table, defaultSchema string) string {
	if t.Schema == defaultSchema {
		return t.Name
	}
	return t.Schema + "_" + t.Name
}

// isRelationshipTable implements the central classification rule of
// spec §4.F.2.
func isRelationshipTable(t *schemainfo.Table) bool {
	return len(t.ForeignKeys) == 2 && !t.PrimaryKeyReferenced
}

// Run executes all three passes in order and returns a summary.
func (p *Planner) Run() (*Result, error) {
	result := &Result{
		NodesCreated: make(map[string]int64),
		EdgesCreated: make(map[string]int64),
		RowsSkipped:  make(map[string]int64),
	}

	if err := p.pass1Nodes(result); err != nil {
		return nil, err
	}
	if err := p.pass2Edges(result); err != nil {
		return nil, err
	}
	if err := p.pass3Cleanup(result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Planner) defaultSchema() string { return p.reader.CanonicalSchema() }

func (p *Planner) name(t *schemainfo.Table) string { return canonicalName(t, p.defaultSchema()) }

// pass1Nodes emits one graph node per row of every node table, then a
// staging index to accelerate pass 2 (spec §4.F.3).
func (p *Planner) pass1Nodes(result *Result) error {
	for i := range p.info.Tables {
		t := &p.info.Tables[i]
		if isRelationshipTable(t) {
			continue
		}
		label := p.name(t)
		p.log.Info("migrating node table", zap.String("table", t.Name), zap.String("label", label))

		var count int64
		err := p.reader.ReadTable(t, func(row sqlsrc.Row) error {
			props := rowToMap(t.Columns, row)
			if err := graphdest.CreateNode(p.dest, []string{label}, props); err != nil {
				return fmt.Errorf("planner: creating node for table %s: %w", t.Name, err)
			}
			count++
			return nil
		})
		if err != nil {
			return err
		}
		result.NodesCreated[label] = count

		if err := p.createStagingIndex(t, label); err != nil {
			return err
		}
	}
	return nil
}

func (p *Planner) createStagingIndex(t *schemainfo.Table, label string) error {
	if len(t.PrimaryKey) > 0 {
		pkCol := t.Columns[t.PrimaryKey[0]]
		return graphdest.CreateLabelPropertyIndex(p.dest, label, pkCol)
	}
	return graphdest.CreateLabelIndex(p.dest, label)
}

func (p *Planner) dropStagingIndex(t *schemainfo.Table, label string) error {
	if len(t.PrimaryKey) > 0 {
		pkCol := t.Columns[t.PrimaryKey[0]]
		return graphdest.DropLabelPropertyIndex(p.dest, label, pkCol)
	}
	return graphdest.DropLabelIndex(p.dest, label)
}

// pass2Edges emits relationships for relationship tables and
// FK-derived "_to_" edges for node tables that carry foreign keys
// (spec §4.F.4).
func (p *Planner) pass2Edges(result *Result) error {
	for i := range p.info.Tables {
		t := &p.info.Tables[i]
		if len(t.ForeignKeys) == 0 {
			continue
		}
		if isRelationshipTable(t) {
			if err := p.emitRelationshipTableEdges(t, result); err != nil {
				return err
			}
			continue
		}
		if err := p.emitNodeTableFKEdges(t, result); err != nil {
			return err
		}
	}
	return nil
}

// projectFK implements FK-to-property projection (spec §4.F.4): maps
// each (parent_column, child_column) pair of fk to
// { parent_table.columns[parent_column]: row[child_column] }. Returns
// ok=false if any projected value is null (not well-defined).
func projectFK(info *schemainfo.SchemaInfo, fk *schemainfo.ForeignKey, childRow sqlsrc.Row) (props *value.Map, ok bool) {
	parent := &info.Tables[fk.ParentTable]
	m := value.NewMap(len(fk.ParentColumns))
	for i, parentCol := range fk.ParentColumns {
		childCol := fk.ChildColumns[i]
		v := childRow[childCol]
		if v.IsNull() {
			return nil, false
		}
		m.Set(parent.Columns[parentCol], v)
	}
	return m, true
}

func (p *Planner) emitRelationshipTableEdges(t *schemainfo.Table, result *Result) error {
	label := p.name(t)
	fk0 := &p.info.ForeignKeys[t.ForeignKeys[0]]
	fk1 := &p.info.ForeignKeys[t.ForeignKeys[1]]
	label1 := p.name(&p.info.Tables[fk0.ParentTable])
	label2 := p.name(&p.info.Tables[fk1.ParentTable])

	childCols := make(map[int]bool)
	for _, c := range fk0.ChildColumns {
		childCols[c] = true
	}
	for _, c := range fk1.ChildColumns {
		childCols[c] = true
	}

	var created, skipped int64
	err := p.reader.ReadTable(t, func(row sqlsrc.Row) error {
		id1, ok1 := projectFK(p.info, fk0, row)
		id2, ok2 := projectFK(p.info, fk1, row)
		if !ok1 || !ok2 {
			skipped++
			return nil
		}
		props := value.NewMap(len(t.Columns))
		for i, col := range t.Columns {
			if childCols[i] {
				continue
			}
			props.Set(col, row[i])
		}
		n, err := graphdest.CreateRelationship(p.dest, label1, id1, label2, id2, label, props, false)
		if err != nil {
			return fmt.Errorf("planner: creating relationship for table %s: %w", t.Name, err)
		}
		if n != 1 {
			return &graphdest.UnexpectedResultError{Reason: fmt.Sprintf("expected exactly one relationship created for table %s, got %d", t.Name, n)}
		}
		created++
		return nil
	})
	if err != nil {
		return err
	}
	result.EdgesCreated[label] = created
	if skipped > 0 {
		result.RowsSkipped[t.Name] = skipped
	}
	return nil
}

func (p *Planner) emitNodeTableFKEdges(t *schemainfo.Table, result *Result) error {
	label1 := p.name(t)

	var id1Cols []int
	if len(t.PrimaryKey) > 0 {
		id1Cols = t.PrimaryKey
	} else {
		id1Cols = make([]int, len(t.Columns))
		for i := range t.Columns {
			id1Cols[i] = i
		}
	}
	useMerge := len(t.PrimaryKey) == 0

	var skipped int64
	err := p.reader.ReadTable(t, func(row sqlsrc.Row) error {
		id1 := value.NewMap(len(id1Cols))
		for _, ci := range id1Cols {
			id1.Set(t.Columns[ci], row[ci])
		}
		for _, fkIdx := range t.ForeignKeys {
			fk := &p.info.ForeignKeys[fkIdx]
			parent := &p.info.Tables[fk.ParentTable]
			id2, ok := projectFK(p.info, fk, row)
			if !ok {
				skipped++
				continue
			}
			edgeType := label1 + "_to_" + p.name(parent)
			n, err := graphdest.CreateRelationship(p.dest, label1, id1, p.name(parent), id2, edgeType, value.NewMap(0), useMerge)
			if err != nil {
				return fmt.Errorf("planner: creating FK edge for table %s: %w", t.Name, err)
			}
			if !useMerge && n != 1 {
				return &graphdest.UnexpectedResultError{Reason: fmt.Sprintf("expected exactly one FK edge created for table %s, got %d", t.Name, n)}
			}
			result.EdgesCreated[edgeType] += n
			if useMerge && n == 0 {
				return &graphdest.UnexpectedResultError{Reason: fmt.Sprintf("expected at least one FK edge matched for table %s", t.Name)}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if skipped > 0 {
		result.RowsSkipped[t.Name] += skipped
	}
	return nil
}

// pass3Cleanup drops staging indexes and migrates existence/unique
// constraints for node tables (spec §4.F.5).
func (p *Planner) pass3Cleanup(result *Result) error {
	for i := range p.info.Tables {
		t := &p.info.Tables[i]
		if isRelationshipTable(t) {
			continue
		}
		if err := p.dropStagingIndex(t, p.name(t)); err != nil {
			return err
		}
	}

	for _, ec := range p.info.ExistenceConstraints {
		t := &p.info.Tables[ec.Table]
		if isRelationshipTable(t) {
			continue
		}
		if err := graphdest.CreateExistenceConstraint(p.dest, p.name(t), t.Columns[ec.Column]); err != nil {
			return err
		}
		result.ConstraintsCreated++
	}

	for _, uc := range p.info.UniqueConstraints {
		t := &p.info.Tables[uc.Table]
		if isRelationshipTable(t) {
			continue
		}
		props := make([]string, len(uc.Columns))
		for i, ci := range uc.Columns {
			props[i] = t.Columns[ci]
		}
		if err := graphdest.CreateUniqueConstraint(p.dest, p.name(t), props); err != nil {
			return err
		}
		result.ConstraintsCreated++
	}

	return nil
}

func rowToMap(columns []string, row sqlsrc.Row) *value.Map {
	m := value.NewMap(len(columns))
	for i, col := range columns {
		m.Set(col, row[i])
	}
	return m
}
