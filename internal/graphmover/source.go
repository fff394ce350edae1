// Package graphmover implements the graph-to-graph mover (spec §4.G):
// migrating a Memgraph-compatible source directly into a
// Memgraph-compatible destination, tagging every copied vertex with an
// internal label and id property so relationships can be rebuilt by
// lookup instead of by address.
package graphmover

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/tordrt/graphmigrate/internal/value"
)

// LabelProperty pairs a label with a single property name, used for
// both label-property indexes and existence constraints.
type LabelProperty struct {
	Label    string
	Property string
}

// UniqueConstraintInfo pairs a label with the set of properties a
// uniqueness constraint covers.
type UniqueConstraintInfo struct {
	Label      string
	Properties []string
}

// IndexInfo is what SHOW INDEX INFO reports, split by index shape
// (spec §4.G.4).
type IndexInfo struct {
	Label         []string
	LabelProperty []LabelProperty
}

// ConstraintInfo is what SHOW CONSTRAINT INFO reports.
type ConstraintInfo struct {
	Existence []LabelProperty
	Unique    []UniqueConstraintInfo
}

// Source reads a Memgraph-compatible source graph for the mover.
// Grounded on original_source/src/source/memgraph.cpp's
// ReadNodes/ReadRelationships/ReadIndices/ReadConstraints.
type Source interface {
	ReadNodes(fn func(labels []string, id int64, props *value.Map) error) error
	ReadRelationships(fn func(fromID, toID int64, relType string, props *value.Map) error) error
	ReadIndices() (IndexInfo, error)
	ReadConstraints() (ConstraintInfo, error)
	Close() error
}

// BoltSource implements Source over a neo4j-go-driver session,
// reading raw dbtype.Node/Relationship/record values directly instead
// of going through graphdest.Client's property-flattening conversion,
// since the mover needs each vertex's labels and legacy integer id.
//
// Grounded on _examples/hemanta212-scaf/databases/neo4j/neo4j.go for
// driver/session construction.
type BoltSource struct {
	ctx     context.Context
	driver  neo4j.DriverWithContext
	session neo4j.SessionWithContext
}

// NewBoltSource connects to a Bolt/Cypher source and verifies connectivity.
func NewBoltSource(ctx context.Context, uri, username, password, database string) (*BoltSource, error) {
	auth := neo4j.NoAuth()
	if username != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}
	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("graphmover: failed to create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("graphmover: failed to connect: %w", err)
	}

	sessionCfg := neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead}
	if database != "" {
		sessionCfg.DatabaseName = database
	}

	return &BoltSource{ctx: ctx, driver: driver, session: driver.NewSession(ctx, sessionCfg)}, nil
}

func propsToMap(props map[string]any) *value.Map {
	m := value.NewMap(len(props))
	for k, v := range props {
		m.Set(k, fromDriverAny(v))
	}
	return m
}

func fromDriverAny(v any) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Null()
	case bool:
		return value.Bool(t)
	case int64:
		return value.Int64(t)
	case float64:
		return value.Float64(t)
	case string:
		return value.String(t)
	case []any:
		elems := make([]value.Value, len(t))
		for i, e := range t {
			elems[i] = fromDriverAny(e)
		}
		return value.List(elems)
	default:
		return value.String(fmt.Sprintf("%v", t))
	}
}

// ReadNodes streams "MATCH (u) RETURN u;" (spec §4.G.1).
func (s *BoltSource) ReadNodes(fn func(labels []string, id int64, props *value.Map) error) error {
	result, err := s.session.Run(s.ctx, "MATCH (u) RETURN u;", nil)
	if err != nil {
		return fmt.Errorf("graphmover: can't read vertices: %w", err)
	}
	for result.Next(s.ctx) {
		record := result.Record()
		if len(record.Values) != 1 {
			return fmt.Errorf("graphmover: unexpected result shape while reading vertices")
		}
		node, ok := record.Values[0].(dbtype.Node)
		if !ok {
			return fmt.Errorf("graphmover: unexpected result while reading vertices")
		}
		if err := fn(node.Labels, node.Id, propsToMap(node.Props)); err != nil {
			return err
		}
	}
	return result.Err()
}

// ReadRelationships streams "MATCH (u)-[e]->(v) RETURN e;" (spec §4.G.3).
func (s *BoltSource) ReadRelationships(fn func(fromID, toID int64, relType string, props *value.Map) error) error {
	result, err := s.session.Run(s.ctx, "MATCH (u)-[e]->(v) RETURN e;", nil)
	if err != nil {
		return fmt.Errorf("graphmover: can't read edges: %w", err)
	}
	for result.Next(s.ctx) {
		record := result.Record()
		if len(record.Values) != 1 {
			return fmt.Errorf("graphmover: unexpected result shape while reading edges")
		}
		rel, ok := record.Values[0].(dbtype.Relationship)
		if !ok {
			return fmt.Errorf("graphmover: unexpected result while reading edges")
		}
		if err := fn(rel.StartId, rel.EndId, rel.Type, propsToMap(rel.Props)); err != nil {
			return err
		}
	}
	return result.Err()
}

// ReadIndices runs "SHOW INDEX INFO;" and splits rows by the
// index_type discriminator in column 0, "label" or "label+property"
// (spec §4.G.4, ground-truthed against memgraph.cpp's ReadIndices).
func (s *BoltSource) ReadIndices() (IndexInfo, error) {
	var info IndexInfo
	result, err := s.session.Run(s.ctx, "SHOW INDEX INFO;", nil)
	if err != nil {
		return info, fmt.Errorf("graphmover: can't read indices: %w", err)
	}
	for result.Next(s.ctx) {
		row := result.Record().Values
		if len(row) != 3 {
			return info, fmt.Errorf("graphmover: unexpected result while reading indices")
		}
		indexType, ok := row[0].(string)
		if !ok {
			return info, fmt.Errorf("graphmover: unexpected result while reading indices")
		}
		label, ok := row[1].(string)
		if !ok {
			return info, fmt.Errorf("graphmover: unexpected result while reading indices")
		}
		switch indexType {
		case "label":
			info.Label = append(info.Label, label)
		case "label+property":
			property, ok := row[2].(string)
			if !ok {
				return info, fmt.Errorf("graphmover: unexpected result while reading indices")
			}
			info.LabelProperty = append(info.LabelProperty, LabelProperty{Label: label, Property: property})
		default:
			return info, fmt.Errorf("graphmover: unsupported index type %q", indexType)
		}
	}
	return info, result.Err()
}

// ReadConstraints runs "SHOW CONSTRAINT INFO;" and splits rows by the
// constraint_type discriminator in column 0, "existence" or "unique"
// (spec §4.G.4).
func (s *BoltSource) ReadConstraints() (ConstraintInfo, error) {
	var info ConstraintInfo
	result, err := s.session.Run(s.ctx, "SHOW CONSTRAINT INFO;", nil)
	if err != nil {
		return info, fmt.Errorf("graphmover: can't read constraints: %w", err)
	}
	for result.Next(s.ctx) {
		row := result.Record().Values
		if len(row) != 3 {
			return info, fmt.Errorf("graphmover: unexpected result while reading constraints")
		}
		constraintType, ok := row[0].(string)
		if !ok {
			return info, fmt.Errorf("graphmover: unexpected result while reading constraints")
		}
		label, ok := row[1].(string)
		if !ok {
			return info, fmt.Errorf("graphmover: unexpected result while reading constraints")
		}
		switch constraintType {
		case "existence":
			property, ok := row[2].(string)
			if !ok {
				return info, fmt.Errorf("graphmover: unexpected result while reading constraints")
			}
			info.Existence = append(info.Existence, LabelProperty{Label: label, Property: property})
		case "unique":
			list, ok := row[2].([]any)
			if !ok {
				return info, fmt.Errorf("graphmover: unexpected result while reading constraints")
			}
			properties := make([]string, len(list))
			for i, v := range list {
				s, ok := v.(string)
				if !ok {
					return info, fmt.Errorf("graphmover: unexpected result while reading constraints")
				}
				properties[i] = s
			}
			info.Unique = append(info.Unique, UniqueConstraintInfo{Label: label, Properties: properties})
		default:
			return info, fmt.Errorf("graphmover: unsupported constraint type %q", constraintType)
		}
	}
	return info, result.Err()
}

// Close releases the session and driver.
func (s *BoltSource) Close() error {
	if s.session != nil {
		if err := s.session.Close(s.ctx); err != nil {
			return fmt.Errorf("graphmover: failed to close session: %w", err)
		}
	}
	if s.driver != nil {
		if err := s.driver.Close(s.ctx); err != nil {
			return fmt.Errorf("graphmover: failed to close driver: %w", err)
		}
	}
	return nil
}
