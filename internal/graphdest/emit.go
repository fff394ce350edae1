package graphdest

import (
	"strconv"
	"strings"

	"github.com/tordrt/graphmigrate/internal/value"
)

// EscapeName backtick-quotes a label, edge type or property name,
// doubling any embedded backtick (spec §4.E.1).
func EscapeName(name string) string {
	var b strings.Builder
	b.WriteByte('`')
	for _, r := range name {
		if r == '`' {
			b.WriteString("``")
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('`')
	return b.String()
}

// paramsBuilder assigns "$paramN" names to values in first-appearance
// order and accumulates the resulting bound-parameter map, mirroring
// original_source/src/memgraph_destination.cpp's ParamsBuilder.
type paramsBuilder struct {
	counter int
	params  *value.Map
}

func newParamsBuilder() *paramsBuilder {
	return &paramsBuilder{params: value.NewMap(4)}
}

func (p *paramsBuilder) create(v value.Value) string {
	name := "param" + strconv.Itoa(p.counter)
	p.counter++
	p.params.Set(name, v)
	return "$" + name
}

func writeProperties(b *strings.Builder, params *paramsBuilder, properties *value.Map) {
	b.WriteByte('{')
	first := true
	properties.Range(func(key string, v value.Value) {
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(EscapeName(key))
		b.WriteString(": ")
		b.WriteString(params.create(v))
	})
	b.WriteByte('}')
}

func writeIDMatcher(b *strings.Builder, params *paramsBuilder, node string, idProperties *value.Map) {
	first := true
	idProperties.Range(func(key string, v value.Value) {
		if !first {
			b.WriteString(" AND ")
		}
		first = false
		b.WriteString(node)
		b.WriteByte('.')
		b.WriteString(EscapeName(key))
		b.WriteString(" = ")
		b.WriteString(params.create(v))
	})
}

// CreateNode emits CREATE (u:Label1:Label2 {props}); (spec §4.E.2).
func CreateNode(client Client, labels []string, properties *value.Map) error {
	params := newParamsBuilder()
	var b strings.Builder
	b.WriteString("CREATE (u")
	for _, label := range labels {
		b.WriteByte(':')
		b.WriteString(EscapeName(label))
	}
	b.WriteByte(' ')
	writeProperties(&b, params, properties)
	b.WriteString(");")
	return drainExpectNone(client, b.String(), params.params)
}

// CreateRelationship emits the MATCH ... WHERE ... CREATE|MERGE (u)-[:Type
// {props}]->(v) RETURN COUNT(u); statement and returns the matched row
// count (spec §4.E.3). useMerge selects MERGE over CREATE for the edge.
func CreateRelationship(client Client, label1 string, id1 *value.Map, label2 string, id2 *value.Map, edgeType string, properties *value.Map, useMerge bool) (int64, error) {
	params := newParamsBuilder()
	var b strings.Builder
	b.WriteString("MATCH (u:")
	b.WriteString(EscapeName(label1))
	b.WriteString("), (v:")
	b.WriteString(EscapeName(label2))
	b.WriteString(") WHERE ")
	writeIDMatcher(&b, params, "u", id1)
	b.WriteString(" AND ")
	writeIDMatcher(&b, params, "v", id2)
	if useMerge {
		b.WriteString(" MERGE ")
	} else {
		b.WriteString(" CREATE ")
	}
	b.WriteString("(u)-[:")
	b.WriteString(EscapeName(edgeType))
	if properties.Len() > 0 {
		b.WriteByte(' ')
		writeProperties(&b, params, properties)
	}
	b.WriteString("]->(v) RETURN COUNT(u);")
	return drainExpectOneInt64(client, b.String(), params.params)
}

// CreateLabelIndex emits CREATE INDEX ON :Label; (spec §4.E.4).
func CreateLabelIndex(client Client, label string) error {
	stmt := "CREATE INDEX ON :" + EscapeName(label) + ";"
	return drainExpectNone(client, stmt, nil)
}

// CreateLabelPropertyIndex emits CREATE INDEX ON :Label(prop); (spec §4.E.4).
func CreateLabelPropertyIndex(client Client, label, property string) error {
	stmt := "CREATE INDEX ON :" + EscapeName(label) + "(" + EscapeName(property) + ");"
	return drainExpectNone(client, stmt, nil)
}

// DropLabelIndex emits DROP INDEX ON :Label; (spec §4.E.4).
func DropLabelIndex(client Client, label string) error {
	stmt := "DROP INDEX ON :" + EscapeName(label) + ";"
	return drainExpectNone(client, stmt, nil)
}

// DropLabelPropertyIndex emits DROP INDEX ON :Label(prop); (spec §4.E.4).
func DropLabelPropertyIndex(client Client, label, property string) error {
	stmt := "DROP INDEX ON :" + EscapeName(label) + "(" + EscapeName(property) + ");"
	return drainExpectNone(client, stmt, nil)
}

// CreateExistenceConstraint emits
// CREATE CONSTRAINT ON (u:Label) ASSERT EXISTS (u.prop); (spec §4.E.5).
func CreateExistenceConstraint(client Client, label, property string) error {
	stmt := "CREATE CONSTRAINT ON (u:" + EscapeName(label) + ") ASSERT EXISTS (u." + EscapeName(property) + ");"
	return drainExpectNone(client, stmt, nil)
}

// CreateUniqueConstraint emits
// CREATE CONSTRAINT ON (u:Label) ASSERT u.p1, u.p2 IS UNIQUE; (spec §4.E.5).
// properties is written in the order given; callers that need a
// canonical order sort before calling.
func CreateUniqueConstraint(client Client, label string, properties []string) error {
	var b strings.Builder
	b.WriteString("CREATE CONSTRAINT ON (u:")
	b.WriteString(EscapeName(label))
	b.WriteString(") ASSERT ")
	for i, prop := range properties {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("u.")
		b.WriteString(EscapeName(prop))
	}
	b.WriteString(" IS UNIQUE;")
	return drainExpectNone(client, b.String(), nil)
}

// RemoveLabelFromNodes emits MATCH (u) REMOVE u:Label; (spec §4.E.6),
// used by the graph-to-graph mover to strip its internal staging
// label once a migration has fully succeeded.
func RemoveLabelFromNodes(client Client, label string) error {
	stmt := "MATCH (u) REMOVE u:" + EscapeName(label) + ";"
	return drainExpectNone(client, stmt, nil)
}

// RemovePropertyFromNodes emits MATCH (u) REMOVE u.prop; (spec §4.E.6).
func RemovePropertyFromNodes(client Client, property string) error {
	stmt := "MATCH (u) REMOVE u." + EscapeName(property) + ";"
	return drainExpectNone(client, stmt, nil)
}
