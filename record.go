package cypherdto

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Map is the field-extraction contract shared by everything the driver
// returns: a row, a node or a relationship.
type Map interface {
	Get(name string) (any, bool)
}

// *neo4j.Record is used directly as a row.
var _ Map = (*neo4j.Record)(nil)

// Props adapts a property map.
type Props map[string]any

// Get returns the named property.
func (p Props) Get(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

// NodeMap exposes the properties of a node.
func NodeMap(n neo4j.Node) Map {
	return Props(n.Props)
}

// RelationshipMap exposes the properties of a relationship.
func RelationshipMap(r neo4j.Relationship) Map {
	return Props(r.Props)
}

// Decode reconstructs an entity (or identifier) value from a returned record.
func (s *Schema) Decode(m Map) (*Entity, error) {
	values := make([]any, len(s.fields))
	for i, f := range s.fields {
		v, err := f.Read(m)
		if err != nil {
			return nil, fmt.Errorf("could not decode %s: %w", s, err)
		}
		values[i] = v
	}
	return &Entity{schema: s, values: values}, nil
}

// DecodeValue decodes a raw value as returned by the driver in a record:
// a node, a relationship, or a plain map.
func (s *Schema) DecodeValue(v any) (*Entity, error) {
	switch val := v.(type) {
	case neo4j.Node:
		if s.IsRelation() {
			return nil, fmt.Errorf("cannot decode a node into relationship %s", s)
		}
		return s.Decode(NodeMap(val))
	case neo4j.Relationship:
		if s.IsNode() {
			return nil, fmt.Errorf("cannot decode a relationship into node %s", s)
		}
		return s.Decode(RelationshipMap(val))
	case map[string]any:
		return s.Decode(Props(val))
	case Map:
		return s.Decode(val)
	}
	return nil, fmt.Errorf("cannot decode %T into %s", v, s)
}

// DecodeRecord decodes the value returned under key in a row.
func (s *Schema) DecodeRecord(record *neo4j.Record, key string) (*Entity, error) {
	v, ok := record.Get(key)
	if !ok {
		return nil, fmt.Errorf("could not find return value '%s' in query result", key)
	}
	return s.DecodeValue(v)
}
