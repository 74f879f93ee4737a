package cypherdto

import "fmt"

// Entity is one value of a Schema: a record whose values are held in field
// order. Entities are validated against their schema when constructed.
type Entity struct {
	schema *Schema
	values []any
}

// Param is one parameter binding of a statement.
type Param struct {
	Name  string
	Value any
}

// New builds an entity from positional values in field order.
func (s *Schema) New(values ...any) (*Entity, error) {
	if len(values) != len(s.fields) {
		return nil, fmt.Errorf("%s expects %d values, got %d", s, len(s.fields), len(values))
	}
	for i, f := range s.fields {
		if err := f.Check(values[i]); err != nil {
			return nil, err
		}
	}
	return &Entity{schema: s, values: append([]any(nil), values...)}, nil
}

// MustNew is like New but panics on error.
func (s *Schema) MustNew(values ...any) *Entity {
	e, err := s.New(values...)
	if err != nil {
		panic(err)
	}
	return e
}

// FromMap builds an entity from values keyed by property (or declared) name.
// Optional fields may be left out.
func (s *Schema) FromMap(values map[string]any) (*Entity, error) {
	out := make([]any, len(s.fields))
	for key, v := range values {
		i, ok := s.lookup(key)
		if !ok {
			return nil, fmt.Errorf("%s has no field %s", s, key)
		}
		out[i] = v
	}
	for i, f := range s.fields {
		if out[i] == nil && !f.Type.Optional {
			return nil, &MissingFieldError{Field: f.Name}
		}
		if err := f.Check(out[i]); err != nil {
			return nil, err
		}
	}
	return &Entity{schema: s, values: out}, nil
}

// Schema returns the schema of the entity.
func (e *Entity) Schema() *Schema { return e.schema }

// Get returns the value of the named field. Optional fields that are absent
// return (nil, true).
func (e *Entity) Get(name string) (any, bool) {
	i, ok := e.schema.lookup(name)
	if !ok {
		return nil, false
	}
	return e.values[i], true
}

// Values returns a copy of the values in field order.
func (e *Entity) Values() []any {
	return append([]any(nil), e.values...)
}

// Map returns the values keyed by property name.
func (e *Entity) Map() map[string]any {
	m := make(map[string]any, len(e.values))
	for i, f := range e.schema.fields {
		m[f.Name] = e.values[i]
	}
	return m
}

// Identifier projects the entity onto its identifier schema. An identifier
// returns itself.
func (e *Entity) Identifier() *Entity {
	if e.schema.isID {
		return e
	}
	id := e.schema.identifier
	values := make([]any, 0, len(id.fields))
	for i, f := range e.schema.fields {
		if f.Identity {
			values = append(values, e.values[i])
		}
	}
	return &Entity{schema: id, values: values}
}

// Params binds the entity's values for a statement. Only the placeholders
// that QueryFields(prefix, mode) renders are bound, in field order.
func (e *Entity) Params(prefix string, mode QueryMode) ([]Param, error) {
	params := make([]Param, 0, len(e.values))
	for i, f := range e.schema.fields {
		if !f.Stamp.binds(mode) {
			continue
		}
		v, err := f.Bind(e.values[i])
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Name: FormatParam(f.Name, prefix), Value: v})
	}
	return params, nil
}

// AddParams binds the entity into an existing parameter map, the form the
// driver takes.
func (e *Entity) AddParams(params map[string]any, prefix string, mode QueryMode) error {
	bound, err := e.Params(prefix, mode)
	if err != nil {
		return err
	}
	for _, p := range bound {
		params[p.Name] = p.Value
	}
	return nil
}
