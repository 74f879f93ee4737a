package cypherdto

import "fmt"

// Builder accumulates field values for a schema and validates them late, in
// Build. Every slot starts pending, required fields included.
//
// Set never modifies its receiver, so a partially filled Builder can be used
// as a template for several values:
//
//	base := people.Builder().Set("name", "Alice")
//	a, err := base.Set("age", uint8(30)).Build()
//	b, err := base.Set("age", uint8(31)).Build()
type Builder struct {
	schema *Schema
	values []any
	set    []bool
	err    error
}

// Builder returns an empty accumulator for s.
func (s *Schema) Builder() *Builder {
	return &Builder{
		schema: s,
		values: make([]any, len(s.fields)),
		set:    make([]bool, len(s.fields)),
	}
}

// Builder returns an accumulator pre-filled with every value of e.
func (e *Entity) Builder() *Builder {
	b := e.schema.Builder()
	copy(b.values, e.values)
	for i := range b.set {
		b.set[i] = true
	}
	return b
}

func (b *Builder) clone() *Builder {
	return &Builder{
		schema: b.schema,
		values: append([]any(nil), b.values...),
		set:    append([]bool(nil), b.set...),
		err:    b.err,
	}
}

// Set returns a new accumulator with the named field set to v. The last write
// to a field wins. Unknown names and mistyped values are reported by Build.
func (b *Builder) Set(name string, v any) *Builder {
	next := b.clone()
	if next.err != nil {
		return next
	}
	i, ok := b.schema.lookup(name)
	if !ok {
		next.err = fmt.Errorf("%s has no field %s", b.schema, name)
		return next
	}
	if err := b.schema.fields[i].Check(v); err != nil {
		next.err = err
		return next
	}
	next.values[i] = v
	next.set[i] = true
	return next
}

// Unset returns a new accumulator with the named field pending again.
func (b *Builder) Unset(name string) *Builder {
	next := b.clone()
	if i, ok := b.schema.lookup(name); ok {
		next.values[i] = nil
		next.set[i] = false
	}
	return next
}

// IsSet reports whether the named field has been given a value.
func (b *Builder) IsSet(name string) bool {
	i, ok := b.schema.lookup(name)
	return ok && b.set[i]
}

// Build returns the entity, or a *BuilderError naming the first required
// field that was never set.
func (b *Builder) Build() (*Entity, error) {
	if b.err != nil {
		return nil, b.err
	}
	for i, f := range b.schema.fields {
		if !b.set[i] && !f.Type.Optional {
			return nil, &BuilderError{Entity: b.schema.String(), Field: f.Name}
		}
	}
	return &Entity{schema: b.schema, values: append([]any(nil), b.values...)}, nil
}
