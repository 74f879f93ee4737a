package cypherdto

import (
	"reflect"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Schema is a compiled entity: its type name, labels and ordered fields.
// A Schema is immutable once compiled and safe for concurrent use.
//
// Every entity Schema has a paired identifier Schema holding only its
// identity fields. Identifiers are terminal: they have no identifier of
// their own.
type Schema struct {
	name       string
	entity     EntityType
	typeName   string
	labels     []string
	fields     []*Field
	index      map[string]int
	stamps     Stamps
	identifier *Schema
	isID       bool

	// set when compiled from a Go struct, see tags.go
	goType  reflect.Type
	goIndex [][]int
}

var upper = cases.Upper(language.Und)

// ScreamingSnake converts a declared name such as "WorkedAt" to "WORKED_AT".
func ScreamingSnake(name string) string {
	return upper.String(SnakeCase(name))
}

// SnakeCase converts CamelCase to snake_case. Acronyms stay together:
// "HTTPLink" becomes "http_link" and "ID" becomes "id".
func SnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '-' || unicode.IsSpace(r):
			r = '_'
		case unicode.IsUpper(r):
			if i > 0 && runes[i-1] != '_' {
				prev := runes[i-1]
				if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
					(i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
					b.WriteRune('_')
				}
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MustCompile is like Compile but panics on error.
func MustCompile(d *Descriptor) *Schema {
	s, err := Compile(d)
	if err != nil {
		panic(err)
	}
	return s
}

// Compile turns a descriptor into an entity Schema and its identifier.
// All schema-definition errors are reported here and are *SchemaError.
//
// Identity is taken from the fields marked ID, else from a field named "id",
// else, for a node, from every required field. Optional fields never join an
// inferred identity, since identity fields must always be present; a node
// whose fields are all optional has no identity and its read, update and
// delete templates fail with ErrNoIdentity. Relationships fall back to no
// identity.
func Compile(d *Descriptor) (*Schema, error) {
	if d == nil {
		return nil, schemaErr("", "", "nil descriptor")
	}
	if d.err != nil {
		return nil, schemaErr(d.Name, "", "%v", d.err)
	}

	typeName, labels, err := resolveNames(d)
	if err != nil {
		return nil, err
	}

	s := &Schema{
		name:     d.Name,
		entity:   d.Type,
		typeName: typeName,
		labels:   labels,
		index:    make(map[string]int, len(d.Fields)),
	}

	explicitID := false
	for _, fd := range d.Fields {
		if fd == nil || fd.Skip {
			continue
		}
		f := newCompiledField(fd)
		if f.Name == "" {
			return nil, schemaErr(typeName, fd.Name, "field has no name")
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, schemaErr(typeName, f.Name, "duplicate field name")
		}
		if f.Type.Kind > KindList || (f.Type.Kind == KindList && f.Type.Elem >= KindList) {
			return nil, schemaErr(typeName, f.Name, "unsupported type %s", f.Type)
		}
		if fd.ID {
			if f.Type.Optional {
				return nil, schemaErr(typeName, f.Name, "identity fields cannot be optional")
			}
			f.Identity = true
			explicitID = true
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}

	if err := s.assignStamps(); err != nil {
		return nil, err
	}
	if !explicitID {
		if err := s.inferIdentity(); err != nil {
			return nil, err
		}
	}
	s.identifier = s.newIdentifier()
	return s, nil
}

func resolveNames(d *Descriptor) (string, []string, error) {
	var labels []string
	switch {
	case len(d.Labels) > 0 && d.TypeName != "":
		return "", nil, schemaErr(d.Name, "", "cannot specify both a name and labels")
	case len(d.Labels) > 0:
		labels = append(labels, d.Labels...)
	case d.TypeName != "":
		labels = []string{d.TypeName}
	case d.Type == RelationEntity:
		labels = []string{ScreamingSnake(d.Name)}
	default:
		labels = []string{d.Name}
	}
	for _, l := range labels {
		if strings.TrimSpace(l) == "" {
			return "", nil, schemaErr(d.Name, "", "empty type name or label")
		}
	}
	if d.Type == RelationEntity && len(labels) > 1 {
		return "", nil, schemaErr(d.Name, "", "a relationship has exactly one type, got %d labels", len(labels))
	}
	return labels[0], labels, nil
}

func (s *Schema) assignStamps() error {
	s.stamps = DetectStamps(s.FieldNames())
	var created, updated int
	for _, f := range s.fields {
		f.Stamp = s.stamps.Role(f.Name)
		switch f.Stamp {
		case StampNone:
			continue
		case StampCreated:
			created++
		case StampUpdated:
			updated++
		}
		if !f.Type.IsDateTime() {
			return schemaErr(s.typeName, f.Name, "timestamp fields must be datetime or optional<datetime>, got %s", f.Type)
		}
	}
	if created > 1 || updated > 1 {
		return schemaErr(s.typeName, "", "more than one created or updated timestamp field")
	}
	return nil
}

// inferIdentity runs when no field is explicitly marked: a field named "id"
// wins, otherwise nodes use every required field and relationships none.
func (s *Schema) inferIdentity() error {
	if i, ok := s.index["id"]; ok {
		f := s.fields[i]
		if f.Type.Optional {
			return schemaErr(s.typeName, f.Name, "identity fields cannot be optional")
		}
		f.Identity = true
		return nil
	}
	if s.entity == RelationEntity {
		return nil
	}
	for _, f := range s.fields {
		if !f.Type.Optional {
			f.Identity = true
		}
	}
	return nil
}

func (s *Schema) newIdentifier() *Schema {
	id := &Schema{
		name:     s.name,
		entity:   s.entity,
		typeName: s.typeName,
		labels:   s.labels,
		index:    make(map[string]int),
		isID:     true,
		goType:   s.goType,
	}
	for i, f := range s.fields {
		if !f.Identity {
			continue
		}
		c := f.clone()
		c.Identity = false
		id.index[c.Name] = len(id.fields)
		id.fields = append(id.fields, c)
		switch c.Stamp {
		case StampCreated:
			id.stamps.Created = c.Name
		case StampUpdated:
			id.stamps.Updated = c.Name
		}
		if s.goIndex != nil {
			id.goIndex = append(id.goIndex, s.goIndex[i])
		}
	}
	return id
}

// Name returns the declared record name.
func (s *Schema) Name() string { return s.name }

// TypeName returns the primary label of a node or the type of a relationship.
func (s *Schema) TypeName() string { return s.typeName }

// Labels returns a copy of the labels.
func (s *Schema) Labels() []string { return append([]string(nil), s.labels...) }

// LabelString returns the labels joined for a pattern, e.g. "Person:Employee".
func (s *Schema) LabelString() string { return strings.Join(s.labels, ":") }

// Fields returns the fields in declaration order. The slice must not be modified.
func (s *Schema) Fields() []*Field { return s.fields }

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Field looks up a field by its property name.
func (s *Schema) Field(name string) (*Field, bool) {
	i, ok := s.lookup(name)
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// lookup accepts the property name or, failing that, the declared name.
func (s *Schema) lookup(name string) (int, bool) {
	if i, ok := s.index[name]; ok {
		return i, true
	}
	for i, f := range s.fields {
		if f.DeclaredName == name {
			return i, true
		}
	}
	return 0, false
}

// FieldNames returns the property names in order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Stamps returns the created/updated designation.
func (s *Schema) Stamps() Stamps { return s.stamps }

// Identifier returns the paired identifier schema, or nil for an identifier.
func (s *Schema) Identifier() *Schema { return s.identifier }

// IsIdentifier reports whether s is an identifier schema.
func (s *Schema) IsIdentifier() bool { return s.isID }

// IsNode reports whether s describes a node.
func (s *Schema) IsNode() bool { return s.entity == NodeEntity }

// IsRelation reports whether s describes a relationship.
func (s *Schema) IsRelation() bool { return s.entity == RelationEntity }

// HasIdentity reports whether instances can be selected individually.
func (s *Schema) HasIdentity() bool {
	return len(s.identitySchema().fields) > 0
}

// IdentityFields returns the property names of the identity fields.
func (s *Schema) IdentityFields() []string {
	return s.identitySchema().FieldNames()
}

func (s *Schema) identitySchema() *Schema {
	if s.isID {
		return s
	}
	return s.identifier
}

func (s *Schema) String() string {
	if s.isID {
		return s.typeName + "Id"
	}
	return s.typeName
}
