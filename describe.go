package cypherdto

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// EntityType tells whether a descriptor describes a node or a relationship.
type EntityType uint8

const (
	NodeEntity EntityType = iota
	RelationEntity
)

func (t EntityType) String() string {
	if t == RelationEntity {
		return "relation"
	}
	return "node"
}

// FieldDescriptor is the declared form of one field: what a struct field plus
// its annotations would carry.
type FieldDescriptor struct {
	Name   string
	Type   FieldType
	Rename string
	ID     bool
	Skip   bool
}

// FieldBuilder is the fluent builder for a FieldDescriptor.
//
//	cypherdto.String("ssn").ID()
//	cypherdto.Uint8("age").Optional()
//	cypherdto.String("name").Rename("name2")
type FieldBuilder struct {
	desc *FieldDescriptor
}

func newField(name string, k Kind) *FieldBuilder {
	return &FieldBuilder{desc: &FieldDescriptor{Name: name, Type: FieldType{Kind: k}}}
}

func String(name string) *FieldBuilder  { return newField(name, KindText) }
func Bool(name string) *FieldBuilder    { return newField(name, KindBool) }
func Int(name string) *FieldBuilder     { return newField(name, KindInt) }
func Int8(name string) *FieldBuilder    { return newField(name, KindInt8) }
func Int16(name string) *FieldBuilder   { return newField(name, KindInt16) }
func Int32(name string) *FieldBuilder   { return newField(name, KindInt32) }
func Int64(name string) *FieldBuilder   { return newField(name, KindInt64) }
func Int128(name string) *FieldBuilder  { return newField(name, KindInt128) }
func Uint(name string) *FieldBuilder    { return newField(name, KindUint) }
func Uint8(name string) *FieldBuilder   { return newField(name, KindUint8) }
func Uint16(name string) *FieldBuilder  { return newField(name, KindUint16) }
func Uint32(name string) *FieldBuilder  { return newField(name, KindUint32) }
func Uint64(name string) *FieldBuilder  { return newField(name, KindUint64) }
func Uint128(name string) *FieldBuilder { return newField(name, KindUint128) }
func Float32(name string) *FieldBuilder { return newField(name, KindFloat32) }
func Float64(name string) *FieldBuilder { return newField(name, KindFloat64) }
func Time(name string) *FieldBuilder    { return newField(name, KindDateTime) }
func Other(name string) *FieldBuilder   { return newField(name, KindOther) }

// List returns a builder for a list field whose elements are of kind elem.
func List(name string, elem Kind) *FieldBuilder {
	b := newField(name, KindList)
	b.desc.Type.Elem = elem
	return b
}

// Typed returns a builder for a field of an arbitrary FieldType.
func Typed(name string, typ FieldType) *FieldBuilder {
	return &FieldBuilder{desc: &FieldDescriptor{Name: name, Type: typ}}
}

// Optional marks the field as possibly absent.
func (b *FieldBuilder) Optional() *FieldBuilder {
	b.desc.Type.Optional = true
	return b
}

// ID marks the field as part of the entity's identity.
func (b *FieldBuilder) ID() *FieldBuilder {
	b.desc.ID = true
	return b
}

// Rename sets the property name used in queries.
func (b *FieldBuilder) Rename(name string) *FieldBuilder {
	b.desc.Rename = name
	return b
}

// Skip excludes the field from the compiled schema.
func (b *FieldBuilder) Skip() *FieldBuilder {
	b.desc.Skip = true
	return b
}

// Descriptor returns the built descriptor.
func (b *FieldBuilder) Descriptor() *FieldDescriptor {
	return b.desc
}

// Descriptor describes a record shape before compilation.
type Descriptor struct {
	// Name is the declared record name; default type names derive from it.
	Name string
	Type EntityType
	// TypeName and Labels are the explicit overrides. They are mutually exclusive.
	TypeName string
	Labels   []string
	Fields   []*FieldDescriptor

	err error
}

// Node starts a node descriptor.
func Node(name string, fields ...*FieldBuilder) *Descriptor {
	return (&Descriptor{Name: name, Type: NodeEntity}).Add(fields...)
}

// Relation starts a relationship descriptor.
func Relation(name string, fields ...*FieldBuilder) *Descriptor {
	return (&Descriptor{Name: name, Type: RelationEntity}).Add(fields...)
}

// Add appends fields in order.
func (d *Descriptor) Add(fields ...*FieldBuilder) *Descriptor {
	for _, f := range fields {
		d.Fields = append(d.Fields, f.Descriptor())
	}
	return d
}

// Named overrides the type name.
func (d *Descriptor) Named(name string) *Descriptor {
	d.TypeName = name
	return d
}

// Labeled overrides the labels; the first label becomes the type name.
func (d *Descriptor) Labeled(labels ...string) *Descriptor {
	d.Labels = append([]string(nil), labels...)
	return d
}

// Timestamps appends optional DateTime stamp fields in the given style.
func (d *Descriptor) Timestamps(style StampStyle) *Descriptor {
	names, ok := style.fieldNames()
	if !ok {
		d.err = fmt.Errorf("invalid timestamps style %q: allowed full, short, created, updated, created_at, updated_at", style)
		return d
	}
	for _, n := range names {
		d.Add(Time(n).Optional())
	}
	return d
}

type descriptorFile struct {
	Entities []struct {
		Name       string   `yaml:"name"`
		Type       string   `yaml:"type"`
		TypeName   string   `yaml:"type_name"`
		Labels     []string `yaml:"labels"`
		Timestamps string   `yaml:"timestamps"`
		Fields     []struct {
			Name     string `yaml:"name"`
			Kind     string `yaml:"kind"`
			Elem     string `yaml:"elem"`
			Optional bool   `yaml:"optional"`
			Rename   string `yaml:"rename"`
			ID       bool   `yaml:"id"`
			Skip     bool   `yaml:"skip"`
		} `yaml:"fields"`
	} `yaml:"entities"`
}

// LoadDescriptors reads entity descriptors from a YAML document:
//
//	entities:
//	  - name: Person
//	    type: node
//	    timestamps: full
//	    fields:
//	      - {name: ssn, kind: text, id: true}
//	      - {name: colors, kind: list, elem: text}
func LoadDescriptors(r io.Reader) ([]*Descriptor, error) {
	var file descriptorFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode descriptors: %w", err)
	}

	descs := make([]*Descriptor, 0, len(file.Entities))
	for _, e := range file.Entities {
		d := &Descriptor{Name: e.Name, TypeName: e.TypeName, Labels: e.Labels}
		switch e.Type {
		case "", "node":
			d.Type = NodeEntity
		case "relation", "relationship":
			d.Type = RelationEntity
		default:
			return nil, fmt.Errorf("entity %s: unknown type %q", e.Name, e.Type)
		}
		for _, f := range e.Fields {
			kind, err := ParseKind(f.Kind)
			if err != nil {
				return nil, fmt.Errorf("entity %s, field %s: %w", e.Name, f.Name, err)
			}
			typ := FieldType{Kind: kind, Optional: f.Optional}
			if kind == KindList {
				if typ.Elem, err = ParseKind(f.Elem); err != nil {
					return nil, fmt.Errorf("entity %s, field %s: %w", e.Name, f.Name, err)
				}
			}
			d.Fields = append(d.Fields, &FieldDescriptor{
				Name:   f.Name,
				Type:   typ,
				Rename: f.Rename,
				ID:     f.ID,
				Skip:   f.Skip,
			})
		}
		if e.Timestamps != "" {
			d.Timestamps(StampStyle(e.Timestamps))
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// LoadDescriptorFile reads descriptors from a YAML file.
func LoadDescriptorFile(path string) ([]*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open descriptor file: %w", err)
	}
	defer f.Close()
	return LoadDescriptors(f)
}
