package cypherdto

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"sync"
	"time"
)

// TagName is the struct tag read by the struct front-end.
//
//	type Person struct {
//		SSN   string     `cypher:"ssn,id"`
//		Name  string     `cypher:"name"`
//		Age   *uint8     `cypher:"age"`
//		Email string     `cypher:"-"`
//	}
//
// Untagged and "-" fields are not persisted. An empty name part defaults to
// the snake_case form of the Go field name. Options:
//
//	id        the field is part of the identity
//	optional  the field may be absent even though its Go type is not a pointer
//	unsigned  a *big.Int field is a 128-bit unsigned integer
const TagName = "cypher"

// Named may be implemented by a struct to override its type name.
type Named interface {
	CypherName() string
}

// Labeled may be implemented by a node struct to declare several labels.
type Labeled interface {
	CypherLabels() []string
}

// Stamped can be embedded in a struct to add both timestamp fields.
type Stamped struct {
	CreatedAt *time.Time `cypher:"created_at"`
	UpdatedAt *time.Time `cypher:"updated_at"`
}

var (
	timeType   = reflect.TypeOf(time.Time{})
	bigIntType = reflect.TypeOf((*big.Int)(nil))
)

// canonical Go types of the scalar kinds; a struct field of a named type is
// converted to these.
var kindTypes = map[Kind]reflect.Type{
	KindText:     reflect.TypeOf(""),
	KindBool:     reflect.TypeOf(false),
	KindInt8:     reflect.TypeOf(int8(0)),
	KindInt16:    reflect.TypeOf(int16(0)),
	KindInt32:    reflect.TypeOf(int32(0)),
	KindInt64:    reflect.TypeOf(int64(0)),
	KindInt:      reflect.TypeOf(0),
	KindUint8:    reflect.TypeOf(uint8(0)),
	KindUint16:   reflect.TypeOf(uint16(0)),
	KindUint32:   reflect.TypeOf(uint32(0)),
	KindUint64:   reflect.TypeOf(uint64(0)),
	KindUint:     reflect.TypeOf(uint(0)),
	KindFloat32:  reflect.TypeOf(float32(0)),
	KindFloat64:  reflect.TypeOf(float64(0)),
	KindDateTime: timeType,
	KindInt128:   bigIntType,
	KindUint128:  bigIntType,
}

type structKey struct {
	typ    reflect.Type
	entity EntityType
}

// structSchemas caches compiled schemas per struct type. Compiling involves
// reflection and is done once per type.
var structSchemas sync.Map // map[structKey]*Schema

// NodeOf returns the node schema of the struct type T.
func NodeOf[T any]() (*Schema, error) {
	return SchemaOf(reflect.TypeOf((*T)(nil)).Elem(), NodeEntity)
}

// RelationOf returns the relationship schema of the struct type T.
func RelationOf[T any]() (*Schema, error) {
	return SchemaOf(reflect.TypeOf((*T)(nil)).Elem(), RelationEntity)
}

// MustNodeOf is like NodeOf but panics on error.
func MustNodeOf[T any]() *Schema {
	s, err := NodeOf[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// MustRelationOf is like RelationOf but panics on error.
func MustRelationOf[T any]() *Schema {
	s, err := RelationOf[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// SchemaOf is the non-generic form of NodeOf and RelationOf, usable with
// types only known at runtime.
func SchemaOf(typ reflect.Type, et EntityType) (*Schema, error) {
	if typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	key := structKey{typ: typ, entity: et}
	if cached, ok := structSchemas.Load(key); ok {
		return cached.(*Schema), nil
	}

	d, index, err := DescribeStruct(typ, et)
	if err != nil {
		return nil, err
	}
	s, err := Compile(d)
	if err != nil {
		return nil, err
	}
	s.goType = typ
	s.goIndex = index
	s.identifier = s.newIdentifier()

	actual, _ := structSchemas.LoadOrStore(key, s)
	return actual.(*Schema), nil
}

// DescribeStruct builds a descriptor from the `cypher` tags of a struct type.
// It also returns the field index path of every described field.
func DescribeStruct(typ reflect.Type, et EntityType) (*Descriptor, [][]int, error) {
	if typ == nil {
		return nil, nil, fmt.Errorf("cannot describe a nil type")
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("type %s is not a struct", typ.Name())
	}

	d := &Descriptor{Name: typ.Name(), Type: et}
	zero := reflect.New(typ).Interface()
	if n, ok := zero.(Named); ok {
		d.TypeName = n.CypherName()
	}
	if l, ok := zero.(Labeled); ok {
		d.Labels = l.CypherLabels()
	}

	var index [][]int
	for _, sf := range reflect.VisibleFields(typ) {
		if !sf.IsExported() || sf.Anonymous || throughPointer(typ, sf.Index) {
			continue
		}
		tag, ok := sf.Tag.Lookup(TagName)
		if !ok || tag == "-" {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = SnakeCase(sf.Name)
		}
		var id, optional, unsigned bool
		for _, opt := range strings.Split(opts, ",") {
			switch opt {
			case "":
			case "id":
				id = true
			case "optional":
				optional = true
			case "unsigned":
				unsigned = true
			default:
				return nil, nil, fmt.Errorf("field %s: unknown %s tag option %q", sf.Name, TagName, opt)
			}
		}

		ft := goFieldType(sf.Type, unsigned)
		ft.Optional = ft.Optional || optional
		fd := &FieldDescriptor{Name: sf.Name, Type: ft, ID: id}
		if name != sf.Name {
			fd.Rename = name
		}
		d.Fields = append(d.Fields, fd)
		index = append(index, sf.Index)
	}
	return d, index, nil
}

// throughPointer reports whether a promoted field is reached through an
// embedded pointer, which may be nil.
func throughPointer(typ reflect.Type, index []int) bool {
	for i := 1; i < len(index); i++ {
		if typ.FieldByIndex(index[:i]).Type.Kind() == reflect.Ptr {
			return true
		}
	}
	return false
}

func goFieldType(t reflect.Type, unsigned bool) FieldType {
	if t == bigIntType {
		if unsigned {
			return FieldType{Kind: KindUint128}
		}
		return FieldType{Kind: KindInt128}
	}
	if t.Kind() == reflect.Ptr {
		ft := goFieldType(t.Elem(), unsigned)
		ft.Optional = true
		return ft
	}
	if t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8 {
		elem := goFieldType(t.Elem(), unsigned)
		if elem.Optional || elem.Kind == KindList {
			return FieldType{Kind: KindOther}
		}
		return FieldType{Kind: KindList, Elem: elem.Kind}
	}
	return FieldType{Kind: goKind(t)}
}

func goKind(t reflect.Type) Kind {
	if t == timeType || (t.Kind() == reflect.Struct && t.ConvertibleTo(timeType)) {
		return KindDateTime
	}
	switch t.Kind() {
	case reflect.String:
		return KindText
	case reflect.Bool:
		return KindBool
	case reflect.Int8:
		return KindInt8
	case reflect.Int16:
		return KindInt16
	case reflect.Int32:
		return KindInt32
	case reflect.Int64:
		return KindInt64
	case reflect.Int:
		return KindInt
	case reflect.Uint8:
		return KindUint8
	case reflect.Uint16:
		return KindUint16
	case reflect.Uint32:
		return KindUint32
	case reflect.Uint64:
		return KindUint64
	case reflect.Uint:
		return KindUint
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	}
	return KindOther
}

// FromStruct builds an entity from a struct value (or pointer) of the type s
// was compiled from.
func (s *Schema) FromStruct(v any) (*Entity, error) {
	rv, err := s.structValue(v)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(s.fields))
	for i, f := range s.fields {
		values[i] = toKind(rv.FieldByIndex(s.goIndex[i]), f.Type)
	}
	return s.New(values...)
}

// ToStruct copies the values of e into dst, a pointer to a struct of the type
// e's schema was compiled from. An identifier fills only its identity fields.
func (e *Entity) ToStruct(dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("destination must be a non-nil pointer to a struct, got %T", dst)
	}
	if _, err := e.schema.structValue(dst); err != nil {
		return err
	}
	rv = rv.Elem()
	for i, f := range e.schema.fields {
		target := rv.FieldByIndex(e.schema.goIndex[i])
		if err := fromKind(target, e.values[i]); err != nil {
			return fmt.Errorf("could not set field %s: %w", f.DeclaredName, err)
		}
	}
	return nil
}

func (s *Schema) structValue(v any) (reflect.Value, error) {
	if s.goType == nil {
		return reflect.Value{}, fmt.Errorf("%s was not compiled from a struct", s)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("nil %s", s.goType)
		}
		rv = rv.Elem()
	}
	if rv.Type() != s.goType {
		return reflect.Value{}, fmt.Errorf("%s expects %s, got %s", s, s.goType, rv.Type())
	}
	return rv, nil
}

// toKind converts a struct field to the canonical value of its kind. nil
// pointers become absent values.
func toKind(v reflect.Value, typ FieldType) any {
	if v.Type() == bigIntType {
		if v.IsNil() {
			return nil
		}
		return v.Interface()
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		return toKind(v.Elem(), typ)
	}
	switch typ.Kind {
	case KindOther:
		return v.Interface()
	case KindList:
		if v.IsNil() && typ.Optional {
			return nil
		}
		items := make([]any, v.Len())
		for i := range items {
			items[i] = toKind(v.Index(i), FieldType{Kind: typ.Elem})
		}
		return items
	}
	if ct, ok := kindTypes[typ.Kind]; ok && v.Type() != ct && v.Type().ConvertibleTo(ct) {
		return v.Convert(ct).Interface()
	}
	return v.Interface()
}

// fromKind stores a canonical value into a struct field, allocating pointers
// and converting to named types as needed.
func fromKind(target reflect.Value, v any) error {
	if v == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	if target.Type() == bigIntType {
		b, ok := v.(*big.Int)
		if !ok {
			return fmt.Errorf("cannot assign %T to *big.Int", v)
		}
		target.Set(reflect.ValueOf(new(big.Int).Set(b)))
		return nil
	}
	if target.Kind() == reflect.Ptr {
		elem := reflect.New(target.Type().Elem())
		if err := fromKind(elem.Elem(), v); err != nil {
			return err
		}
		target.Set(elem)
		return nil
	}
	if items, ok := v.([]any); ok && target.Kind() == reflect.Slice {
		out := reflect.MakeSlice(target.Type(), len(items), len(items))
		for i, item := range items {
			if err := fromKind(out.Index(i), item); err != nil {
				return err
			}
		}
		target.Set(out)
		return nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().ConvertibleTo(target.Type()) {
		return fmt.Errorf("cannot assign %T to %s", v, target.Type())
	}
	target.Set(rv.Convert(target.Type()))
	return nil
}
