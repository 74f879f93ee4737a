package cypherdto

// Field is one compiled field of a Schema.
type Field struct {
	// Name is the property name used in patterns and records.
	Name string
	// DeclaredName is the name the field was declared with, before any rename.
	DeclaredName string
	Type         FieldType
	Identity     bool
	Stamp        StampRole

	conv converter
}

func newCompiledField(fd *FieldDescriptor) *Field {
	name := fd.Name
	if fd.Rename != "" {
		name = fd.Rename
	}
	return &Field{
		Name:         name,
		DeclaredName: fd.Name,
		Type:         fd.Type,
		conv:         converterFor(fd.Type.Kind, fd.Type.Elem),
	}
}

// Render returns the "name: value" fragment of the field, or "" when the
// field is omitted under mode. Only the placeholder carries the prefix.
func (f *Field) Render(prefix string, mode QueryMode) string {
	present, now := f.Stamp.renders(mode)
	switch {
	case !present:
		return ""
	case now:
		return f.Name + ": " + NowExpr
	}
	return f.Name + ": $" + FormatParam(f.Name, prefix)
}

// Check validates that v is a value of the field's type. nil is only valid
// for optional fields.
func (f *Field) Check(v any) error {
	if v == nil {
		if f.Type.Optional {
			return nil
		}
		return &TypeMismatchError{Field: f.Name, Value: v}
	}
	if !f.conv.check(v) {
		return &TypeMismatchError{Field: f.Name, Value: v}
	}
	return nil
}

// Bind casts v into the parameter value sent to the store.
func (f *Field) Bind(v any) (any, error) {
	if v == nil && f.Type.Optional {
		return nil, nil
	}
	b, ok := f.conv.bind(v)
	if !ok {
		return nil, &TypeMismatchError{Field: f.Name, Value: v}
	}
	return b, nil
}

// Read reconstructs the field's value from a returned record.
// Optional fields resolve to nil when the entry is missing or of an
// incompatible type; a present integer that does not fit is still an error.
func (f *Field) Read(m Map) (any, error) {
	raw, ok := m.Get(f.Name)
	if !ok || raw == nil {
		if f.Type.Optional {
			return nil, nil
		}
		return nil, &MissingFieldError{Field: f.Name}
	}
	v, status := f.conv.read(raw)
	switch status {
	case readOK:
		return v, nil
	case readWrongType:
		if f.Type.Optional {
			return nil, nil
		}
	}
	return nil, &TypeMismatchError{Field: f.Name, Value: raw}
}

func (f *Field) clone() *Field {
	c := *f
	return &c
}
