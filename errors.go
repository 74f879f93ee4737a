package cypherdto

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below report errors.Is against these.
var (
	// ErrNotFound is returned by Find operations when no record
	// matching the criteria is found in the database.
	ErrNotFound = errors.New("record not found")

	// ErrNotSingular is returned when a lookup that must be unique returns
	// more than one record.
	ErrNotSingular = errors.New("record not singular")

	// ErrSchema marks every schema-definition error.
	ErrSchema = errors.New("invalid schema")

	// ErrMissingField is returned when a returned record lacks an expected entry.
	ErrMissingField = errors.New("missing field")

	// ErrTypeMismatch is returned when a value is present but cannot be
	// converted to the declared kind.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrBuilder is returned by Builder.Build when a required field was never set.
	ErrBuilder = errors.New("builder incomplete")

	// ErrNoIdentity is returned by relationship operations that target a single
	// relationship when the relationship type declares no identity fields.
	ErrNoIdentity = errors.New("relationship has no identity fields")
)

// SchemaError is raised once, when a Descriptor is compiled. The schema is
// never produced.
type SchemaError struct {
	Entity string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid schema %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("invalid schema %s.%s: %s", e.Entity, e.Field, e.Reason)
}

// Is reports whether the target error matches ErrSchema.
func (e *SchemaError) Is(err error) bool {
	return err == ErrSchema
}

func schemaErr(entity, field, format string, args ...any) *SchemaError {
	return &SchemaError{Entity: entity, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// MissingFieldError reports a record without an entry for a required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("map did not contain %s", e.Field)
}

// Is reports whether the target error matches ErrMissingField.
func (e *MissingFieldError) Is(err error) bool {
	return err == ErrMissingField
}

// TypeMismatchError reports a value that is not coercible to the field's kind.
type TypeMismatchError struct {
	Field string
	Value any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("value for %s has the wrong type or range: %v (%T)", e.Field, e.Value, e.Value)
}

// Is reports whether the target error matches ErrTypeMismatch.
func (e *TypeMismatchError) Is(err error) bool {
	return err == ErrTypeMismatch
}

// BuilderError names the entity and the required field that was never set.
type BuilderError struct {
	Entity string
	Field  string
}

func (e *BuilderError) Error() string {
	return fmt.Sprintf("error building field %s on %s", e.Field, e.Entity)
}

// Is reports whether the target error matches ErrBuilder.
func (e *BuilderError) Is(err error) bool {
	return err == ErrBuilder
}

// IsNotFound returns true if the error is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
