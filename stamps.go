package cypherdto

import (
	"fmt"
	"strings"
)

// NowExpr is the server-side expression written for an updated stamp in
// ModeUpdate.
const NowExpr = "datetime()"

// Stamp field names recognised by DetectStamps, in priority order per role.
const (
	CreatedAt = "created_at"
	Created   = "created"
	UpdatedAt = "updated_at"
	Updated   = "updated"
)

// QueryMode selects how stamp fields are rendered and bound. Fields without a
// stamp role ignore it.
type QueryMode uint8

const (
	// ModeRead treats stamps as ordinary placeholders.
	ModeRead QueryMode = iota
	// ModeCreate omits both stamps from the pattern and the parameters;
	// creation templates set them to NowExpr in a trailing SET clause.
	ModeCreate
	// ModeUpdate keeps the created stamp as a placeholder and writes
	// NowExpr for the updated stamp.
	ModeUpdate
)

func (m QueryMode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeCreate:
		return "create"
	case ModeUpdate:
		return "update"
	}
	return "unknown"
}

// StampRole is the created/updated designation of a field.
type StampRole uint8

const (
	StampNone StampRole = iota
	StampCreated
	StampUpdated
)

func (r StampRole) String() string {
	switch r {
	case StampCreated:
		return "created"
	case StampUpdated:
		return "updated"
	}
	return "none"
}

// Stamps holds the names of the created and updated fields of a schema.
// Either may be empty.
type Stamps struct {
	Created string
	Updated string
}

// IsZero reports whether the schema has no stamp fields.
func (s Stamps) IsZero() bool {
	return s.Created == "" && s.Updated == ""
}

// Role returns the stamp role of the named field.
func (s Stamps) Role(name string) StampRole {
	switch {
	case name == "":
		return StampNone
	case name == s.Created:
		return StampCreated
	case name == s.Updated:
		return StampUpdated
	}
	return StampNone
}

// DetectStamps picks the stamp fields from a list of field names.
// created_at beats created and updated_at beats updated; the losing bare
// name stays an ordinary field.
func DetectStamps(names []string) Stamps {
	has := make(map[string]bool, len(names))
	for _, n := range names {
		has[n] = true
	}
	var s Stamps
	switch {
	case has[CreatedAt]:
		s.Created = CreatedAt
	case has[Created]:
		s.Created = Created
	}
	switch {
	case has[UpdatedAt]:
		s.Updated = UpdatedAt
	case has[Updated]:
		s.Updated = Updated
	}
	return s
}

// renders reports whether a field with the role appears in a pattern under
// mode, and whether it is written as NowExpr instead of a placeholder.
func (r StampRole) renders(mode QueryMode) (present, now bool) {
	switch r {
	case StampCreated:
		return mode != ModeCreate, false
	case StampUpdated:
		switch mode {
		case ModeRead:
			return true, false
		case ModeUpdate:
			return true, true
		}
		return false, false
	}
	return true, false
}

// binds reports whether a field with the role contributes a parameter under mode.
func (r StampRole) binds(mode QueryMode) bool {
	present, now := r.renders(mode)
	return present && !now
}

// createStamps renders the SET clause writing NowExpr into the stamps of a
// created element bound to alias, e.g. " SET n.created_at = datetime()".
// It is empty when s has no stamps.
func (s *Schema) createStamps(alias string) string {
	var sets []string
	for _, name := range []string{s.stamps.Created, s.stamps.Updated} {
		if name != "" {
			sets = append(sets, fmt.Sprintf("%s.%s = %s", alias, name, NowExpr))
		}
	}
	if len(sets) == 0 {
		return ""
	}
	return " SET " + strings.Join(sets, ", ")
}

// StampStyle selects the stamp fields Descriptor.Timestamps appends.
type StampStyle string

const (
	// StampsFull adds created_at and updated_at.
	StampsFull StampStyle = "full"
	// StampsShort adds created and updated.
	StampsShort     StampStyle = "short"
	StampsCreatedAt StampStyle = CreatedAt
	StampsUpdatedAt StampStyle = UpdatedAt
	StampsCreated   StampStyle = Created
	StampsUpdated   StampStyle = Updated
)

func (s StampStyle) fieldNames() ([]string, bool) {
	switch s {
	case StampsFull, "":
		return []string{CreatedAt, UpdatedAt}, true
	case StampsShort:
		return []string{Created, Updated}, true
	case StampsCreatedAt, StampsUpdatedAt, StampsCreated, StampsUpdated:
		return []string{string(s)}, true
	}
	return nil, false
}
