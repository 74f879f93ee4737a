package cypherdto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectStamps(t *testing.T) {
	tests := []struct {
		names []string
		want  Stamps
	}{
		{[]string{"name"}, Stamps{}},
		{[]string{"created", "updated"}, Stamps{Created: "created", Updated: "updated"}},
		{[]string{"created_at", "updated_at"}, Stamps{Created: "created_at", Updated: "updated_at"}},
		{[]string{"created", "created_at", "updated"}, Stamps{Created: "created_at", Updated: "updated"}},
		{[]string{"updated", "updated_at"}, Stamps{Updated: "updated_at"}},
	}
	for _, tt := range tests {
		got := DetectStamps(tt.names)
		assert.Equal(t, tt.want, got, "%v", tt.names)
	}
	assert.True(t, Stamps{}.IsZero())
	assert.Equal(t, StampNone, Stamps{}.Role(""))
}

func TestStampRendering(t *testing.T) {
	s, err := Compile(Node("Doc",
		String("id"),
		Time("created_at").Optional(),
		Time("updated_at").Optional(),
	))
	require.NoError(t, err)

	tests := []struct {
		mode QueryMode
		want string
	}{
		{ModeRead, "id: $id, created_at: $created_at, updated_at: $updated_at"},
		{ModeCreate, "id: $id"},
		{ModeUpdate, "id: $id, created_at: $created_at, updated_at: datetime()"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, s.QueryFields("", tt.mode))

			e := s.MustNew("a", nil, nil)
			params, err := e.Params("", tt.mode)
			require.NoError(t, err)

			// Every rendered placeholder has exactly one binding.
			var names []string
			for _, p := range params {
				names = append(names, p.Name)
				assert.Contains(t, tt.want, "$"+p.Name)
			}
			assert.Len(t, names, countPlaceholders(tt.want))
		})
	}
}

func countPlaceholders(s string) int {
	n := 0
	for _, r := range s {
		if r == '$' {
			n++
		}
	}
	return n
}

func TestStampDemotedBareName(t *testing.T) {
	s, err := Compile(Node("Doc",
		String("id"),
		String("created"),
		Time("created_at"),
	))
	require.NoError(t, err)

	assert.Equal(t, Stamps{Created: "created_at"}, s.Stamps())
	f, ok := s.Field("created")
	require.True(t, ok)
	assert.Equal(t, StampNone, f.Stamp)
	assert.Equal(t, "Doc { id: $id, created: $created }", s.QueryObject("", ModeCreate))
}

func TestStampStyles(t *testing.T) {
	tests := []struct {
		style StampStyle
		want  []string
	}{
		{StampsFull, []string{"name", "created_at", "updated_at"}},
		{StampsShort, []string{"name", "created", "updated"}},
		{StampsCreatedAt, []string{"name", "created_at"}},
		{StampsUpdated, []string{"name", "updated"}},
	}
	for _, tt := range tests {
		s, err := Compile(Node("Doc", String("name").ID()).Timestamps(tt.style))
		require.NoError(t, err)
		assert.Equal(t, tt.want, s.FieldNames())
		for _, f := range s.Fields()[1:] {
			assert.Equal(t, FieldType{Kind: KindDateTime, Optional: true}, f.Type)
			assert.NotEqual(t, StampNone, f.Stamp)
		}
	}

	_, err := Compile(Node("Doc", String("name")).Timestamps("sometimes"))
	assert.ErrorIs(t, err, ErrSchema)
}

func TestStampTypeMustBeDateTime(t *testing.T) {
	_, err := Compile(Node("Doc", String("id"), String("updated_at")))
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "updated_at", schemaErr.Field)
}

func TestStampModeIdempotence(t *testing.T) {
	schemas := []*Schema{
		MustCompile(Node("Person", String("ssn").ID(), String("name"), Uint8("age").Optional())),
		MustCompile(Relation("Knows", Int64("id"), Uint16("since"))),
		MustCompile(Node("Doc", String("id"), String("creator"), Int64("updates"))),
	}
	for _, s := range schemas {
		t.Run(s.Name(), func(t *testing.T) {
			require.True(t, s.Stamps().IsZero())
			e := s.Builder()
			for _, f := range s.Fields() {
				switch f.Type.Kind {
				case KindText:
					e = e.Set(f.Name, "x")
				case KindInt64:
					e = e.Set(f.Name, int64(1))
				case KindUint16:
					e = e.Set(f.Name, uint16(1))
				}
			}
			entity, err := e.Build()
			require.NoError(t, err)

			readFields := s.QueryFields("p", ModeRead)
			readObject := s.QueryObject("p", ModeRead)
			readParams, err := entity.Params("p", ModeRead)
			require.NoError(t, err)

			for _, mode := range []QueryMode{ModeCreate, ModeUpdate} {
				assert.Equal(t, readFields, s.QueryFields("p", mode), mode.String())
				assert.Equal(t, readObject, s.QueryObject("p", mode), mode.String())
				params, err := entity.Params("p", mode)
				require.NoError(t, err)
				assert.Equal(t, readParams, params, mode.String())
			}
		})
	}
}

func TestStampRenderingShortNames(t *testing.T) {
	s := MustCompile(Node("Doc",
		String("id"),
		Time("created").Optional(),
		Time("updated").Optional(),
	))

	tests := []struct {
		mode QueryMode
		want string
	}{
		{ModeRead, "id: $id, created: $created, updated: $updated"},
		{ModeCreate, "id: $id"},
		{ModeUpdate, "id: $id, created: $created, updated: datetime()"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, s.QueryFields("", tt.mode))
		})
	}
}

func TestCreateSetsStamps(t *testing.T) {
	doc := MustCompile(Node("Doc", String("id"), Time("created_at"), Time("updated_at")))
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	st, err := doc.MustNew("d1", now, now).Create()
	require.NoError(t, err)
	assert.Equal(t, "CREATE (n:Doc { id: $id }) SET n.created_at = datetime(), n.updated_at = datetime()", st.Cypher)
	assert.Equal(t, map[string]any{"id": "d1"}, st.Params)

	// What the server stores once the SET clause ran decodes again.
	stored := Props{"id": "d1", "created_at": now, "updated_at": now}
	_, err = doc.Decode(stored)
	require.NoError(t, err)

	short := MustCompile(Node("Note", String("id")).Timestamps(StampsCreated))
	tmpl, err := short.CreateNode()
	require.NoError(t, err)
	assert.Equal(t, "CREATE (n:Note { id: $id }) SET n.created = datetime()", tmpl.Cypher)

	plain := MustCompile(Node("Tag", String("id")))
	tmpl, err = plain.CreateNode()
	require.NoError(t, err)
	assert.Equal(t, "CREATE (n:Tag { id: $id })", tmpl.Cypher)
}

func TestCreateRelationSetsStamps(t *testing.T) {
	knows := MustCompile(Relation("Knows", Int64("id")).Timestamps(StampsCreatedAt))
	person := MustCompile(Node("Person", String("ssn").ID()).Timestamps(StampsUpdatedAt))

	tmpl, err := knows.CreateRelation(
		Endpoint{Schema: person, Mode: EndpointCreate},
		Endpoint{Schema: person, Mode: EndpointMatch},
	)
	require.NoError(t, err)
	assert.Equal(t,
		"MATCH (e:Person { ssn: $e_ssn })\n"+
			"CREATE (s:Person { ssn: $s_ssn }) SET s.updated_at = datetime()\n"+
			"CREATE (s)-[r:KNOWS { id: $id }]->(e) SET r.created_at = datetime()",
		tmpl.Cypher,
	)
}
