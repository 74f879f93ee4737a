package cypherdto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCompany = MustCompile(Node("Company", String("name")).Labeled("Company", "Organization"))
	testWorksAt = MustCompile(Relation("WorksAt", Uint16("since")))
	testKnows   = MustCompile(Relation("Knows", Int64("id"), Uint16("since")))
)

func TestCreateRelation(t *testing.T) {
	tests := []struct {
		name       string
		start, end EndpointMode
		want       string
	}{
		{
			"match match", EndpointMatch, EndpointMatch,
			"MATCH (s:Person { ssn: $s_ssn })\n" +
				"MATCH (e:Company:Organization { name: $e_name })\n" +
				"CREATE (s)-[:WORKS_AT { since: $since }]->(e)",
		},
		{
			"create create", EndpointCreate, EndpointCreate,
			"CREATE (s:Person { ssn: $s_ssn, name: $s_name, age: $s_age }) SET s.created_at = datetime(), s.updated_at = datetime()\n" +
				"CREATE (e:Company:Organization { name: $e_name })\n" +
				"CREATE (s)-[:WORKS_AT { since: $since }]->(e)",
		},
		{
			"create match puts the match first", EndpointCreate, EndpointMatch,
			"MATCH (e:Company:Organization { name: $e_name })\n" +
				"CREATE (s:Person { ssn: $s_ssn, name: $s_name, age: $s_age }) SET s.created_at = datetime(), s.updated_at = datetime()\n" +
				"CREATE (s)-[:WORKS_AT { since: $since }]->(e)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := testWorksAt.CreateRelation(
				Endpoint{Schema: testPerson, Mode: tt.start},
				Endpoint{Schema: testCompany, Mode: tt.end},
			)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tmpl.Cypher)
			require.Len(t, tmpl.Sites, 3)
			assert.Equal(t, "s", tmpl.Sites[0].Prefix)
			assert.Equal(t, "e", tmpl.Sites[1].Prefix)
			assert.Equal(t, ModeCreate, tmpl.Sites[2].Mode)
		})
	}
}

func TestCreateBetween(t *testing.T) {
	alice := testPerson.MustNew("123", "Alice", nil, nil, nil)
	acme := testCompany.MustNew("Acme")
	since := testWorksAt.MustNew(uint16(2019))

	st, err := since.CreateBetween(BoundMatch(alice), BoundCreate(acme))
	require.NoError(t, err)
	assert.Equal(t,
		"MATCH (s:Person { ssn: $s_ssn })\n"+
			"CREATE (e:Company:Organization { name: $e_name })\n"+
			"CREATE (s)-[:WORKS_AT { since: $since }]->(e)",
		st.Cypher,
	)
	assert.Equal(t, []Param{
		{Name: "s_ssn", Value: "123"},
		{Name: "e_name", Value: "Acme"},
		{Name: "since", Value: int64(2019)},
	}, st.Bindings)

	// A matched endpoint may be given as its identifier.
	st, err = since.CreateBetween(BoundMatch(alice.Identifier()), BoundMatch(acme))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"s_ssn": "123", "e_name": "Acme", "since": int64(2019)}, st.Params)

	_, err = since.CreateBetween(BoundCreate(alice.Identifier()), BoundMatch(acme))
	assert.Error(t, err, "an identifier cannot be created")

	_, err = since.CreateBetween(BoundMatch(since), BoundMatch(acme))
	assert.Error(t, err, "endpoints must be nodes")
}

func TestRelationByIdentity(t *testing.T) {
	rel := testKnows.MustNew(int64(7), uint16(2001))

	st, err := rel.Read()
	require.NoError(t, err)
	assert.Equal(t, "MATCH ()-[r:KNOWS { id: $id }]-() RETURN r", st.Cypher)
	assert.Equal(t, map[string]any{"id": int64(7)}, st.Params)

	st, err = rel.Delete()
	require.NoError(t, err)
	assert.Equal(t, "MATCH ()-[r:KNOWS { id: $id }]-() DELETE r", st.Cypher)

	st, err = rel.Update()
	require.NoError(t, err)
	assert.Equal(t, "MATCH ()-[r:KNOWS { id: $id }]-() SET r += { id: $id, since: $since }", st.Cypher)
	assert.Equal(t, map[string]any{"id": int64(7), "since": int64(2001)}, st.Params)
}

func TestRelationWithoutIdentity(t *testing.T) {
	rel := testWorksAt.MustNew(uint16(2019))

	_, err := rel.Read()
	assert.ErrorIs(t, err, ErrNoIdentity)
	_, err = rel.Delete()
	assert.ErrorIs(t, err, ErrNoIdentity)
	_, err = rel.Update()
	assert.ErrorIs(t, err, ErrNoIdentity)

	tmpl, err := testWorksAt.ReadAllRelations()
	require.NoError(t, err)
	assert.Equal(t, "MATCH ()-[r:WORKS_AT]-() RETURN r", tmpl.Cypher)
	assert.Empty(t, tmpl.Sites)

	tmpl, err = testWorksAt.DeleteAllRelations()
	require.NoError(t, err)
	assert.Equal(t, "MATCH ()-[r:WORKS_AT]-() DELETE r", tmpl.Cypher)

	st, err := rel.UpdateAll()
	require.NoError(t, err)
	assert.Equal(t, "MATCH ()-[r:WORKS_AT]-() SET r += { since: $since }", st.Cypher)
	assert.Equal(t, map[string]any{"since": int64(2019)}, st.Params)
}

func TestRelationBoundToNodes(t *testing.T) {
	alice := testPerson.MustNew("123", "Alice", nil, nil, nil)
	acme := testCompany.MustNew("Acme")
	rel := testWorksAt.MustNew(uint16(2019))

	st, err := rel.ReadFrom(alice)
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person { ssn: $n_ssn })-[r:WORKS_AT]-() RETURN r", st.Cypher)
	assert.Equal(t, map[string]any{"n_ssn": "123"}, st.Params)

	st, err = rel.ReadBetween(alice, acme)
	require.NoError(t, err)
	assert.Equal(t,
		"MATCH (s:Person { ssn: $s_ssn })-[r:WORKS_AT]-(e:Company:Organization { name: $e_name }) RETURN r",
		st.Cypher,
	)

	st, err = rel.DeleteFrom(alice)
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person { ssn: $n_ssn })-[r:WORKS_AT]-() DELETE r", st.Cypher)

	st, err = rel.DeleteBetween(alice, acme)
	require.NoError(t, err)
	assert.Equal(t,
		"MATCH (s:Person { ssn: $s_ssn })-[r:WORKS_AT]-(e:Company:Organization { name: $e_name }) DELETE r",
		st.Cypher,
	)

	st, err = rel.UpdateFrom(alice)
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person { ssn: $n_ssn })-[r:WORKS_AT]-() SET r += { since: $since }", st.Cypher)
	assert.Equal(t, map[string]any{"n_ssn": "123", "since": int64(2019)}, st.Params)

	st, err = rel.UpdateBetween(alice, acme)
	require.NoError(t, err)
	assert.Equal(t,
		"MATCH (s:Person { ssn: $s_ssn })-[r:WORKS_AT]-(e:Company:Organization { name: $e_name }) SET r += { since: $since }",
		st.Cypher,
	)
	assert.Equal(t, map[string]any{"s_ssn": "123", "e_name": "Acme", "since": int64(2019)}, st.Params)

	// Relationships with identity keep it in the pattern.
	knows := testKnows.MustNew(int64(1), uint16(1999))
	st, err = knows.ReadFrom(alice)
	require.NoError(t, err)
	assert.Equal(t, "MATCH (n:Person { ssn: $n_ssn })-[r:KNOWS { id: $id }]-() RETURN r", st.Cypher)
}

func TestRelationTemplateErrors(t *testing.T) {
	_, err := testPerson.ReadRelation()
	assert.Error(t, err)

	_, err = testWorksAt.ReadRelationFrom(testWorksAt)
	assert.Error(t, err, "the endpoint must be a node")

	loose := MustCompile(Node("Note", String("text").Optional()))
	_, err = testWorksAt.ReadRelationBetween(testPerson, loose)
	assert.ErrorIs(t, err, ErrNoIdentity)

	_, err = testKnows.Identifier().UpdateRelation()
	assert.Error(t, err)

	_, err = testKnows.Identifier().CreateRelation(
		Endpoint{Schema: testPerson, Mode: EndpointMatch},
		Endpoint{Schema: testCompany, Mode: EndpointMatch},
	)
	assert.Error(t, err)
}

func TestCreateBetweenParameterClash(t *testing.T) {
	clashing := MustCompile(Relation("WorksAt", String("s_ssn")))
	alice := testPerson.MustNew("111", "Alice", nil, nil, nil)
	acme := testCompany.MustNew("Acme")

	_, err := clashing.MustNew("999").CreateBetween(BoundMatch(alice), BoundMatch(acme))
	assert.ErrorContains(t, err, "s_ssn")
}

func TestRelationNilEndpoints(t *testing.T) {
	rel := testWorksAt.MustNew(uint16(2019))
	alice := testPerson.MustNew("1", "Alice", nil, nil, nil)

	calls := map[string]func() (*Statement, error){
		"read from":      func() (*Statement, error) { return rel.ReadFrom(nil) },
		"delete from":    func() (*Statement, error) { return rel.DeleteFrom(nil) },
		"update from":    func() (*Statement, error) { return rel.UpdateFrom(nil) },
		"read between":   func() (*Statement, error) { return rel.ReadBetween(alice, nil) },
		"delete between": func() (*Statement, error) { return rel.DeleteBetween(nil, alice) },
		"update between": func() (*Statement, error) { return rel.UpdateBetween(nil, nil) },
		"create between": func() (*Statement, error) { return rel.CreateBetween(BoundMatch(alice), BoundCreate(nil)) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			var err error
			assert.NotPanics(t, func() { _, err = call() })
			assert.Error(t, err)
		})
	}

	_, err := testWorksAt.ReadRelationFrom(nil)
	assert.Error(t, err)
	_, err = testWorksAt.UpdateRelationBetween(testPerson, nil)
	assert.Error(t, err)
}
