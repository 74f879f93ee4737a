package cypherdto

import "fmt"

// EndpointMode tells how a node enters a relationship-creation statement.
type EndpointMode uint8

const (
	// EndpointCreate creates the node in the same statement.
	EndpointCreate EndpointMode = iota
	// EndpointMatch matches an existing node by its identifier.
	EndpointMatch
)

// Endpoint is the schema-level side of a RelationBound.
type Endpoint struct {
	Schema *Schema
	Mode   EndpointMode
}

func (ep Endpoint) render(alias string) (string, Site, error) {
	if ep.Schema == nil {
		return "", Site{}, fmt.Errorf("endpoint %s: nil schema", alias)
	}
	switch ep.Mode {
	case EndpointCreate:
		if err := ep.Schema.requireNode(); err != nil {
			return "", Site{}, err
		}
		if ep.Schema.isID {
			return "", Site{}, fmt.Errorf("endpoint %s: cannot create a node from identifier %s", alias, ep.Schema)
		}
		line := fmt.Sprintf("CREATE (%s:%s)", alias, ep.Schema.QueryObject(alias, ModeCreate)) +
			ep.Schema.createStamps(alias)
		return line, Site{Schema: ep.Schema, Prefix: alias, Mode: ModeCreate}, nil
	case EndpointMatch:
		id, err := ep.Schema.nodeIdentifier()
		if err != nil {
			return "", Site{}, err
		}
		line := fmt.Sprintf("MATCH (%s:%s)", alias, id.QueryObject(alias, ModeRead))
		return line, Site{Schema: id, Prefix: alias, Mode: ModeRead}, nil
	}
	return "", Site{}, fmt.Errorf("endpoint %s: unknown mode %d", alias, ep.Mode)
}

// RelationBound is a node participant of a relationship-creation statement:
// either a full node to create or an identifier of an existing node.
type RelationBound struct {
	mode  EndpointMode
	value *Entity
}

// BoundCreate creates node in the statement.
func BoundCreate(node *Entity) RelationBound {
	return RelationBound{mode: EndpointCreate, value: node}
}

// BoundMatch matches an existing node. node may be the identifier or the
// full entity; only its identity fields are used.
func BoundMatch(node *Entity) RelationBound {
	return RelationBound{mode: EndpointMatch, value: node}
}

// Endpoint returns the schema-level description of the bound.
func (b RelationBound) Endpoint() Endpoint {
	if b.value == nil {
		return Endpoint{Mode: b.mode}
	}
	return Endpoint{Schema: b.value.schema, Mode: b.mode}
}

func (b RelationBound) bindValue() *Entity {
	if b.mode == EndpointMatch {
		return b.value.Identifier()
	}
	return b.value
}

func (s *Schema) requireRelation() error {
	if !s.IsRelation() {
		return fmt.Errorf("%s is not a relationship", s)
	}
	return nil
}

// relationIdentifier returns the identifier schema of a relationship. When
// single is set the relationship must be individually identifiable.
func (s *Schema) relationIdentifier(single bool) (*Schema, error) {
	if err := s.requireRelation(); err != nil {
		return nil, err
	}
	id := s.identitySchema()
	if single && len(id.fields) == 0 {
		return nil, fmt.Errorf("%s: %w; use the All variant to target every %s relationship", s, ErrNoIdentity, s.typeName)
	}
	return id, nil
}

// CreateRelation renders the creation of a relationship between two
// endpoints. MATCH lines come before CREATE lines so that the statement stays
// valid when a created endpoint is followed by a matched one:
//
//	MATCH (e:Company { name: $e_name })
//	CREATE (s:Person { name: $s_name })
//	CREATE (s)-[:WORKS_AT { since: $since }]->(e)
//
// Bind with the start value, the end value and the relationship.
func (s *Schema) CreateRelation(start, end Endpoint) (*Template, error) {
	if err := s.requireRelation(); err != nil {
		return nil, err
	}
	if s.isID {
		return nil, fmt.Errorf("cannot create a relationship from identifier %s", s)
	}
	startLine, startSite, err := start.render("s")
	if err != nil {
		return nil, err
	}
	endLine, endSite, err := end.render("e")
	if err != nil {
		return nil, err
	}

	var matches, creates []string
	for _, ep := range []struct {
		line string
		mode EndpointMode
	}{{startLine, start.Mode}, {endLine, end.Mode}} {
		if ep.mode == EndpointMatch {
			matches = append(matches, ep.line)
		} else {
			creates = append(creates, ep.line)
		}
	}
	parts := append(matches, creates...)
	if s.stamps.IsZero() {
		parts = append(parts, fmt.Sprintf("CREATE (s)-[:%s]->(e)", s.QueryObject("", ModeCreate)))
	} else {
		parts = append(parts, fmt.Sprintf("CREATE (s)-[r:%s]->(e)", s.QueryObject("", ModeCreate))+s.createStamps("r"))
	}

	return &Template{
		Cypher: lines(parts...),
		Sites:  []Site{startSite, endSite, {Schema: s, Mode: ModeCreate}},
	}, nil
}

// ReadRelation renders MATCH ()-[r:TYPE { id fields }]-() RETURN r.
// It fails with ErrNoIdentity when the type has no identity fields.
func (s *Schema) ReadRelation() (*Template, error) {
	return s.matchRelation("RETURN r")
}

// DeleteRelation renders MATCH ()-[r:TYPE { id fields }]-() DELETE r.
func (s *Schema) DeleteRelation() (*Template, error) {
	return s.matchRelation("DELETE r")
}

func (s *Schema) matchRelation(tail string) (*Template, error) {
	id, err := s.relationIdentifier(true)
	if err != nil {
		return nil, err
	}
	return &Template{
		Cypher: fmt.Sprintf("MATCH ()-[r:%s]-() %s", id.QueryObject("", ModeRead), tail),
		Sites:  []Site{{Schema: id, Mode: ModeRead}},
	}, nil
}

// ReadRelationFrom reads the relationships of this type attached to one node.
// Bind with the node identifier and then the relationship identifier.
func (s *Schema) ReadRelationFrom(node *Schema) (*Template, error) {
	return s.matchRelationFrom(node, "RETURN r")
}

// DeleteRelationFrom deletes the relationships of this type attached to one node.
func (s *Schema) DeleteRelationFrom(node *Schema) (*Template, error) {
	return s.matchRelationFrom(node, "DELETE r")
}

func (s *Schema) matchRelationFrom(node *Schema, tail string) (*Template, error) {
	id, err := s.relationIdentifier(false)
	if err != nil {
		return nil, err
	}
	nid, err := node.nodeIdentifier()
	if err != nil {
		return nil, err
	}
	return &Template{
		Cypher: fmt.Sprintf("MATCH (n:%s)-[r:%s]-() %s",
			nid.QueryObject("n", ModeRead),
			id.QueryObject("", ModeRead),
			tail,
		),
		Sites: []Site{
			{Schema: nid, Prefix: "n", Mode: ModeRead},
			{Schema: id, Mode: ModeRead},
		},
	}, nil
}

// ReadRelationBetween reads the relationships of this type between two nodes.
// Bind with the start identifier, the end identifier and the relationship identifier.
func (s *Schema) ReadRelationBetween(start, end *Schema) (*Template, error) {
	return s.matchRelationBetween(start, end, "RETURN r")
}

// DeleteRelationBetween deletes the relationships of this type between two nodes.
func (s *Schema) DeleteRelationBetween(start, end *Schema) (*Template, error) {
	return s.matchRelationBetween(start, end, "DELETE r")
}

func (s *Schema) matchRelationBetween(start, end *Schema, tail string) (*Template, error) {
	id, err := s.relationIdentifier(false)
	if err != nil {
		return nil, err
	}
	sid, err := start.nodeIdentifier()
	if err != nil {
		return nil, err
	}
	eid, err := end.nodeIdentifier()
	if err != nil {
		return nil, err
	}
	return &Template{
		Cypher: fmt.Sprintf("MATCH (s:%s)-[r:%s]-(e:%s) %s",
			sid.QueryObject("s", ModeRead),
			id.QueryObject("", ModeRead),
			eid.QueryObject("e", ModeRead),
			tail,
		),
		Sites: []Site{
			{Schema: sid, Prefix: "s", Mode: ModeRead},
			{Schema: eid, Prefix: "e", Mode: ModeRead},
			{Schema: id, Mode: ModeRead},
		},
	}, nil
}

// ReadAllRelations reads every relationship of this type. It takes no values.
func (s *Schema) ReadAllRelations() (*Template, error) {
	if err := s.requireRelation(); err != nil {
		return nil, err
	}
	return &Template{Cypher: fmt.Sprintf("MATCH ()-[r:%s]-() RETURN r", s.LabelString())}, nil
}

// DeleteAllRelations deletes every relationship of this type.
func (s *Schema) DeleteAllRelations() (*Template, error) {
	if err := s.requireRelation(); err != nil {
		return nil, err
	}
	return &Template{Cypher: fmt.Sprintf("MATCH ()-[r:%s]-() DELETE r", s.LabelString())}, nil
}

// UpdateRelation renders MATCH ()-[r:TYPE { id fields }]-() SET r += { fields }.
// It fails with ErrNoIdentity when the type has no identity fields; widening
// the update to every relationship of the type needs UpdateAllRelations.
// Bind with the identifier and then the entity.
func (s *Schema) UpdateRelation() (*Template, error) {
	if s.isID {
		return nil, fmt.Errorf("cannot update a relationship from identifier %s", s)
	}
	id, err := s.relationIdentifier(true)
	if err != nil {
		return nil, err
	}
	return &Template{
		Cypher: fmt.Sprintf("MATCH ()-[r:%s]-() SET r += { %s }",
			id.QueryObject("", ModeRead),
			s.QueryFields("", ModeUpdate),
		),
		Sites: []Site{
			{Schema: id, Mode: ModeRead},
			{Schema: s, Mode: ModeUpdate},
		},
	}, nil
}

// UpdateRelationFrom updates the relationships of this type attached to one node.
// Bind with the node identifier, the relationship identifier and the relationship.
func (s *Schema) UpdateRelationFrom(node *Schema) (*Template, error) {
	t, err := s.matchRelationFrom(node, "")
	if err != nil {
		return nil, err
	}
	return s.withSet(t)
}

// UpdateRelationBetween updates the relationships of this type between two nodes.
// Bind with the start identifier, the end identifier, the relationship
// identifier and the relationship.
func (s *Schema) UpdateRelationBetween(start, end *Schema) (*Template, error) {
	t, err := s.matchRelationBetween(start, end, "")
	if err != nil {
		return nil, err
	}
	return s.withSet(t)
}

// UpdateAllRelations sets the fields on every relationship of this type.
// Bind with the relationship.
func (s *Schema) UpdateAllRelations() (*Template, error) {
	if err := s.requireRelation(); err != nil {
		return nil, err
	}
	return s.withSet(&Template{Cypher: fmt.Sprintf("MATCH ()-[r:%s]-() ", s.LabelString())})
}

func (s *Schema) withSet(t *Template) (*Template, error) {
	if s.isID {
		return nil, fmt.Errorf("cannot update a relationship from identifier %s", s)
	}
	t.Cypher += fmt.Sprintf("SET r += { %s }", s.QueryFields("", ModeUpdate))
	t.Sites = append(t.Sites, Site{Schema: s, Mode: ModeUpdate})
	return t, nil
}

// CreateBetween builds the statement creating this relationship between start and end.
func (e *Entity) CreateBetween(start, end RelationBound) (*Statement, error) {
	if err := e.requireEndpoints(start.value, end.value); err != nil {
		return nil, err
	}
	t, err := e.schema.CreateRelation(start.Endpoint(), end.Endpoint())
	if err != nil {
		return nil, err
	}
	return t.Bind(start.bindValue(), end.bindValue(), e)
}

// ReadFrom builds the statement reading this relationship from node.
func (e *Entity) ReadFrom(node *Entity) (*Statement, error) {
	if err := e.requireEndpoints(node); err != nil {
		return nil, err
	}
	t, err := e.schema.ReadRelationFrom(node.schema)
	if err != nil {
		return nil, err
	}
	return t.Bind(node, e)
}

// ReadBetween builds the statement reading this relationship between start and end.
func (e *Entity) ReadBetween(start, end *Entity) (*Statement, error) {
	if err := e.requireEndpoints(start, end); err != nil {
		return nil, err
	}
	t, err := e.schema.ReadRelationBetween(start.schema, end.schema)
	if err != nil {
		return nil, err
	}
	return t.Bind(start, end, e)
}

// DeleteFrom builds the statement deleting this relationship from node.
func (e *Entity) DeleteFrom(node *Entity) (*Statement, error) {
	if err := e.requireEndpoints(node); err != nil {
		return nil, err
	}
	t, err := e.schema.DeleteRelationFrom(node.schema)
	if err != nil {
		return nil, err
	}
	return t.Bind(node, e)
}

// DeleteBetween builds the statement deleting this relationship between start and end.
func (e *Entity) DeleteBetween(start, end *Entity) (*Statement, error) {
	if err := e.requireEndpoints(start, end); err != nil {
		return nil, err
	}
	t, err := e.schema.DeleteRelationBetween(start.schema, end.schema)
	if err != nil {
		return nil, err
	}
	return t.Bind(start, end, e)
}

// UpdateFrom builds the merge-update of this relationship from node.
func (e *Entity) UpdateFrom(node *Entity) (*Statement, error) {
	if err := e.requireEndpoints(node); err != nil {
		return nil, err
	}
	t, err := e.schema.UpdateRelationFrom(node.schema)
	if err != nil {
		return nil, err
	}
	return t.Bind(node, e, e)
}

// UpdateBetween builds the merge-update of this relationship between start and end.
func (e *Entity) UpdateBetween(start, end *Entity) (*Statement, error) {
	if err := e.requireEndpoints(start, end); err != nil {
		return nil, err
	}
	t, err := e.schema.UpdateRelationBetween(start.schema, end.schema)
	if err != nil {
		return nil, err
	}
	return t.Bind(start, end, e, e)
}

// UpdateAll builds the update of every relationship of this type.
func (e *Entity) UpdateAll() (*Statement, error) {
	t, err := e.schema.UpdateAllRelations()
	if err != nil {
		return nil, err
	}
	return t.Bind(e)
}

func (e *Entity) requireEndpoints(nodes ...*Entity) error {
	for _, n := range nodes {
		if n == nil {
			return fmt.Errorf("relationship %s: nil endpoint", e.schema)
		}
	}
	return nil
}

func (e *Entity) bindRelation(t *Template, err error) (*Statement, error) {
	if err != nil {
		return nil, err
	}
	return t.Bind(e)
}
