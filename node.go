package cypherdto

import "fmt"

func (s *Schema) requireNode() error {
	if s == nil {
		return fmt.Errorf("nil node schema")
	}
	if !s.IsNode() {
		return fmt.Errorf("%s is not a node", s)
	}
	return nil
}

// nodeIdentifier resolves the identifier schema used to match a node.
func (s *Schema) nodeIdentifier() (*Schema, error) {
	if err := s.requireNode(); err != nil {
		return nil, err
	}
	id := s.identitySchema()
	if len(id.fields) == 0 {
		return nil, fmt.Errorf("%s: %w", s, ErrNoIdentity)
	}
	return id, nil
}

// CreateNode renders CREATE (n:Labels { fields }) with the fields in
// ModeCreate, followed by SET n.<stamp> = datetime() for each stamp.
// Bind with the entity.
func (s *Schema) CreateNode() (*Template, error) {
	if err := s.requireNode(); err != nil {
		return nil, err
	}
	if s.isID {
		return nil, fmt.Errorf("cannot create a node from identifier %s", s)
	}
	return &Template{
		Cypher: fmt.Sprintf("CREATE (n:%s)", s.QueryObject("", ModeCreate)) + s.createStamps("n"),
		Sites:  []Site{{Schema: s, Mode: ModeCreate}},
	}, nil
}

// ReadNode renders MATCH (n:Labels { id fields }) RETURN n. Bind with the
// identifier (or the entity).
func (s *Schema) ReadNode() (*Template, error) {
	return s.matchNode("RETURN n")
}

// DeleteNode renders MATCH (n:Labels { id fields }) DETACH DELETE n.
func (s *Schema) DeleteNode() (*Template, error) {
	return s.matchNode("DETACH DELETE n")
}

func (s *Schema) matchNode(tail string) (*Template, error) {
	id, err := s.nodeIdentifier()
	if err != nil {
		return nil, err
	}
	return &Template{
		Cypher: fmt.Sprintf("MATCH (n:%s) %s", id.QueryObject("", ModeRead), tail),
		Sites:  []Site{{Schema: id, Mode: ModeRead}},
	}, nil
}

// UpdateNode renders MATCH (n:Labels { id fields }) SET n += { fields } with
// the fields in ModeUpdate. Identity fields cannot be changed this way.
// Bind with the identifier and then the entity.
func (s *Schema) UpdateNode() (*Template, error) {
	return s.setNode("MATCH")
}

// MergeNode is UpdateNode with MERGE: the node is created when no node
// matches its identifier.
func (s *Schema) MergeNode() (*Template, error) {
	return s.setNode("MERGE")
}

func (s *Schema) setNode(clause string) (*Template, error) {
	if s.isID {
		return nil, fmt.Errorf("cannot update a node from identifier %s", s)
	}
	id, err := s.nodeIdentifier()
	if err != nil {
		return nil, err
	}
	return &Template{
		Cypher: fmt.Sprintf("%s (n:%s) SET n += { %s }",
			clause,
			id.QueryObject("", ModeRead),
			s.QueryFields("", ModeUpdate),
		),
		Sites: []Site{
			{Schema: id, Mode: ModeRead},
			{Schema: s, Mode: ModeUpdate},
		},
	}, nil
}

// Create builds the statement creating this node.
func (e *Entity) Create() (*Statement, error) {
	t, err := e.schema.CreateNode()
	if err != nil {
		return nil, err
	}
	return t.Bind(e)
}

// Merge builds the upsert statement for this node.
func (e *Entity) Merge() (*Statement, error) {
	t, err := e.schema.MergeNode()
	if err != nil {
		return nil, err
	}
	return t.Bind(e, e)
}

// Read builds the statement reading the node or relationship this value
// identifies.
func (e *Entity) Read() (*Statement, error) {
	if e.schema.IsRelation() {
		return e.bindRelation(e.schema.ReadRelation())
	}
	t, err := e.schema.ReadNode()
	if err != nil {
		return nil, err
	}
	return t.Bind(e)
}

// Delete builds the statement deleting the node (with its relationships) or
// relationship this value identifies.
func (e *Entity) Delete() (*Statement, error) {
	if e.schema.IsRelation() {
		return e.bindRelation(e.schema.DeleteRelation())
	}
	t, err := e.schema.DeleteNode()
	if err != nil {
		return nil, err
	}
	return t.Bind(e)
}

// Update builds the merge-update statement of this node or relationship,
// treating the current values as the desired ones.
func (e *Entity) Update() (*Statement, error) {
	if e.schema.IsRelation() {
		t, err := e.schema.UpdateRelation()
		if err != nil {
			return nil, err
		}
		return t.Bind(e, e)
	}
	t, err := e.schema.UpdateNode()
	if err != nil {
		return nil, err
	}
	return t.Bind(e, e)
}
