package cypherdto

import (
	"context"
	"fmt"
	"reflect"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
	"go.uber.org/zap"
)

// Repository provides CRUD operations for the node struct type T. Statements
// come from the node schema compiled from T's `cypher` tags; ad-hoc lookups
// are built with gocypher.
type Repository[T any] struct {
	runner DBRunner
	schema *Schema
	logger *zap.Logger
}

// NewRepository creates a repository for the node type T.
//
// Returns:
//
//	A new Repository instance or an error if the struct tags are invalid.
func NewRepository[T any](runner DBRunner) (*Repository[T], error) {
	return newRepository[T](runner, zap.NewNop())
}

func newRepository[T any](runner DBRunner, logger *zap.Logger) (*Repository[T], error) {
	schema, err := NodeOf[T]()
	if err != nil {
		return nil, err
	}
	return &Repository[T]{
		runner: runner,
		schema: schema,
		logger: logger.With(zap.String("entity", schema.TypeName())),
	}, nil
}

// Schema returns the node schema of T.
func (r *Repository[T]) Schema() *Schema {
	return r.schema
}

// Create creates a new node. Timestamp fields are set to the server time.
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	return r.write(ctx, entity, (*Entity).Create)
}

// Save creates the node or updates the existing one with the same identity
// (MERGE on the identity fields, then SET of every field).
func (r *Repository[T]) Save(ctx context.Context, entity *T) error {
	return r.write(ctx, entity, (*Entity).Merge)
}

// Update sets every field of an existing node. It is a no-op when no node
// has the entity's identity.
func (r *Repository[T]) Update(ctx context.Context, entity *T) error {
	return r.write(ctx, entity, (*Entity).Update)
}

func (r *Repository[T]) write(ctx context.Context, entity *T, statement func(*Entity) (*Statement, error)) error {
	e, err := r.schema.FromStruct(entity)
	if err != nil {
		return err
	}
	st, err := statement(e)
	if err != nil {
		return err
	}
	_, err = r.exec(ctx, st)
	return err
}

// FindByID retrieves a single node by its identity. ids are the identity
// values in field order; a single *T or T is accepted too and projected onto
// its identity.
//
// Returns:
//
//	A pointer to the found entity, ErrNotFound if no record is found, or another
//	error if the query or mapping fails.
func (r *Repository[T]) FindByID(ctx context.Context, ids ...any) (*T, error) {
	id, err := r.identifier(ids)
	if err != nil {
		return nil, err
	}
	st, err := id.Read()
	if err != nil {
		return nil, err
	}
	result, err := r.exec(ctx, st)
	if err != nil {
		return nil, err
	}
	return r.one(result)
}

// Delete removes the node with the given identity and its relationships.
func (r *Repository[T]) Delete(ctx context.Context, ids ...any) error {
	id, err := r.identifier(ids)
	if err != nil {
		return err
	}
	st, err := id.Delete()
	if err != nil {
		return err
	}
	_, err = r.exec(ctx, st)
	return err
}

func (r *Repository[T]) identifier(ids []any) (*Entity, error) {
	if len(ids) == 1 {
		switch v := ids[0].(type) {
		case *T:
			e, err := r.schema.FromStruct(v)
			if err != nil {
				return nil, err
			}
			return e.Identifier(), nil
		case T:
			e, err := r.schema.FromStruct(&v)
			if err != nil {
				return nil, err
			}
			return e.Identifier(), nil
		}
	}
	return r.schema.Identifier().New(ids...)
}

// FindAll retrieves every node with T's labels.
func (r *Repository[T]) FindAll(ctx context.Context) ([]*T, error) {
	qb := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", r.schema.LabelString())).
		Return("n")
	return r.Find(ctx, qb)
}

// FindByProperty retrieves the nodes whose property equals value. The value
// is cast like the field it names, so an uint8 age matches what Create wrote.
func (r *Repository[T]) FindByProperty(ctx context.Context, property string, value any) ([]*T, error) {
	bound, err := r.bindProperty(property, value)
	if err != nil {
		return nil, err
	}
	qb := gocypher.NewQueryBuilder().
		Match(gocypher.N("n", r.schema.LabelString()).WithProperties(map[string]any{property: bound})).
		Return("n")
	return r.Find(ctx, qb)
}

func (r *Repository[T]) bindProperty(property string, value any) (any, error) {
	f, ok := r.schema.Field(property)
	if !ok {
		return nil, fmt.Errorf("%s has no field %s", r.schema, property)
	}
	if value == nil {
		return nil, nil
	}
	if err := f.Check(value); err != nil {
		return nil, err
	}
	return f.Bind(value)
}

// Find runs a custom query and maps the first node of every returned row to T.
// The query must return the nodes to map, e.g. `RETURN u`.
func (r *Repository[T]) Find(ctx context.Context, qb *gocypher.QueryBuilder) ([]*T, error) {
	query, params, err := qb.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}
	result, err := r.run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return r.all(result)
}

// FindOne is like Find but expects exactly one row.
//
// Returns:
//
//	ErrNotFound when the query returns no rows and ErrNotSingular when it
//	returns more than one.
func (r *Repository[T]) FindOne(ctx context.Context, qb *gocypher.QueryBuilder) (*T, error) {
	query, params, err := qb.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}
	result, err := r.run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return r.one(result)
}

// Count returns the number of nodes with T's labels.
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("MATCH (n:%s) RETURN count(n) AS count", r.schema.LabelString())
	return r.count(ctx, query, nil)
}

// CountByProperty returns the number of nodes whose property equals value.
func (r *Repository[T]) CountByProperty(ctx context.Context, property string, value any) (int64, error) {
	bound, err := r.bindProperty(property, value)
	if err != nil {
		return 0, err
	}
	f, _ := r.schema.Field(property)
	param := FormatParam(f.Name, "")
	query := fmt.Sprintf("MATCH (n:%s) WHERE n.%s = $%s RETURN count(n) AS count",
		r.schema.LabelString(), f.Name, param)
	return r.count(ctx, query, map[string]any{param: bound})
}

func (r *Repository[T]) count(ctx context.Context, query string, params map[string]any) (int64, error) {
	result, err := r.run(ctx, query, params)
	if err != nil {
		return 0, err
	}
	if len(result.Records) != 1 {
		return 0, fmt.Errorf("expected 1 record but found %d", len(result.Records))
	}
	v, ok := result.Records[0].Get("count")
	if !ok {
		return 0, fmt.Errorf("could not find return value 'count' in query result")
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("return value 'count' is %T, not an integer", v)
	}
	return n, nil
}

func (r *Repository[T]) exec(ctx context.Context, st *Statement) (*neo4j.EagerResult, error) {
	return r.run(ctx, st.Cypher, st.Params)
}

func (r *Repository[T]) run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	r.logger.Debug("running query", zap.String("cypher", query))
	return r.runner.Run(ctx, query, params)
}

func (r *Repository[T]) one(result *neo4j.EagerResult) (*T, error) {
	switch n := len(result.Records); {
	case n == 0:
		return nil, ErrNotFound
	case n > 1:
		return nil, fmt.Errorf("%w: expected 1 record but found %d", ErrNotSingular, n)
	}
	return r.decode(result.Records[0])
}

func (r *Repository[T]) all(result *neo4j.EagerResult) ([]*T, error) {
	out := make([]*T, 0, len(result.Records))
	for _, record := range result.Records {
		entity, err := r.decode(record)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// decode maps the first node of a row to a new T.
func (r *Repository[T]) decode(record *neo4j.Record) (*T, error) {
	for _, value := range record.Values {
		node, ok := value.(neo4j.Node)
		if !ok {
			continue
		}
		e, err := r.schema.DecodeValue(node)
		if err != nil {
			return nil, err
		}
		entity := new(T)
		if err := e.ToStruct(entity); err != nil {
			return nil, err
		}
		return entity, nil
	}
	return nil, fmt.Errorf("record has no node to map to %s", reflect.TypeOf((*T)(nil)).Elem())
}
