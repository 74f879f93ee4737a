package cypherdto

import (
	"context"
	"fmt"
	"reflect"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"
	"go.uber.org/zap"
)

// PersistenceManager is the central orchestrator for the persistence layer.
// It runs statements on a DBRunner and provides access to repositories and
// cross-entity operations like creating relationships.
type PersistenceManager struct {
	runner DBRunner
	logger *zap.Logger
}

// ManagerOption configures a PersistenceManager.
type ManagerOption func(*PersistenceManager)

// WithLogger sets the logger statements are reported to.
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(pm *PersistenceManager) {
		if logger != nil {
			pm.logger = logger
		}
	}
}

// NewPersistenceManager creates a new instance of the PersistenceManager.
func NewPersistenceManager(runner DBRunner, opts ...ManagerOption) *PersistenceManager {
	pm := &PersistenceManager{runner: runner, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(pm)
	}
	return pm
}

// RepositoryFor is a generic function that creates and returns a repository
// for a specific struct type T, managed by the given PersistenceManager.
func RepositoryFor[T any](pm *PersistenceManager) (*Repository[T], error) {
	return newRepository[T](pm.runner, pm.logger)
}

// Exec runs a bound statement.
func (pm *PersistenceManager) Exec(ctx context.Context, st *Statement) (*neo4j.EagerResult, error) {
	pm.logger.Debug("running statement", zap.String("cypher", st.Cypher), zap.Int("params", len(st.Params)))
	return RunStatement(ctx, pm.runner, st)
}

// Relate creates the relationship rel between two endpoints, each either
// created with it or matched by identity.
func (pm *PersistenceManager) Relate(ctx context.Context, rel *Entity, start, end RelationBound) error {
	st, err := rel.CreateBetween(start, end)
	if err != nil {
		return err
	}
	_, err = pm.Exec(ctx, st)
	return err
}

// CreateRelation creates the relationship rel, a tagged relationship struct,
// from the existing node from to the existing node to. Both nodes are matched
// by the identity of their tagged structs.
//
//	err := pm.CreateRelation(ctx, &Wrote{Year: 1813}, &author, &book)
func (pm *PersistenceManager) CreateRelation(ctx context.Context, rel any, from any, to any) error {
	relEntity, err := structEntity(rel, RelationEntity)
	if err != nil {
		return err
	}
	fromEntity, err := structEntity(from, NodeEntity)
	if err != nil {
		return err
	}
	toEntity, err := structEntity(to, NodeEntity)
	if err != nil {
		return err
	}
	return pm.Relate(ctx, relEntity, BoundMatch(fromEntity), BoundMatch(toEntity))
}

// structEntity compiles (or loads) the schema of v's type and converts v.
func structEntity(v any, et EntityType) (*Entity, error) {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return nil, fmt.Errorf("entity must be a non-nil pointer")
	}
	schema, err := SchemaOf(val.Elem().Type(), et)
	if err != nil {
		return nil, err
	}
	return schema.FromStruct(v)
}

// FindGraph executes a graph query defined by a gocypher.QueryBuilder and maps the result
// into a generic graph structure composed of nodes and edges.
//
// The caller is responsible for a RETURN clause naming the nodes, relationships
// or paths to include, e.g. `RETURN u, r, p`. Elements returned in several
// rows appear once in the GraphResult.
//
// Returns:
//   - The de-duplicated nodes and edges of the result.
//   - ErrNotFound if the query returns zero records.
func (pm *PersistenceManager) FindGraph(ctx context.Context, qb *gocypher.QueryBuilder) (*GraphResult, error) {
	query, params, err := qb.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build query: %w", err)
	}

	result, err := pm.Exec(ctx, &Statement{Cypher: query, Params: params})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, ErrNotFound
	}

	graph := collectGraph(result.Records)
	pm.logger.Debug("graph loaded", zap.Int("nodes", len(graph.Nodes)), zap.Int("edges", len(graph.Edges)))
	return graph, nil
}
