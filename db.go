// Package cypherdto compiles record descriptions into Cypher schemas: field
// classification, an identifier schema, value conversion in both directions
// and parameterized query templates. It also carries a thin persistence layer
// over the official Neo4j Go driver to run the statements it renders.
package cypherdto

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// DBRunner defines the interface for a generic query executor.
// It abstracts the execution of a Cypher query, allowing for different implementations
// or mocking in tests.
type DBRunner interface {
	// Run executes a given Cypher query with parameters and returns a fully-buffered result.
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// RunStatement executes a bound statement on runner.
func RunStatement(ctx context.Context, runner DBRunner, st *Statement) (*neo4j.EagerResult, error) {
	return runner.Run(ctx, st.Cypher, st.Params)
}

//---

// Neo4jExecutor is the DBRunner backed by the official Neo4j Go driver. It
// owns the driver and targets a single database.
type Neo4jExecutor struct {
	Driver neo4j.DriverWithContext
	DBName string

	logger *zap.Logger
}

// ExecutorOption configures a Neo4jExecutor.
type ExecutorOption func(*Neo4jExecutor)

// WithExecutorLogger sets the logger queries are reported to.
func WithExecutorLogger(logger *zap.Logger) ExecutorOption {
	return func(e *Neo4jExecutor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewNeo4jExecutor creates the driver for uri with basic auth.
//
// Parameters:
//   - uri: The connection URI for the Neo4j instance (e.g., "neo4j://localhost:7687").
//   - username, password: The credentials.
//   - dbName: The name of the database to run queries against (e.g., "neo4j").
func NewNeo4jExecutor(uri, username, password, dbName string, opts ...ExecutorOption) (*Neo4jExecutor, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create Neo4j driver: %w", err)
	}
	e := &Neo4jExecutor{Driver: driver, DBName: dbName, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Verify checks the connectivity to the Neo4j database.
func (e *Neo4jExecutor) Verify(ctx context.Context) error {
	if err := e.Driver.VerifyConnectivity(ctx); err != nil {
		e.logger.Error("neo4j connectivity check failed", zap.String("database", e.DBName), zap.Error(err))
		return err
	}
	return nil
}

// Close releases the driver.
func (e *Neo4jExecutor) Close(ctx context.Context) error {
	return e.Driver.Close(ctx)
}

// Run executes a Cypher query with ExecuteQuery, which manages the session and
// retries transient failures. All records are buffered before returning.
func (e *Neo4jExecutor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	e.logger.Debug("running query", zap.String("cypher", query), zap.Strings("params", paramNames(params)))

	result, err := neo4j.ExecuteQuery(
		ctx,
		e.Driver,
		query,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.DBName),
	)
	if err != nil {
		e.logger.Error("query failed", zap.String("cypher", query), zap.Error(err))
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}

	e.logger.Debug("query done", zap.Int("records", len(result.Records)))
	return result, nil
}

// Exec runs a bound statement.
func (e *Neo4jExecutor) Exec(ctx context.Context, st *Statement) (*neo4j.EagerResult, error) {
	return RunStatement(ctx, e, st)
}

// paramNames lists parameter names only; values may be sensitive.
func paramNames(params map[string]any) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
