package cypherdto

import "github.com/neo4j/neo4j-go-driver/v5/neo4j"

// GraphNode is a node of a GraphResult, independent of any schema.
type GraphNode struct {
	// ID is the ElementId assigned by Neo4j.
	ID     string   `json:"id"`
	Labels []string `json:"labels"`

	// Properties are the raw property values as returned by the driver.
	Properties map[string]any `json:"properties"`
}

// Edge is a relationship of a GraphResult.
type Edge struct {
	ID string `json:"id"`

	// Source and Target are the ElementIds of the start and end nodes.
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// GraphResult holds the distinct nodes and relationships of a query result,
// in the shape graph visualization front-ends expect.
type GraphResult struct {
	Nodes []*GraphNode `json:"nodes"`
	Edges []*Edge      `json:"edges"`
}

// collectGraph walks every value of every record and keeps each node and
// relationship once, by ElementId. Paths and lists are walked too.
func collectGraph(records []*neo4j.Record) *GraphResult {
	graph := &GraphResult{
		Nodes: make([]*GraphNode, 0),
		Edges: make([]*Edge, 0),
	}
	seenNodes := make(map[string]bool)
	seenEdges := make(map[string]bool)

	var visit func(value any)
	visit = func(value any) {
		switch v := value.(type) {
		case neo4j.Node:
			if !seenNodes[v.ElementId] {
				graph.Nodes = append(graph.Nodes, &GraphNode{
					ID:         v.ElementId,
					Labels:     v.Labels,
					Properties: v.Props,
				})
				seenNodes[v.ElementId] = true
			}
		case neo4j.Relationship:
			if !seenEdges[v.ElementId] {
				graph.Edges = append(graph.Edges, &Edge{
					ID:         v.ElementId,
					Source:     v.StartElementId,
					Target:     v.EndElementId,
					Type:       v.Type,
					Properties: v.Props,
				})
				seenEdges[v.ElementId] = true
			}
		case neo4j.Path:
			for _, n := range v.Nodes {
				visit(n)
			}
			for _, r := range v.Relationships {
				visit(r)
			}
		case []any:
			for _, item := range v {
				visit(item)
			}
		}
	}

	for _, record := range records {
		for _, value := range record.Values {
			visit(value)
		}
	}
	return graph
}
