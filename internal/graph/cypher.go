package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ExecuteCypher runs a read-only Cypher query inside a managed read
// transaction, the same session discipline IngestReport uses for writes, and
// returns one map per result row.
func (c *Neo4jClient) ExecuteCypher(ctx context.Context, query string) ([]map[string]any, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.dbName,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	rows, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(records))
		for i, rec := range records {
			out[i] = plainValue(rec.AsMap()).(map[string]any)
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph: run cypher: %w", err)
	}
	return rows.([]map[string]any), nil
}

// plainValue rewrites driver entity types into plain maps, recursing through
// lists and maps, so query rows survive JSON serialization in tool results.
func plainValue(v any) any {
	switch val := v.(type) {
	case neo4j.Node:
		return map[string]any{
			"id":         val.ElementId,
			"labels":     val.Labels,
			"properties": val.Props,
		}
	case neo4j.Relationship:
		return map[string]any{
			"type":       val.Type,
			"startNode":  val.StartElementId,
			"endNode":    val.EndElementId,
			"properties": val.Props,
		}
	case []any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = plainValue(val[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k := range val {
			out[k] = plainValue(val[k])
		}
		return out
	default:
		return v
	}
}
