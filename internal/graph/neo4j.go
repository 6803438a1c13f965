// Package graph mirrors weather reports into a Neo4j session graph so that
// hosts, conditions, insights and alerts become queryable as connected data.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"sysweather/internal/output"
)

// Client defines the interface for graph operations.
type Client interface {
	Close(ctx context.Context) error
	Reset(ctx context.Context) error
	IngestReport(ctx context.Context, hostname string, report *output.Report) error
	ExecuteCypher(ctx context.Context, query string) ([]map[string]any, error)
}

// Neo4jClient implements Client for Neo4j.
type Neo4jClient struct {
	driver neo4j.DriverWithContext
	dbName string
}

// NewNeo4jClient creates a new Neo4j client and verifies connectivity.
func NewNeo4jClient(uri, username, password, dbName string) (*Neo4jClient, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	return &Neo4jClient{driver: driver, dbName: dbName}, nil
}

func (c *Neo4jClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// Reset deletes all data in the graph.
func (c *Neo4jClient) Reset(ctx context.Context) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.dbName})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
	})
	return err
}

// IngestReport pushes one weather report into the graph.
func (c *Neo4jClient) IngestReport(ctx context.Context, hostname string, report *output.Report) error {
	if report == nil {
		return fmt.Errorf("graph: nil report")
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.dbName})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if err := mergeHost(ctx, tx, hostname, report); err != nil {
			return nil, err
		}
		sampleID, err := createSample(ctx, tx, hostname, report)
		if err != nil {
			return nil, err
		}
		if err := linkCondition(ctx, tx, sampleID, report); err != nil {
			return nil, err
		}
		if err := createInsights(ctx, tx, sampleID, report); err != nil {
			return nil, err
		}
		return nil, createAlerts(ctx, tx, sampleID, report)
	})
	return err
}

func mergeHost(ctx context.Context, tx neo4j.ManagedTransaction, hostname string, r *output.Report) error {
	query := `
		MERGE (h:Host {hostname: $hostname})
		SET h.cpu_model = $cpu_model,
			h.cpu_cores = $cpu_cores
	`
	_, err := tx.Run(ctx, query, map[string]any{
		"hostname":  hostname,
		"cpu_model": r.Sample.CPU.Model,
		"cpu_cores": r.Sample.CPU.CoreCount,
	})
	return err
}

func createSample(ctx context.Context, tx neo4j.ManagedTransaction, hostname string, r *output.Report) (string, error) {
	query := `
		MATCH (h:Host {hostname: $hostname})
		CREATE (s:Sample {
			sample_id: $sample_id,
			sampled_at: $sampled_at,
			cpu_usage_pct: $cpu_usage,
			mem_usage_pct: $mem_usage,
			disk_usage_pct: $disk_usage,
			procs_running: $procs_running,
			severity_score: $severity_score
		})
		CREATE (h)-[:HAS_SAMPLE]->(s)
		RETURN elementId(s)
	`
	sampleID := fmt.Sprintf("%s-%d", hostname, r.Sample.Timestamp.UnixNano())
	params := map[string]any{
		"hostname":       hostname,
		"sample_id":      sampleID,
		"sampled_at":     r.Sample.Timestamp.UTC().Format(time.RFC3339),
		"cpu_usage":      r.Sample.CPU.UsagePercent,
		"mem_usage":      r.Sample.Memory.UsagePercent(),
		"disk_usage":     r.Sample.AvgDiskUsage(),
		"procs_running":  r.Sample.Processes.Running,
		"severity_score": r.Weather.Score,
	}

	res, err := tx.Run(ctx, query, params)
	if err != nil {
		return "", err
	}
	rec, err := res.Single(ctx)
	if err != nil {
		return "", err
	}
	return rec.Values[0].(string), nil
}

func linkCondition(ctx context.Context, tx neo4j.ManagedTransaction, sampleElementID string, r *output.Report) error {
	query := `
		MATCH (s:Sample) WHERE elementId(s) = $sample_id
		MERGE (c:Condition {name: $name})
		CREATE (s)-[:CLASSIFIED_AS {score: $score}]->(c)
	`
	_, err := tx.Run(ctx, query, map[string]any{
		"sample_id": sampleElementID,
		"name":      r.Weather.Condition.String(),
		"score":     r.Weather.Score,
	})
	return err
}

func createInsights(ctx context.Context, tx neo4j.ManagedTransaction, sampleElementID string, r *output.Report) error {
	for _, in := range r.Analysis.Insights {
		query := `
			MATCH (s:Sample) WHERE elementId(s) = $sample_id
			CREATE (i:Insight {
				category: $category,
				severity: $severity,
				message: $message
			})
			CREATE (s)-[:RAISED]->(i)
		`
		params := map[string]any{
			"sample_id": sampleElementID,
			"category":  string(in.Category),
			"severity":  string(in.Severity),
			"message":   in.Message,
		}
		if _, err := tx.Run(ctx, query, params); err != nil {
			return err
		}
	}
	return nil
}

func createAlerts(ctx context.Context, tx neo4j.ManagedTransaction, sampleElementID string, r *output.Report) error {
	for _, a := range r.Alerts {
		query := `
			MATCH (s:Sample) WHERE elementId(s) = $sample_id
			MERGE (rule:AlertRule {metric: $metric, level: $level})
			CREATE (s)-[:FIRED {value: $value, message: $message}]->(rule)
		`
		params := map[string]any{
			"sample_id": sampleElementID,
			"metric":    a.Metric,
			"level":     string(a.Level),
			"value":     a.Value,
			"message":   a.Message,
		}
		if _, err := tx.Run(ctx, query, params); err != nil {
			return err
		}
	}
	return nil
}
