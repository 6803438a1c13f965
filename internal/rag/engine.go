// Package rag answers natural language questions about the host by
// retrieving context from the session graph and synthesizing with Gemini.
package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"sysweather/internal/graph"
)

// ModelConfig defines configuration for a Gemini model.
type ModelConfig struct {
	Name        string
	Temperature float32
	TopP        float32
	TopK        int32
}

// AvailableModels maps the short model keys accepted by the config file to
// concrete Gemini models.
var AvailableModels = map[string]ModelConfig{
	"flash": {
		Name:        "gemini-flash-latest",
		Temperature: 0.7,
		TopP:        0.95,
		TopK:        40,
	},
	"pro": {
		Name:        "gemini-pro-latest",
		Temperature: 0.7,
		TopP:        0.95,
		TopK:        40,
	},
	"flash-2": {
		Name:        "gemini-2.0-flash",
		Temperature: 0.7,
		TopP:        0.95,
		TopK:        40,
	},
}

// Engine handles retrieval augmented generation over the session graph.
type Engine struct {
	graphClient  graph.Client
	geminiClient *genai.Client
	config       ModelConfig
}

// NewEngine constructs an engine over the given graph and Gemini clients.
// Unknown model keys fall back to the flash model.
func NewEngine(graphClient graph.Client, gemini *genai.Client, modelKey string) *Engine {
	config, ok := AvailableModels[modelKey]
	if !ok {
		config = AvailableModels["flash"]
	}
	return &Engine{
		graphClient:  graphClient,
		geminiClient: gemini,
		config:       config,
	}
}

func (e *Engine) getModel() *genai.GenerativeModel {
	model := e.geminiClient.GenerativeModel(e.config.Name)
	model.SetTemperature(e.config.Temperature)
	model.SetTopP(e.config.TopP)
	model.SetTopK(e.config.TopK)
	return model
}

// Query answers a question about the host using graph context.
func (e *Engine) Query(ctx context.Context, question string) (string, error) {
	cypher, err := e.generateCypher(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to generate cypher: %w", err)
	}

	graphData, err := e.graphClient.ExecuteCypher(ctx, cypher)
	if err != nil || len(graphData) == 0 {
		// Fall back to a broad query over the latest samples.
		cypher = `
			MATCH (h:Host)-[:HAS_SAMPLE]->(s:Sample)
			OPTIONAL MATCH (s)-[:CLASSIFIED_AS]->(c:Condition)
			OPTIONAL MATCH (s)-[:RAISED]->(i:Insight)
			OPTIONAL MATCH (s)-[:FIRED]->(a:AlertRule)
			WITH h, s,
				 collect(DISTINCT c.name) as conditions,
				 collect(DISTINCT {category: i.category, severity: i.severity, message: i.message}) as insights,
				 collect(DISTINCT {metric: a.metric, level: a.level}) as alerts
			RETURN h.hostname as host,
				   s.sampled_at as sampled_at,
				   s.cpu_usage_pct as cpu_pct,
				   s.mem_usage_pct as mem_pct,
				   s.severity_score as severity_score,
				   conditions,
				   insights,
				   alerts
			ORDER BY s.sampled_at DESC
			LIMIT 5
		`
		graphData, err = e.graphClient.ExecuteCypher(ctx, cypher)
		if err != nil {
			return "", fmt.Errorf("failed to execute graph query: %w", err)
		}
	}

	answer, err := e.synthesizeAnswer(ctx, question, graphData)
	if err != nil {
		return "", fmt.Errorf("failed to synthesize answer: %w", err)
	}
	return answer, nil
}

func (e *Engine) generateCypher(ctx context.Context, question string) (string, error) {
	model := e.getModel()

	prompt := fmt.Sprintf(`You are a Neo4j Cypher query expert. Convert the following question into a Cypher query for a host telemetry graph database.

Graph Schema:
- Nodes: Host, Sample, Condition, Insight, AlertRule
- Relationships:
  - (Host)-[:HAS_SAMPLE]->(Sample)
  - (Sample)-[:CLASSIFIED_AS {score}]->(Condition)
  - (Sample)-[:RAISED]->(Insight)
  - (Sample)-[:FIRED {value, message}]->(AlertRule)

Sample properties: sample_id, sampled_at, cpu_usage_pct, mem_usage_pct, disk_usage_pct, procs_running, severity_score
Condition properties: name (e.g., "sunny", "cloudy", "stormy")
Insight properties: category, severity, message
AlertRule properties: metric, level

Question: %s

Return ONLY the Cypher query, no explanation. Limit results to 10.`, question)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	cypher := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	return cleanCypherQuery(cypher), nil
}

func (e *Engine) synthesizeAnswer(ctx context.Context, question string, graphData []map[string]any) (string, error) {
	model := e.getModel()

	graphJSON, err := json.MarshalIndent(graphData, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`You are a system health expert. Answer the following question based on the graph database results.

Question: %s

Graph Data (from Neo4j):
%s

Provide a clear, concise answer explaining:
1. What the data shows
2. Root causes if applicable
3. Severity and impact
4. Recommended actions if relevant

If the graph data is empty or insufficient, say so clearly.`, question, string(graphJSON))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "Unable to generate response from the available data.", nil
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// cleanCypherQuery removes markdown code block markers from a model reply.
func cleanCypherQuery(query string) string {
	query = strings.TrimSpace(query)
	query = strings.TrimPrefix(query, "```cypher")
	query = strings.TrimPrefix(query, "```")
	query = strings.TrimSuffix(query, "```")
	return strings.TrimSpace(query)
}
