// Package mcpserver exposes the weather pipeline over the Model Context
// Protocol so AI assistants can query host conditions directly.
package mcpserver

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/option"

	"sysweather/internal/advisor"
	"sysweather/internal/archive"
	"sysweather/internal/collector"
	"sysweather/internal/graph"
	"sysweather/internal/history"
	"sysweather/internal/output"
	"sysweather/internal/rag"
	"sysweather/internal/sampler"
)

// Config holds configuration for the MCP server. The Gemini and Neo4j
// settings are optional; tools that need them report an error when absent.
type Config struct {
	ServerName    string
	ServerVersion string
	Hostname      string
	GeminiAPIKey  string
	GeminiModel   string // Model key: flash, pro, flash-2
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string

	// ResetGraph wipes the session graph before serving, for recovery
	// after a schema change or a corrupted ingest.
	ResetGraph bool
}

// Server wraps the MCP server with the weather pipeline.
type Server struct {
	mcpServer *mcp.Server
	provider  collector.MetricsProvider
	hist      *history.Rolling
	engine    *advisor.Engine
	repo      *archive.Repo
	hostname  string

	graphClient  graph.Client
	ragEngine    *rag.Engine
	geminiClient *genai.Client

	// smp drives the background graph/archive mirror when a graph store
	// is configured.
	smp *sampler.Sampler
}

// NewServer creates a new MCP server instance. repo may be nil when the
// archive is disabled.
func NewServer(cfg Config, provider collector.MetricsProvider, hist *history.Rolling, engine *advisor.Engine, repo *archive.Repo) (*Server, error) {
	if provider == nil {
		return nil, fmt.Errorf("mcpserver: nil provider")
	}
	if hist == nil {
		hist = history.NewRolling(history.DefaultCapacity)
	}
	if engine == nil {
		engine = advisor.NewEngine()
	}

	s := &Server{
		provider: provider,
		hist:     hist,
		engine:   engine,
		repo:     repo,
		hostname: cfg.Hostname,
	}
	if s.hostname == "" {
		if name, err := os.Hostname(); err == nil {
			s.hostname = name
		} else {
			s.hostname = "unknown"
		}
	}

	if cfg.Neo4jURI != "" {
		graphClient, err := graph.NewNeo4jClient(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to create neo4j client: %w", err)
		}
		s.graphClient = graphClient

		if cfg.ResetGraph {
			resetCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := s.resetGraph(resetCtx)
			cancel()
			if err != nil {
				_ = graphClient.Close(context.Background())
				return nil, fmt.Errorf("failed to reset graph: %w", err)
			}
		}

		if cfg.GeminiAPIKey != "" {
			geminiClient, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
			if err != nil {
				_ = graphClient.Close(context.Background())
				return nil, fmt.Errorf("failed to create gemini client: %w", err)
			}
			s.geminiClient = geminiClient
			s.ragEngine = rag.NewEngine(graphClient, geminiClient, cfg.GeminiModel)
		}
	}

	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}
	s.mcpServer = mcp.NewServer(impl, nil)
	s.registerTools()

	if s.graphClient != nil {
		smp, err := sampler.New(s.provider, s.hist, 30*time.Second, s.mirrorSample, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create ingest sampler: %w", err)
		}
		s.smp = smp

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := s.smp.PullOnce(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: initial ingest failed: %v\n", err)
		}
		cancel()
		if err := s.smp.Start(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: background ingest disabled: %v\n", err)
		}
	}

	return s, nil
}

// resetGraph wipes every node and relationship in the session graph.
func (s *Server) resetGraph(ctx context.Context) error {
	if s.graphClient == nil {
		return nil
	}
	return s.graphClient.Reset(ctx)
}

// WeatherReportArgs defines the input for the get_weather_report tool.
type WeatherReportArgs struct {
	Focus string `json:"focus,omitempty" jsonschema:"analysis focus: cpu, memory, network, productivity or empty for all"`
}

// MetricsArgs defines the input for the get_realtime_metrics tool.
type MetricsArgs struct{}

// SampleHistoryArgs defines the input for the get_sample_history tool.
type SampleHistoryArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of archived samples to return"`
}

// SampleHistoryResult wraps archived sample rows.
type SampleHistoryResult struct {
	Samples []archive.Record `json:"samples" jsonschema:"archived samples, newest first"`
}

// AskAdvisorArgs defines the input for the ask_advisor tool.
type AskAdvisorArgs struct {
	Question string `json:"question" jsonschema:"the question to ask about host health"`
}

// AskAdvisorResult defines the output for the ask_advisor tool.
type AskAdvisorResult struct {
	Answer string `json:"answer" jsonschema:"AI-generated answer"`
}

// QueryGraphArgs defines the input for the query_graph tool.
type QueryGraphArgs struct {
	Cypher string `json:"cypher" jsonschema:"Cypher query to execute"`
}

// QueryGraphResult wraps graph query results.
type QueryGraphResult struct {
	Data any `json:"data" jsonschema:"query results"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_weather_report",
		Description: "Collect a fresh sample and return the full weather report: condition, severity score, alerts, insights, suggestions and predictions. Use this for a complete picture of current host health.",
	}, s.handleWeatherReport)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_realtime_metrics",
		Description: "Get the absolute latest metrics directly from sensors. Returns CPU, memory, disk, network and process information without analysis.",
	}, s.handleRealtimeMetrics)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_sample_history",
		Description: "Query archived samples for time-series analysis and trend identification. Returns per-sample usage percentages, conditions and severity scores, newest first.",
	}, s.handleSampleHistory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "ask_advisor",
		Description: "Ask complex questions about host health, performance issues and root causes using AI-powered graph analysis. Use this for 'why' questions and causal reasoning.",
	}, s.handleAskAdvisor)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "query_graph",
		Description: "Execute Cypher queries directly on the session graph. Available nodes: Host, Sample, Condition, Insight, AlertRule.",
	}, s.handleQueryGraph)
}

func (s *Server) handleWeatherReport(ctx context.Context, _ *mcp.CallToolRequest, args WeatherReportArgs) (*mcp.CallToolResult, *output.Report, error) {
	focus, err := advisor.ParseFocus(args.Focus)
	if err != nil {
		return nil, nil, err
	}

	report, err := output.RunOnce(ctx, s.provider, s.hist, s.engine, focus)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build report: %w", err)
	}

	if s.repo != nil {
		if _, err := s.repo.Insert(ctx, &report.Sample, report.Weather); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: archive insert failed: %v\n", err)
		}
	}
	return nil, report, nil
}

func (s *Server) handleRealtimeMetrics(ctx context.Context, _ *mcp.CallToolRequest, _ MetricsArgs) (*mcp.CallToolResult, *collector.Sample, error) {
	sample, err := s.provider.Snapshot(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	return nil, sample, nil
}

func (s *Server) handleSampleHistory(ctx context.Context, _ *mcp.CallToolRequest, args SampleHistoryArgs) (*mcp.CallToolResult, SampleHistoryResult, error) {
	if s.repo == nil {
		return nil, SampleHistoryResult{}, fmt.Errorf("sample archive is disabled")
	}

	limit := args.Limit
	if limit == 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	records, err := s.repo.Query(ctx, limit)
	if err != nil {
		return nil, SampleHistoryResult{}, fmt.Errorf("failed to query samples: %w", err)
	}
	return nil, SampleHistoryResult{Samples: records}, nil
}

func (s *Server) handleAskAdvisor(ctx context.Context, _ *mcp.CallToolRequest, args AskAdvisorArgs) (*mcp.CallToolResult, AskAdvisorResult, error) {
	if s.ragEngine == nil {
		return nil, AskAdvisorResult{}, fmt.Errorf("ask_advisor requires Neo4j and a Gemini API key to be configured")
	}

	answer, err := s.ragEngine.Query(ctx, args.Question)
	if err != nil {
		return nil, AskAdvisorResult{}, fmt.Errorf("RAG query failed: %w", err)
	}
	return nil, AskAdvisorResult{Answer: answer}, nil
}

func (s *Server) handleQueryGraph(ctx context.Context, _ *mcp.CallToolRequest, args QueryGraphArgs) (*mcp.CallToolResult, QueryGraphResult, error) {
	if s.graphClient == nil {
		return nil, QueryGraphResult{}, fmt.Errorf("query_graph requires Neo4j to be configured")
	}

	result, err := s.graphClient.ExecuteCypher(ctx, args.Cypher)
	if err != nil {
		return nil, QueryGraphResult{}, fmt.Errorf("cypher query failed: %w", err)
	}
	return nil, QueryGraphResult{Data: result}, nil
}

// Start runs the MCP server over stdio until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	fmt.Fprintf(os.Stderr, "Starting sysweather MCP server on stdio...\n")
	transport := &mcp.StdioTransport{}
	return s.mcpServer.Run(ctx, transport)
}

// Close cleans up resources.
func (s *Server) Close(ctx context.Context) error {
	if s.smp != nil {
		s.smp.Stop()
	}

	if s.geminiClient != nil {
		s.geminiClient.Close()
	}
	if s.graphClient != nil {
		// Graph data is preserved between sessions.
		_ = s.graphClient.Close(ctx)
	}
	return nil
}

// mirrorSample classifies an already appended sample and mirrors the
// resulting report into the graph and archive. Runs from the sampler
// callback, so failures are reported but never stop the loop.
func (s *Server) mirrorSample(sample *collector.Sample) {
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	report := output.Build(sample, s.hist, s.engine, advisor.FocusAll)

	if s.repo != nil {
		if _, err := s.repo.Insert(ctx, sample, report.Weather); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: archive insert failed: %v\n", err)
		}
	}

	if err := s.graphClient.IngestReport(ctx, s.hostname, &report); err != nil {
		fmt.Fprintf(os.Stderr, "Background ingest failed: %v\n", err)
	}
}
