// Command mcp-client is an interactive REPL against the sysweather MCP
// server, useful for exercising the tools without an AI assistant.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: mcp-client <server-command> [<args>]")
		fmt.Fprintln(os.Stderr, "Example: mcp-client sysweather mcp")
		os.Exit(2)
	}

	ctx := context.Background()

	cmd := exec.Command(args[0], args[1:]...)
	transport := &mcp.CommandTransport{Command: cmd}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "sysweather-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer session.Close()

	fmt.Println("Connected to sysweather MCP server!")
	fmt.Println("Available commands:")
	fmt.Println("  /tools           - List available tools")
	fmt.Println("  /report [focus]  - Get the full weather report")
	fmt.Println("  /metrics         - Get raw realtime metrics")
	fmt.Println("  /history [limit] - Get archived samples")
	fmt.Println("  /graph <cypher>  - Execute Cypher query")
	fmt.Println("  /exit            - Exit the client")
	fmt.Println("  <question>       - Ask the AI advisor")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch {
		case input == "/exit":
			fmt.Println("Goodbye!")
			return

		case input == "/tools":
			listTools(ctx, session)

		case strings.HasPrefix(input, "/report"):
			args := map[string]any{}
			if parts := strings.Fields(input); len(parts) > 1 {
				args["focus"] = parts[1]
			}
			callTool(ctx, session, "get_weather_report", args)

		case input == "/metrics":
			callTool(ctx, session, "get_realtime_metrics", map[string]any{})

		case strings.HasPrefix(input, "/history"):
			args := map[string]any{}
			if parts := strings.Fields(input); len(parts) > 1 {
				if n, err := strconv.Atoi(parts[1]); err == nil {
					args["limit"] = n
				}
			}
			callTool(ctx, session, "get_sample_history", args)

		case strings.HasPrefix(input, "/graph "):
			cypher := strings.TrimPrefix(input, "/graph ")
			callTool(ctx, session, "query_graph", map[string]any{
				"cypher": cypher,
			})

		default:
			callTool(ctx, session, "ask_advisor", map[string]any{
				"question": input,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Scanner error: %v", err)
	}
}

func listTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("Available Tools:")
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			log.Printf("Error listing tools: %v", err)
			return
		}
		fmt.Printf("  - %s: %s\n", tool.Name, tool.Description)
	}
	fmt.Println()
}

func callTool(ctx context.Context, session *mcp.ClientSession, toolName string, args map[string]any) {
	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		log.Printf("Error calling tool: %v", err)
		return
	}
	printResult(result)
}

func printResult(result *mcp.CallToolResult) {
	if result.IsError {
		fmt.Printf("error: ")
	}

	for _, content := range result.Content {
		switch v := content.(type) {
		case *mcp.TextContent:
			fmt.Println(v.Text)
		default:
			jsonData, err := json.MarshalIndent(content, "", "  ")
			if err != nil {
				fmt.Printf("%+v\n", content)
			} else {
				fmt.Println(string(jsonData))
			}
		}
	}
	fmt.Println()
}
