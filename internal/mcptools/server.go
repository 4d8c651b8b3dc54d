package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewSceneMCPServer creates an MCP server with all scene index tools registered.
func NewSceneMCPServer(svc *SceneService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "scenegraph",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_index",
		Description: "Index a project's .tscn and .tres files. Discovers files through the configured path mappings, parses them with their external resources, records nodes and file dependencies, and computes file clusters.",
	}, svc.BuildIndex)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_scene",
		Description: "Parse a single scene or resource by virtual path (e.g. res://Main.tscn). Returns the node tree, properties, sub-resources and resolved external resources as JSON, or the node tree as a Mermaid diagram.",
	}, svc.ParseScene)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_nodes",
		Description: "Search indexed scene nodes by name or type substring. Optionally filter by exact node type and limit results.",
	}, svc.QueryNodes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependencies",
		Description: "Traverse file dependencies upstream (what a file references) or downstream (what references it). Returns dependency chains up to the specified depth.",
	}, svc.GetDependencies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "assess_impact",
		Description: "Compute the blast radius of modifying a set of files. Returns directly and transitively affected scenes with a risk score.",
	}, svc.AssessImpact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_clusters",
		Description: "Return all file clusters discovered during indexing. Clusters are groups of files connected through external resources, with cohesion scores.",
	}, svc.GetClusters)

	return server
}

// RunMCPServer starts an HTTP server exposing the scene index MCP tools.
func RunMCPServer(ctx context.Context, svc *SceneService, addr string) error {
	server := NewSceneMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// RunMCPServerStdio runs the MCP server on stdio transport, blocking until
// stdin is closed or the context is cancelled.
func RunMCPServerStdio(ctx context.Context, svc *SceneService) error {
	return NewSceneMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}
