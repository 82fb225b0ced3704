package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpjungle/mcphost/internal/service/router"
)

const (
	routeToolName    = "route_tool"
	completeToolName = "complete_tool"
)

// registerMetaTools exposes routing over MCP so agents can ask the directory where to send a tool call.
func (s *Server) registerMetaTools() {
	strategies := make([]string, len(router.Strategies))
	for i, st := range router.Strategies {
		strategies[i] = string(st)
	}

	routeTool := mcp.NewTool(routeToolName,
		mcp.WithDescription("Pick a live server to handle a request for the given tool. "+
			"Report the call back with complete_tool once it has finished."),
		mcp.WithString("tool",
			mcp.Required(),
			mcp.Description("Name of the tool to route"),
		),
		mcp.WithString("strategy",
			mcp.Description("Server selection strategy, defaults to round_robin"),
			mcp.Enum(strategies...),
		),
	)
	s.mcpServer.AddTool(routeTool, s.handleRouteTool)

	completeTool := mcp.NewTool(completeToolName,
		mcp.WithDescription("Report that a request previously routed to a server has finished"),
		mcp.WithString("server_id",
			mcp.Required(),
			mcp.Description("Id of the server that handled the request"),
		),
	)
	s.mcpServer.AddTool(completeTool, s.handleCompleteTool)
}

func (s *Server) handleRouteTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tool, err := request.RequireString("tool")
	if err != nil {
		return mcp.NewToolResultError("tool argument is required"), nil
	}
	strategy := routingStrategy(request.GetString("strategy", ""))

	server, err := s.host.Route(ctx, tool, strategy)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	jsonData, err := json.Marshal(toRouteResult(server, string(strategy)))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format routing result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (s *Server) handleCompleteTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	serverID, err := request.RequireString("server_id")
	if err != nil {
		return mcp.NewToolResultError("server_id argument is required"), nil
	}
	s.host.Complete(ctx, serverID)
	return mcp.NewToolResultText(fmt.Sprintf("completion recorded for server %s", serverID)), nil
}
