package client

import (
	"net/http"

	"github.com/mcpjungle/mcphost/pkg/types"
)

// Route asks the server which server should handle a request for the named tool.
// An empty strategy lets the server pick its default.
// Use IsToolNotFound and IsServerNotFound to tell the two failure modes apart.
func (c *Client) Route(tool, strategy string) (*types.RouteResult, error) {
	var res types.RouteResult
	req := &types.RouteRequest{Tool: tool, Strategy: strategy}
	if err := c.do(http.MethodPost, "/route", nil, req, http.StatusOK, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Complete reports that a request routed to the server has finished.
func (c *Client) Complete(serverID string) error {
	req := &types.CompleteRequest{ServerID: serverID}
	return c.do(http.MethodPost, "/complete", nil, req, http.StatusNoContent, nil)
}

// ToolServers returns the routing candidates of a tool name in rotation order.
func (c *Client) ToolServers(tool string) ([]string, error) {
	var ids []string
	if err := c.do(http.MethodGet, "/routes/"+tool, nil, nil, http.StatusOK, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
