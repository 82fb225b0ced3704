package client

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/mcpjungle/mcphost/pkg/types"
)

// ListToolsOptions narrows down ListTools. Zero values are not sent.
type ListToolsOptions struct {
	Name     string
	Tags     []string
	ServerID string
}

// RegisterTool registers a tool and returns its id.
func (c *Client) RegisterTool(in *types.RegisterToolInput) (string, error) {
	var res types.RegisterToolResult
	if err := c.do(http.MethodPost, "/tools", nil, in, http.StatusCreated, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

// UnregisterTool removes a tool from the catalog.
func (c *Client) UnregisterTool(id string) error {
	return c.do(http.MethodDelete, "/tools/"+id, nil, nil, http.StatusNoContent, nil)
}

// GetTool fetches a single tool.
func (c *Client) GetTool(id string) (*types.Tool, error) {
	var t types.Tool
	if err := c.do(http.MethodGet, "/tools/"+id, nil, nil, http.StatusOK, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTools lists the tools matching the options.
func (c *Client) ListTools(opts *ListToolsOptions) ([]*types.Tool, error) {
	q := url.Values{}
	if opts != nil {
		if opts.Name != "" {
			q.Set("name", opts.Name)
		}
		if len(opts.Tags) > 0 {
			q.Set("tags", strings.Join(opts.Tags, ","))
		}
		if opts.ServerID != "" {
			q.Set("server_id", opts.ServerID)
		}
	}

	var tools []*types.Tool
	if err := c.do(http.MethodGet, "/tools", q, nil, http.StatusOK, &tools); err != nil {
		return nil, err
	}
	return tools, nil
}
