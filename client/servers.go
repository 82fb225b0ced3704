package client

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mcpjungle/mcphost/pkg/types"
)

// ListServersOptions narrows down ListServers. Zero values are not sent.
type ListServersOptions struct {
	Tags []string
	Name string
	// IncludeInactive also returns servers whose heartbeat has expired.
	IncludeInactive bool
}

// RegisterServer registers a new server and returns its id.
func (c *Client) RegisterServer(in *types.RegisterServerInput) (string, error) {
	var res types.RegisterServerResult
	if err := c.do(http.MethodPost, "/servers", nil, in, http.StatusCreated, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

// UnregisterServer removes a server and returns the tools that lost it as a routing candidate.
func (c *Client) UnregisterServer(id string) (*types.UnregisterServerResult, error) {
	var res types.UnregisterServerResult
	if err := c.do(http.MethodDelete, "/servers/"+id, nil, nil, http.StatusOK, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetServer fetches a single server.
func (c *Client) GetServer(id string) (*types.Server, error) {
	var s types.Server
	if err := c.do(http.MethodGet, "/servers/"+id, nil, nil, http.StatusOK, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListServers lists the servers matching the options.
func (c *Client) ListServers(opts *ListServersOptions) ([]*types.Server, error) {
	q := url.Values{}
	if opts != nil {
		if len(opts.Tags) > 0 {
			q.Set("tags", strings.Join(opts.Tags, ","))
		}
		if opts.Name != "" {
			q.Set("name", opts.Name)
		}
		if opts.IncludeInactive {
			q.Set("active_only", strconv.FormatBool(false))
		}
	}

	var servers []*types.Server
	if err := c.do(http.MethodGet, "/servers", q, nil, http.StatusOK, &servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// Heartbeat signals that a server is alive.
func (c *Client) Heartbeat(id string) (*types.HeartbeatResult, error) {
	var res types.HeartbeatResult
	if err := c.do(http.MethodPost, "/servers/"+id+"/heartbeat", nil, nil, http.StatusOK, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetLoad returns the number of in-flight requests on a server.
func (c *Client) GetLoad(id string) (int, error) {
	var res struct {
		Load int `json:"load"`
	}
	if err := c.do(http.MethodGet, "/servers/"+id+"/load", nil, nil, http.StatusOK, &res); err != nil {
		return 0, err
	}
	return res.Load, nil
}
