package client

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/mcpjungle/mcphost/pkg/types"
)

// ListEvents returns the latest dispatch events, newest first.
// kind and serverID are optional filters. A non-positive limit uses the server's default.
func (c *Client) ListEvents(kind, serverID string, limit int) ([]*types.DispatchEvent, error) {
	q := url.Values{}
	if kind != "" {
		q.Set("kind", kind)
	}
	if serverID != "" {
		q.Set("server_id", serverID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var events []*types.DispatchEvent
	if err := c.do(http.MethodGet, "/events", q, nil, http.StatusOK, &events); err != nil {
		return nil, err
	}
	return events, nil
}
