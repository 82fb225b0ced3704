package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpjungle/mcphost/internal/db"
	"github.com/mcpjungle/mcphost/internal/migrations"
	"github.com/mcpjungle/mcphost/internal/service/audit"
	"github.com/mcpjungle/mcphost/internal/service/host"
	"github.com/mcpjungle/mcphost/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	conn, err := db.NewDBConnection("")
	require.NoError(t, err)
	require.NoError(t, migrations.Migrate(conn))
	events := audit.NewLog(conn, zap.NewNop())

	cfg := host.DefaultConfig()
	cfg.Recorder = events
	h, err := host.New(cfg)
	require.NoError(t, err)

	s, err := NewServer(&ServerOptions{Port: "0", Host: h, Events: events})
	require.NoError(t, err)
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func registerServer(t *testing.T, s *Server, name string, port int) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/servers", types.RegisterServerInput{
		Name: name, Host: "10.0.0.1", Port: port, Tags: []string{"math"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[types.RegisterServerResult](t, w).ID
}

func registerTool(t *testing.T, s *Server, name, serverID string) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/tools", types.RegisterToolInput{
		Name:         name,
		ServerID:     serverID,
		Tags:         []string{"math"},
		InputSchema:  map[string]any{"type": "object"},
		OutputSchema: map[string]any{"type": "object"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[types.RegisterToolResult](t, w).ID
}

func TestHealthAndMetadata(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/metadata", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[types.ServerMetadata](t, w).Version)

	w = doJSON(t, s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "metrics are only served when telemetry is enabled")
}

func TestServerEndpoints(t *testing.T) {
	s := newTestServer(t)
	id := registerServer(t, s, "calc", 9000)

	w := doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/servers/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[types.Server](t, w)
	assert.Equal(t, "calc", got.Name)
	assert.Equal(t, "10.0.0.1:9000", got.Address)
	assert.Equal(t, []string{"math"}, got.Tags)
	assert.True(t, got.Active)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/servers?tags=math&name=CAL", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.Server](t, w), 1)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/servers?tags=math,other", nil)
	assert.Empty(t, decode[[]types.Server](t, w))

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/servers?active_only=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/servers/"+id+"/heartbeat", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode[types.HeartbeatResult](t, w).ID)

	registerTool(t, s, "sum", id)
	w = doJSON(t, s, http.MethodDelete, V0ApiPathPrefix+"/servers/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[types.UnregisterServerResult](t, w)
	assert.Equal(t, []string{"sum"}, res.ToolsAffected)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/servers/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/servers/"+id+"/heartbeat", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServerValidation(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/servers", types.RegisterServerInput{Name: "x", Host: "h"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, types.ErrorCodeInvalidRequest, decode[types.ErrorResponse](t, w).Code)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/servers/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/tools/srv_0a1b2c3d", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "server id used as a tool id")
}

func TestToolEndpoints(t *testing.T) {
	s := newTestServer(t)
	srv := registerServer(t, s, "calc", 9000)
	id := registerTool(t, s, "sum", srv)

	w := doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/tools/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tool := decode[types.Tool](t, w)
	assert.Equal(t, "sum", tool.Name)
	assert.Equal(t, srv, tool.ServerID)
	assert.Equal(t, "1.0.0", tool.Version)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/tools?name=SU&tags=math&server_id="+srv, nil)
	assert.Len(t, decode[[]types.Tool](t, w), 1)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/routes/sum", nil)
	assert.Equal(t, []string{srv}, decode[[]string](t, w))

	w = doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/tools", types.RegisterToolInput{
		Name:         "bad",
		InputSchema:  map[string]any{"type": "array"},
		OutputSchema: map[string]any{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodDelete, V0ApiPathPrefix+"/tools/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, s, http.MethodDelete, V0ApiPathPrefix+"/tools/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/routes/sum", nil)
	assert.Empty(t, decode[[]string](t, w))
}

func TestRouteAndComplete(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/route", types.RouteRequest{Tool: "sum"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, types.ErrorCodeToolNotFound, decode[types.ErrorResponse](t, w).Code)

	registerTool(t, s, "sum", "")
	w = doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/route", types.RouteRequest{Tool: "sum"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, types.ErrorCodeServerNotFound, decode[types.ErrorResponse](t, w).Code)

	s1 := registerServer(t, s, "one", 9001)
	s2 := registerServer(t, s, "two", 9002)
	registerTool(t, s, "sum", s1)
	registerTool(t, s, "sum", s2)

	var picked []string
	for i := 0; i < 3; i++ {
		w = doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/route", types.RouteRequest{Tool: "sum"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		res := decode[types.RouteResult](t, w)
		assert.Equal(t, "round_robin", res.Strategy)
		picked = append(picked, res.ServerID)
	}
	assert.Equal(t, []string{s1, s2, s1}, picked)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/servers/"+s1+"/load", nil)
	assert.Equal(t, float64(2), decode[map[string]any](t, w)["load"])

	w = doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/complete", types.CompleteRequest{ServerID: s1})
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/servers/"+s1+"/load", nil)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["load"])

	w = doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/route", types.RouteRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/complete", types.CompleteRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/route", types.RouteRequest{Tool: "sum", Strategy: "least_loaded"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, s2, decode[types.RouteResult](t, w).ServerID)
}

func TestEventsEndpoint(t *testing.T) {
	s := newTestServer(t)
	srv := registerServer(t, s, "calc", 9000)
	registerTool(t, s, "sum", srv)

	doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/route", types.RouteRequest{Tool: "sum", Strategy: "random"})
	doJSON(t, s, http.MethodPost, V0ApiPathPrefix+"/complete", types.CompleteRequest{ServerID: srv})
	doJSON(t, s, http.MethodDelete, V0ApiPathPrefix+"/servers/"+srv, nil)

	w := doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/events", nil)
	require.Equal(t, http.StatusOK, w.Code)
	events := decode[[]types.DispatchEvent](t, w)
	require.Len(t, events, 3)
	assert.Equal(t, "purge", events[0].Kind)
	assert.Equal(t, []string{"sum"}, events[0].AffectedTools)
	assert.Equal(t, "completion", events[1].Kind)
	assert.Equal(t, "route", events[2].Kind)
	assert.Equal(t, "random", events[2].Strategy)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/events?limit=1&kind=route", nil)
	events = decode[[]types.DispatchEvent](t, w)
	require.Len(t, events, 1)
	assert.Equal(t, "route", events[0].Kind)

	w = doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/events?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventsDisabled(t *testing.T) {
	h, err := host.New(host.DefaultConfig())
	require.NoError(t, err)
	s, err := NewServer(&ServerOptions{Host: h})
	require.NoError(t, err)

	w := doJSON(t, s, http.MethodGet, V0ApiPathPrefix+"/events", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNewServerRequiresHost(t *testing.T) {
	_, err := NewServer(&ServerOptions{})
	assert.Error(t, err)
}

func callToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func TestRouteMetaTool(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleRouteTool(ctx, callToolRequest(routeToolName, map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleRouteTool(ctx, callToolRequest(routeToolName, map[string]any{"tool": "sum"}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "unknown tool")

	srv := registerServer(t, s, "calc", 9000)
	registerTool(t, s, "sum", srv)

	result, err = s.handleRouteTool(ctx, callToolRequest(routeToolName, map[string]any{
		"tool": "sum", "strategy": "least_loaded",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)

	var routed types.RouteResult
	require.NoError(t, json.Unmarshal([]byte(text.Text), &routed))
	assert.Equal(t, srv, routed.ServerID)
	assert.Equal(t, "least_loaded", routed.Strategy)
	assert.Equal(t, 1, s.host.Load(srv))

	result, err = s.handleCompleteTool(ctx, callToolRequest(completeToolName, map[string]any{"server_id": srv}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, 0, s.host.Load(srv))

	result, err = s.handleCompleteTool(ctx, callToolRequest(completeToolName, nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{host.ErrToolNotFound, http.StatusNotFound, types.ErrorCodeToolNotFound},
		{host.ErrServerNotFound, http.StatusNotFound, types.ErrorCodeServerNotFound},
		{host.ErrRegistration, http.StatusBadRequest, types.ErrorCodeInvalidRequest},
		{host.ErrValidation, http.StatusBadRequest, types.ErrorCodeInvalidRequest},
		{host.ErrConfiguration, http.StatusInternalServerError, types.ErrorCodeInternal},
		{context.DeadlineExceeded, http.StatusInternalServerError, types.ErrorCodeInternal},
	}
	for _, tt := range tests {
		status, code := statusForError(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}
