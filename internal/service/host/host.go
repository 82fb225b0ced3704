// Package host composes the tool registry, the server directory and the router
// into a single capability directory with a background liveness reconciliation loop.
package host

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mcpjungle/mcphost/internal/model"
	"github.com/mcpjungle/mcphost/internal/service/discovery"
	"github.com/mcpjungle/mcphost/internal/service/registry"
	"github.com/mcpjungle/mcphost/internal/service/router"
	"github.com/mcpjungle/mcphost/internal/telemetry"
	"go.uber.org/zap"
)

const (
	DefaultHeartbeatTimeout  = 300 * time.Second
	DefaultReconcileInterval = 60 * time.Second
	DefaultErrorBackoff      = 10 * time.Second
)

// EventRecorder persists dispatch history.
type EventRecorder interface {
	Record(ctx context.Context, e *model.DispatchEvent) error
}

// Config holds the parameters for creating a Host.
type Config struct {
	// HeartbeatTimeout is how long a server may go without a heartbeat before it is considered dead.
	HeartbeatTimeout time.Duration
	// ReconcileInterval is the pause between two reconciliation passes.
	ReconcileInterval time.Duration
	// ErrorBackoff is the pause after a reconciliation pass that failed.
	ErrorBackoff time.Duration

	Logger   *zap.Logger
	Metrics  telemetry.CustomMetrics
	Recorder EventRecorder

	// Clock overrides the time source, mostly useful in tests.
	Clock func() time.Time
}

// DefaultConfig returns a Config with the default durations.
func DefaultConfig() *Config {
	return &Config{
		HeartbeatTimeout:  DefaultHeartbeatTimeout,
		ReconcileInterval: DefaultReconcileInterval,
		ErrorBackoff:      DefaultErrorBackoff,
	}
}

// Validate checks that every duration is positive.
func (c *Config) Validate() error {
	if c.HeartbeatTimeout <= 0 {
		return fmt.Errorf("%w: heartbeat timeout must be positive, got %s", ErrConfiguration, c.HeartbeatTimeout)
	}
	if c.ReconcileInterval <= 0 {
		return fmt.Errorf("%w: reconcile interval must be positive, got %s", ErrConfiguration, c.ReconcileInterval)
	}
	if c.ErrorBackoff <= 0 {
		return fmt.Errorf("%w: error backoff must be positive, got %s", ErrConfiguration, c.ErrorBackoff)
	}
	return nil
}

// Host is the capability directory.
// It keeps the tool catalog, the server directory and the routing state consistent with each other.
// A single mutex serializes every operation on the three, so each call observes and leaves a consistent view.
type Host struct {
	mu      sync.Mutex
	tools   *registry.ToolRegistry
	servers *discovery.ServiceDiscovery
	router  *router.Router

	reconcileInterval time.Duration
	errorBackoff      time.Duration

	logger   *zap.Logger
	metrics  telemetry.CustomMetrics
	recorder EventRecorder

	// loopMu guards the lifecycle of the reconciliation loop.
	loopMu sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Host from the given configuration.
func New(c *Config) (*Host, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var opts []discovery.Option
	if c.Clock != nil {
		opts = append(opts, discovery.WithClock(c.Clock))
	}
	servers := discovery.New(c.HeartbeatTimeout, opts...)

	h := &Host{
		tools:             registry.New(),
		servers:           servers,
		router:            router.New(servers),
		reconcileInterval: c.ReconcileInterval,
		errorBackoff:      c.ErrorBackoff,
		logger:            c.Logger,
		metrics:           c.Metrics,
		recorder:          c.Recorder,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.metrics == nil {
		h.metrics = telemetry.NewNoopCustomMetrics()
	}
	return h, nil
}

// RegisterServer validates and adds a server to the directory, returning its id.
func (h *Host) RegisterServer(in discovery.RegisterInput) (string, error) {
	if in.Name == "" {
		return "", fmt.Errorf("%w: server name is required", ErrRegistration)
	}
	if in.Host == "" {
		return "", fmt.Errorf("%w: server host is required", ErrRegistration)
	}
	if in.Port < 1 || in.Port > 65535 {
		return "", fmt.Errorf("%w: server port must be between 1 and 65535, got %d", ErrRegistration, in.Port)
	}

	h.mu.Lock()
	id := h.servers.Register(in)
	h.mu.Unlock()

	h.logger.Info("registered server",
		zap.String("server_id", id),
		zap.String("name", in.Name),
		zap.String("host", in.Host),
		zap.Int("port", in.Port),
	)
	return id, nil
}

// UnregisterServer removes a server from the directory after cutting it out of every routing mapping.
// It returns the names of the tools that lost the server as a candidate, and false if the server is unknown.
// Tool records owned by the server stay in the catalog.
func (h *Host) UnregisterServer(ctx context.Context, id string) ([]string, bool) {
	h.mu.Lock()
	if _, ok := h.servers.Get(id); !ok {
		h.mu.Unlock()
		return nil, false
	}
	affected := h.router.RemoveServer(id)
	h.servers.Unregister(id)
	h.mu.Unlock()

	h.logger.Info("unregistered server", zap.String("server_id", id), zap.Strings("affected_tools", affected))
	if len(affected) > 0 {
		if err := h.recordPurge(ctx, id, affected); err != nil {
			h.logger.Error("failed to record unregistration", zap.String("server_id", id), zap.Error(err))
		}
	}
	return affected, true
}

// Heartbeat refreshes a server's liveness. It returns false if the server is unknown.
func (h *Host) Heartbeat(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.servers.Heartbeat(id)
}

// GetServer returns the server with the given id.
func (h *Host) GetServer(id string) (model.Server, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.servers.Get(id)
}

// ListServers returns all servers, or only live ones when activeOnly is set.
func (h *Host) ListServers(activeOnly bool) []model.Server {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.servers.All(activeOnly)
}

// FindServers returns servers carrying all the given tags whose name contains the given substring.
func (h *Host) FindServers(tags []string, name string, activeOnly bool) []model.Server {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.servers.Find(tags, name, activeOnly)
}

// RegisterTool validates and adds a tool to the catalog, returning its id.
// If the tool names an owning server, that server becomes a routing candidate for the tool's name.
func (h *Host) RegisterTool(tool model.Tool) (string, error) {
	if tool.Name == "" {
		return "", fmt.Errorf("%w: tool name is required", ErrRegistration)
	}
	if err := validateSchema("input", tool.InputSchema); err != nil {
		return "", err
	}
	if err := validateSchema("output", tool.OutputSchema); err != nil {
		return "", err
	}

	h.mu.Lock()
	if tool.ServerID != "" {
		if _, ok := h.servers.Get(tool.ServerID); !ok {
			h.mu.Unlock()
			return "", fmt.Errorf("%w: server %s does not exist", ErrRegistration, tool.ServerID)
		}
	}
	id := h.tools.Register(tool)
	if tool.ServerID != "" {
		h.router.UpdateMapping(tool.Name, tool.ServerID)
	}
	h.mu.Unlock()

	h.logger.Info("registered tool",
		zap.String("tool_id", id),
		zap.String("name", tool.Name),
		zap.String("server_id", tool.ServerID),
	)
	return id, nil
}

// UnregisterTool removes a tool from the catalog. It returns false if the tool is unknown.
// The owning server stops being a routing candidate for the tool's name unless
// it still offers another tool with the same name.
func (h *Host) UnregisterTool(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	tool, ok := h.tools.Get(id)
	if !ok {
		return false
	}
	h.tools.Unregister(id)

	if tool.ServerID != "" && !h.serverOffers(tool.ServerID, tool.Name) {
		h.router.RemoveMapping(tool.Name, tool.ServerID)
	}
	h.logger.Info("unregistered tool", zap.String("tool_id", id), zap.String("name", tool.Name))
	return true
}

// serverOffers reports whether the catalog still holds a tool with the given name on the server.
// Callers must hold h.mu.
func (h *Host) serverOffers(serverID, name string) bool {
	for _, t := range h.tools.ToolsForServer(serverID) {
		if t.Name == name {
			return true
		}
	}
	return false
}

// GetTool returns the tool with the given id.
func (h *Host) GetTool(id string) (model.Tool, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tools.Get(id)
}

// FindTools returns the tools matching every criterion of the query.
func (h *Host) FindTools(q registry.Query) []model.Tool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tools.Find(q)
}

// ToolServers returns the routing candidates of a tool name in rotation order.
func (h *Host) ToolServers(tool string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.router.ToolServers(tool)
}

// Load returns the number of in-flight requests on a server.
func (h *Host) Load(serverID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.router.Load(serverID)
}

// Route picks a live server to handle a request for the named tool.
// It returns ErrToolNotFound if no tool in the catalog matches the name,
// and ErrServerNotFound if the tool exists but none of its servers is live.
func (h *Host) Route(ctx context.Context, toolName string, strategy router.Strategy) (model.Server, error) {
	h.mu.Lock()
	known := len(h.tools.Find(registry.Query{NameContains: toolName})) > 0
	var (
		server model.Server
		ok     bool
	)
	if known {
		server, ok = h.router.Select(toolName, strategy)
	}
	h.mu.Unlock()

	if !known {
		h.metrics.RecordRoute(ctx, strategyLabel(strategy), telemetry.RouteOutcomeToolNotFound)
		return model.Server{}, fmt.Errorf("%w: %s", ErrToolNotFound, toolName)
	}
	if !ok {
		h.metrics.RecordRoute(ctx, strategyLabel(strategy), telemetry.RouteOutcomeServerNotFound)
		h.logger.Warn("no live server for tool", zap.String("tool", toolName))
		return model.Server{}, fmt.Errorf("%w: for tool %s", ErrServerNotFound, toolName)
	}

	h.metrics.RecordRoute(ctx, strategyLabel(strategy), telemetry.RouteOutcomeSuccess)
	h.logger.Debug("routed tool request",
		zap.String("tool", toolName),
		zap.String("server_id", server.ID),
		zap.String("strategy", string(strategy)),
	)
	h.record(ctx, model.NewRouteEvent(toolName, server.ID, string(strategy)))
	return server, nil
}

// strategyLabel bounds the metric label to the known strategies.
// Unknown values are served by the router's fallback and counted as "default".
func strategyLabel(s router.Strategy) string {
	if s.Valid() {
		return string(s)
	}
	return "default"
}

// Complete reports that a request previously routed to the server has finished.
func (h *Host) Complete(ctx context.Context, serverID string) {
	h.mu.Lock()
	h.router.RecordCompletion(serverID)
	h.mu.Unlock()

	h.metrics.RecordCompletion(ctx)
	h.record(ctx, model.NewCompletionEvent(serverID))
}

// record writes a dispatch event. Failures are logged and otherwise ignored
// because history must never fail a routing call.
func (h *Host) record(ctx context.Context, e *model.DispatchEvent) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.Record(ctx, e); err != nil {
		h.logger.Error("failed to record dispatch event",
			zap.String("kind", string(e.Kind)),
			zap.String("server_id", e.ServerID),
			zap.Error(err),
		)
	}
}

func (h *Host) recordPurge(ctx context.Context, serverID string, affected []string) error {
	if h.recorder == nil {
		return nil
	}
	e, err := model.NewPurgeEvent(serverID, affected)
	if err != nil {
		return err
	}
	return h.recorder.Record(ctx, e)
}

// validateSchema checks that a schema document is present and shaped like an MCP object schema.
func validateSchema(kind string, schema map[string]any) error {
	if schema == nil {
		return fmt.Errorf("%w: %s schema is required", ErrValidation, kind)
	}
	if t, ok := schema["type"]; ok && t != "object" {
		return fmt.Errorf("%w: %s schema type must be \"object\", got %v", ErrValidation, kind, t)
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("%w: %s schema is not valid JSON: %w", ErrValidation, kind, err)
	}
	var s mcp.ToolInputSchema
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("%w: malformed %s schema: %w", ErrValidation, kind, err)
	}
	for _, name := range s.Required {
		if _, ok := s.Properties[name]; !ok {
			return fmt.Errorf("%w: %s schema requires undeclared property %q", ErrValidation, kind, name)
		}
	}
	return nil
}
