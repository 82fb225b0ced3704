// Package api provides the HTTP API of the MCPHost capability directory.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mcpjungle/mcphost/internal"
	"github.com/mcpjungle/mcphost/internal/model"
	"github.com/mcpjungle/mcphost/internal/service/audit"
	"github.com/mcpjungle/mcphost/internal/service/host"
	"github.com/mcpjungle/mcphost/internal/telemetry"
	"github.com/mcpjungle/mcphost/pkg/types"
	"github.com/mcpjungle/mcphost/pkg/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	V0PathPrefix    = "/v0"
	V0ApiPathPrefix = "/api" + V0PathPrefix
)

// EventLister reads the dispatch history.
type EventLister interface {
	Recent(ctx context.Context, f audit.Filter) ([]model.DispatchEvent, error)
}

type ServerOptions struct {
	// Port is the HTTP port to bind the server to
	Port string

	Host *host.Host

	// Events serves the dispatch history. The events endpoint is unavailable if it is nil.
	Events EventLister

	// MCPServer exposes the routing meta-tools over MCP on /mcp.
	MCPServer *server.MCPServer

	OtelProviders *telemetry.Providers
	Logger        *zap.Logger
}

// Server is the HTTP front of the capability directory.
// It delivers registrations, heartbeats and routing requests to the host.
type Server struct {
	port   string
	router *gin.Engine

	host   *host.Host
	events EventLister

	mcpServer *server.MCPServer

	otelProviders *telemetry.Providers
	logger        *zap.Logger
}

// NewServer initializes a new Gin server for the MCPHost directory
func NewServer(opts *ServerOptions) (*Server, error) {
	if opts.Host == nil {
		return nil, fmt.Errorf("host is required")
	}
	s := &Server{
		port:          opts.Port,
		host:          opts.Host,
		events:        opts.Events,
		mcpServer:     opts.MCPServer,
		otelProviders: opts.OtelProviders,
		logger:        opts.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.mcpServer == nil {
		s.mcpServer = server.NewMCPServer(
			"MCPHost Routing MCP Server",
			version.GetVersion(),
			server.WithToolCapabilities(true),
		)
	}
	s.registerMetaTools()

	r, err := s.setupRouter()
	if err != nil {
		return nil, err
	}
	s.router = r

	return s, nil
}

// Start runs the Gin server (blocking call)
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("port", s.port))
	if err := s.router.Run(":" + s.port); err != nil {
		return fmt.Errorf("failed to run the server: %w", err)
	}
	return nil
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter sets up the Gin router with the MCP endpoint and the API endpoints.
func (s *Server) setupRouter() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	// if otel is enabled, setup prometheus metrics endpoint
	if s.otelProviders != nil && s.otelProviders.IsEnabled() {
		// instrument gin
		r.Use(otelgin.Middleware(s.otelProviders.ServiceName()))

		// expose prometheus metrics endpoint
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET(
		"/health",
		func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		},
	)

	r.GET(
		"/metadata",
		func(c *gin.Context) {
			m := &types.ServerMetadata{
				Version: version.GetVersion(),
			}
			c.JSON(http.StatusOK, m)
		},
	)

	streamableHTTPServer := server.NewStreamableHTTPServer(s.mcpServer)
	r.Any("/mcp", gin.WrapH(streamableHTTPServer))

	apiV0 := r.Group(V0ApiPathPrefix)
	{
		validServerID := requireValidID(internal.ServerIDPrefix)
		apiV0.POST("/servers", s.registerServerHandler())
		apiV0.GET("/servers", s.listServersHandler())
		apiV0.GET("/servers/:id", validServerID, s.getServerHandler())
		apiV0.DELETE("/servers/:id", validServerID, s.unregisterServerHandler())
		apiV0.POST("/servers/:id/heartbeat", validServerID, s.heartbeatHandler())
		apiV0.GET("/servers/:id/load", validServerID, s.loadHandler())

		validToolID := requireValidID(internal.ToolIDPrefix)
		apiV0.POST("/tools", s.registerToolHandler())
		apiV0.GET("/tools", s.listToolsHandler())
		apiV0.GET("/tools/:id", validToolID, s.getToolHandler())
		apiV0.DELETE("/tools/:id", validToolID, s.unregisterToolHandler())

		apiV0.POST("/route", s.routeHandler())
		apiV0.GET("/routes/:tool", s.toolServersHandler())
		apiV0.POST("/complete", s.completeHandler())

		apiV0.GET("/events", s.listEventsHandler())
	}

	return r, nil
}

// requestLogger logs every request at debug level.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug("handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
