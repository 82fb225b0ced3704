package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mcpjungle/mcphost/internal/service/router"
	"github.com/mcpjungle/mcphost/pkg/types"
)

func (s *Server) routeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.RouteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}
		if req.Tool == "" {
			respondBadRequest(c, errors.New("tool is required"))
			return
		}

		strategy := routingStrategy(req.Strategy)
		server, err := s.host.Route(c.Request.Context(), req.Tool, strategy)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toRouteResult(server, string(strategy)))
	}
}

func (s *Server) completeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.CompleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}
		if req.ServerID == "" {
			respondBadRequest(c, errors.New("server_id is required"))
			return
		}

		s.host.Complete(c.Request.Context(), req.ServerID)
		c.Status(http.StatusNoContent)
	}
}

// loadHandler returns the number of in-flight requests on a server.
func (s *Server) loadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		c.JSON(http.StatusOK, gin.H{"server_id": id, "load": s.host.Load(id)})
	}
}

// routingStrategy picks the default for an empty strategy.
// Unknown strategies are passed through, the router falls back to the first live candidate for them.
func routingStrategy(input string) router.Strategy {
	if input == "" {
		return router.DefaultStrategy
	}
	return router.Strategy(input)
}
