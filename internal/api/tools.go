package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mcpjungle/mcphost/internal/model"
	"github.com/mcpjungle/mcphost/internal/service/registry"
	"github.com/mcpjungle/mcphost/pkg/types"
)

func (s *Server) registerToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input types.RegisterToolInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBadRequest(c, err)
			return
		}

		id, err := s.host.RegisterTool(model.Tool{
			Name:         input.Name,
			Description:  input.Description,
			InputSchema:  input.InputSchema,
			OutputSchema: input.OutputSchema,
			Tags:         model.NewTagSet(input.Tags...),
			ServerID:     input.ServerID,
			Version:      input.Version,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, types.RegisterToolResult{ID: id})
	}
}

func (s *Server) unregisterToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		if !s.host.UnregisterTool(id) {
			respondNotFound(c, fmt.Sprintf("tool %s not found", id))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) getToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		tool, ok := s.host.GetTool(id)
		if !ok {
			respondNotFound(c, fmt.Sprintf("tool %s not found", id))
			return
		}
		c.JSON(http.StatusOK, toTool(tool))
	}
}

// listToolsHandler lists tools matching the optional name substring, tags and owning server.
func (s *Server) listToolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		records := s.host.FindTools(registry.Query{
			Tags:         queryTags(c),
			ServerID:     c.Query("server_id"),
			NameContains: c.Query("name"),
		})
		c.JSON(http.StatusOK, toTools(records))
	}
}

// toolServersHandler returns the routing candidates of a tool name in rotation order.
func (s *Server) toolServersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, s.host.ToolServers(c.Param("tool")))
	}
}
