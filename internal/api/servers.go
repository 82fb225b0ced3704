package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mcpjungle/mcphost/internal"
	"github.com/mcpjungle/mcphost/internal/service/discovery"
	"github.com/mcpjungle/mcphost/pkg/types"
)

func (s *Server) registerServerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input types.RegisterServerInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBadRequest(c, err)
			return
		}

		id, err := s.host.RegisterServer(discovery.RegisterInput{
			Name:        input.Name,
			Description: input.Description,
			Version:     input.Version,
			Host:        input.Host,
			Port:        input.Port,
			Tags:        input.Tags,
			Metadata:    input.Metadata,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, types.RegisterServerResult{ID: id})
	}
}

func (s *Server) unregisterServerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		affected, ok := s.host.UnregisterServer(c.Request.Context(), id)
		if !ok {
			respondNotFound(c, fmt.Sprintf("server %s not found", id))
			return
		}

		c.JSON(http.StatusOK, types.UnregisterServerResult{ID: id, ToolsAffected: affected})
	}
}

func (s *Server) getServerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		server, ok := s.host.GetServer(id)
		if !ok {
			respondNotFound(c, fmt.Sprintf("server %s not found", id))
			return
		}
		c.JSON(http.StatusOK, toServer(server))
	}
}

// listServersHandler lists servers, optionally filtered by tags (comma-separated or repeated)
// and a name substring. Only live servers are returned unless active_only=false.
func (s *Server) listServersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		activeOnly := true
		if v := c.Query("active_only"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				respondBadRequest(c, fmt.Errorf("invalid value for active_only: %s", v))
				return
			}
			activeOnly = b
		}

		records := s.host.FindServers(queryTags(c), c.Query("name"), activeOnly)
		c.JSON(http.StatusOK, toServers(records))
	}
}

func (s *Server) heartbeatHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		if !s.host.Heartbeat(id) {
			respondNotFound(c, fmt.Sprintf("server %s not found", id))
			return
		}
		server, ok := s.host.GetServer(id)
		if !ok {
			// unregistered right after the heartbeat
			respondNotFound(c, fmt.Sprintf("server %s not found", id))
			return
		}
		c.JSON(http.StatusOK, types.HeartbeatResult{ID: id, LastHeartbeat: server.LastHeartbeat})
	}
}

// requireValidID rejects requests whose :id path parameter doesn't look like an id with the given prefix.
func requireValidID(prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := internal.ValidateID(prefix, c.Param("id")); err != nil {
			respondBadRequest(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// queryTags collects tags from repeated and comma-separated "tags" query parameters.
func queryTags(c *gin.Context) []string {
	var tags []string
	for _, v := range c.QueryArray("tags") {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}
