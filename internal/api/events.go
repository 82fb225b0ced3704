package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mcpjungle/mcphost/internal/model"
	"github.com/mcpjungle/mcphost/internal/service/audit"
	"github.com/mcpjungle/mcphost/pkg/types"
)

// listEventsHandler returns the latest dispatch events, newest first.
// Supported query parameters: limit, kind, server_id.
func (s *Server) listEventsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.events == nil {
			c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "dispatch history is not enabled"})
			return
		}

		filter := audit.Filter{
			Kind:     model.DispatchEventKind(c.Query("kind")),
			ServerID: c.Query("server_id"),
		}
		if v := c.Query("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit <= 0 {
				respondBadRequest(c, fmt.Errorf("invalid value for limit: %s", v))
				return
			}
			filter.Limit = limit
		}

		records, err := s.events.Recent(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}

		events := make([]*types.DispatchEvent, 0, len(records))
		for _, r := range records {
			e, err := toEvent(r)
			if err != nil {
				c.JSON(http.StatusInternalServerError, types.ErrorResponse{
					Error: fmt.Sprintf("Error decoding event %d: %v", r.ID, err),
					Code:  types.ErrorCodeInternal,
				})
				return
			}
			events = append(events, e)
		}
		c.JSON(http.StatusOK, events)
	}
}
