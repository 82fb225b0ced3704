package model

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DispatchEventKind identifies what happened to a server's routing state.
type DispatchEventKind string

const (
	// EventRoute is recorded when a request for a tool is routed to a server.
	EventRoute DispatchEventKind = "route"
	// EventCompletion is recorded when an in-flight request on a server completes.
	EventCompletion DispatchEventKind = "completion"
	// EventPurge is recorded when a dead or unregistered server is removed from the routing map.
	EventPurge DispatchEventKind = "purge"
)

// DispatchEvent is a history record of routing activity.
// The directory never restores its state from these records, they exist for observability only.
type DispatchEvent struct {
	gorm.Model

	Kind     DispatchEventKind `json:"kind" gorm:"type:varchar(20);not null;index"`
	ToolName string            `json:"tool_name"`
	ServerID string            `json:"server_id" gorm:"index"`
	Strategy string            `json:"strategy"`

	// AffectedTools contains the JSON list of tool names whose routing changed (purge events only).
	AffectedTools datatypes.JSON `json:"affected_tools" gorm:"type:jsonb"`
}

// NewRouteEvent creates a record of a routing decision.
func NewRouteEvent(toolName, serverID, strategy string) *DispatchEvent {
	return &DispatchEvent{
		Kind:     EventRoute,
		ToolName: toolName,
		ServerID: serverID,
		Strategy: strategy,
	}
}

// NewCompletionEvent creates a record of a finished dispatch.
func NewCompletionEvent(serverID string) *DispatchEvent {
	return &DispatchEvent{
		Kind:     EventCompletion,
		ServerID: serverID,
	}
}

// NewPurgeEvent creates a record of a server being removed from the routing map.
func NewPurgeEvent(serverID string, affectedTools []string) (*DispatchEvent, error) {
	if affectedTools == nil {
		affectedTools = []string{}
	}
	affectedJSON, err := json.Marshal(affectedTools)
	if err != nil {
		return nil, err
	}
	return &DispatchEvent{
		Kind:          EventPurge,
		ServerID:      serverID,
		AffectedTools: datatypes.JSON(affectedJSON),
	}, nil
}

// GetAffectedTools decodes the list of tool names affected by a purge event.
func (e *DispatchEvent) GetAffectedTools() ([]string, error) {
	if len(e.AffectedTools) == 0 {
		return []string{}, nil
	}
	var tools []string
	if err := json.Unmarshal(e.AffectedTools, &tools); err != nil {
		return nil, err
	}
	return tools, nil
}
