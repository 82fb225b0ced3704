package types

import "time"

// DispatchEvent is an entry of the directory's dispatch history.
type DispatchEvent struct {
	ID            uint      `json:"id"`
	Kind          string    `json:"kind"`
	ToolName      string    `json:"tool_name,omitempty"`
	ServerID      string    `json:"server_id"`
	Strategy      string    `json:"strategy,omitempty"`
	AffectedTools []string  `json:"affected_tools,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
