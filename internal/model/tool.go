package model

import (
	"maps"
	"time"
)

// DefaultToolVersion is assigned to tools registered without a version.
const DefaultToolVersion = "1.0.0"

// Tool represents a callable capability in the catalog.
type Tool struct {
	// ID is assigned by the catalog at registration.
	ID string `json:"id"`

	// Name is not unique across the directory.
	// Two servers can offer tools with the same name, which is what makes routing between them possible.
	Name        string `json:"name"`
	Description string `json:"description"`

	// InputSchema and OutputSchema are JSON schema documents describing the tool's parameters and result.
	InputSchema  map[string]any `json:"input_schema"`
	OutputSchema map[string]any `json:"output_schema"`

	Tags TagSet `json:"tags"`

	// ServerID is the id of the server that provides this tool. It is optional.
	ServerID string `json:"server_id,omitempty"`

	Version     string    `json:"version"`
	LastUpdated time.Time `json:"last_updated"`

	// Active is always true for now, nothing in routing consumes it yet.
	Active bool `json:"active"`
}

// Clone returns a copy of the tool record.
// Schema documents are copied shallowly.
func (t *Tool) Clone() Tool {
	c := *t
	c.Tags = t.Tags.Clone()
	if t.InputSchema != nil {
		c.InputSchema = maps.Clone(t.InputSchema)
	}
	if t.OutputSchema != nil {
		c.OutputSchema = maps.Clone(t.OutputSchema)
	}
	return c
}
