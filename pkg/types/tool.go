package types

import "time"

// Tool represents a tool offered through the MCPHost directory.
type Tool struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	InputSchema  map[string]any `json:"input_schema"`
	OutputSchema map[string]any `json:"output_schema"`

	Tags     []string `json:"tags"`
	ServerID string   `json:"server_id,omitempty"`

	Version     string    `json:"version"`
	LastUpdated time.Time `json:"last_updated"`
	Active      bool      `json:"active"`
}

// RegisterToolInput is the input structure for registering a tool.
type RegisterToolInput struct {
	// Name (mandatory) is the name requests are routed by.
	// Several servers may offer a tool with the same name.
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`

	// InputSchema and OutputSchema (mandatory) are JSON schema documents of type "object".
	InputSchema  map[string]any `json:"input_schema" yaml:"input_schema"`
	OutputSchema map[string]any `json:"output_schema" yaml:"output_schema"`

	Tags []string `json:"tags,omitempty" yaml:"tags"`

	// ServerID is the id of the server offering the tool.
	// When set, the server becomes a routing candidate for the tool name.
	ServerID string `json:"server_id,omitempty" yaml:"-"`

	Version string `json:"version,omitempty" yaml:"version"`
}

// RegisterToolResult is returned after a tool is registered.
type RegisterToolResult struct {
	ID string `json:"id"`
}
