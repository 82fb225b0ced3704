package types

import "time"

// Server represents a worker server registered in the MCPHost directory.
type Server struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`

	Host    string `json:"host"`
	Port    int    `json:"port"`
	Address string `json:"address"`

	Tags     []string       `json:"tags"`
	Metadata map[string]any `json:"metadata,omitempty"`

	LastHeartbeat time.Time `json:"last_heartbeat"`
	Active        bool      `json:"active"`
}

// RegisterServerInput is the input structure for registering a new server with mcphost.
// It is also the basis for the server entries of the seed file.
type RegisterServerInput struct {
	// Name (mandatory) is a human-readable name for the server. It does not need to be unique.
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version" yaml:"version"`

	// Host and Port (mandatory) are the network address requests for this server's tools are dispatched to.
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`

	Tags     []string       `json:"tags,omitempty" yaml:"tags"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata"`
}

// RegisterServerResult is returned after a server is registered.
type RegisterServerResult struct {
	ID string `json:"id"`
}

// UnregisterServerResult represents the result of removing a server from the directory.
type UnregisterServerResult struct {
	// ID is the id of the server that was removed
	ID string `json:"id"`
	// ToolsAffected lists the tools that lost this server as a routing candidate
	ToolsAffected []string `json:"tools_affected"`
}

// HeartbeatResult is returned after a heartbeat is accepted.
type HeartbeatResult struct {
	ID            string    `json:"id"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// ServerMetadata represents the server metadata response
type ServerMetadata struct {
	Version string `json:"version"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
	// Code is a machine-readable error kind. It is set when callers may want to react differently
	// to the failure, for example "tool_not_found" vs "server_not_found".
	Code string `json:"code,omitempty"`
}

const (
	ErrorCodeToolNotFound   = "tool_not_found"
	ErrorCodeServerNotFound = "server_not_found"
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeNotFound       = "not_found"
	ErrorCodeInternal       = "internal"
)
