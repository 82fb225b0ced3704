package model

import (
	"maps"
	"net"
	"strconv"
	"time"
)

// Server represents a remote worker registered in the capability directory.
type Server struct {
	// ID is assigned by the directory at registration and never changes.
	ID string `json:"id"`

	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`

	// Host and Port are handed as-is to whatever transport dispatches requests to this server.
	Host string `json:"host"`
	Port int    `json:"port"`

	Tags     TagSet         `json:"tags"`
	Metadata map[string]any `json:"metadata,omitempty"`

	LastHeartbeat time.Time `json:"last_heartbeat"`

	// Active is derived from LastHeartbeat and the heartbeat timeout.
	// It only changes during a liveness check or on a fresh heartbeat.
	Active bool `json:"active"`
}

// Address returns the "host:port" network address of the server.
func (s *Server) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Clone returns a deep copy of the server record so callers can't mutate directory state.
func (s *Server) Clone() Server {
	c := *s
	c.Tags = s.Tags.Clone()
	if s.Metadata != nil {
		c.Metadata = maps.Clone(s.Metadata)
	}
	return c
}
