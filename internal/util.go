// Package internal provides internal utility functionality for the MCPHost application.
package internal

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	// ServerIDPrefix is prepended to every server id handed out by the directory.
	ServerIDPrefix = "srv"
	// ToolIDPrefix is prepended to every tool id handed out by the directory.
	ToolIDPrefix = "tool"

	idSuffixLength = 8
)

// GenerateID returns a short random identifier of the form "<prefix>_<8 hex chars>".
// Uniqueness within a catalog is the caller's responsibility, see NewUniqueID.
func GenerateID(prefix string) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s_%s", prefix, hex[:idSuffixLength])
}

// NewUniqueID generates ids with the given prefix until taken reports false.
func NewUniqueID(prefix string, taken func(id string) bool) string {
	for {
		id := GenerateID(prefix)
		if !taken(id) {
			return id
		}
	}
}

// ValidateID checks that an id has the "<prefix>_<suffix>" shape used by the directory.
func ValidateID(prefix, id string) error {
	p, suffix, ok := strings.Cut(id, "_")
	if !ok || p != prefix {
		return fmt.Errorf("id %q must start with %q", id, prefix+"_")
	}
	if len(suffix) != idSuffixLength {
		return fmt.Errorf("id %q must have a %d character suffix", id, idSuffixLength)
	}
	return nil
}
