package internal

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	t.Run("prefix and length", func(t *testing.T) {
		id := GenerateID(ServerIDPrefix)
		if !strings.HasPrefix(id, "srv_") {
			t.Fatalf("Expected srv_ prefix, got %s", id)
		}
		if len(id) != len("srv_")+8 {
			t.Errorf("Expected id length %d, got %d (%s)", len("srv_")+8, len(id), id)
		}
	})

	t.Run("id uniqueness", func(t *testing.T) {
		ids := make(map[string]bool)
		const numIDs = 100

		for i := 0; i < numIDs; i++ {
			id := GenerateID(ToolIDPrefix)
			if ids[id] {
				t.Errorf("Duplicate id generated: %s", id)
			}
			ids[id] = true
		}
	})

	t.Run("suffix is lowercase hex", func(t *testing.T) {
		id := GenerateID(ToolIDPrefix)
		suffix := strings.TrimPrefix(id, "tool_")
		for _, r := range suffix {
			if !strings.ContainsRune("0123456789abcdef", r) {
				t.Errorf("Unexpected character %q in id %s", r, id)
			}
		}
	})
}

func TestNewUniqueID(t *testing.T) {
	calls := 0
	id := NewUniqueID(ServerIDPrefix, func(string) bool {
		calls++
		// pretend the first two candidates are already taken
		return calls <= 2
	})
	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
	if err := ValidateID(ServerIDPrefix, id); err != nil {
		t.Errorf("Expected valid id, got error: %v", err)
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		id      string
		wantErr bool
	}{
		{"valid server id", ServerIDPrefix, "srv_0a1b2c3d", false},
		{"valid tool id", ToolIDPrefix, "tool_deadbeef", false},
		{"wrong prefix", ServerIDPrefix, "tool_deadbeef", true},
		{"missing separator", ServerIDPrefix, "srvdeadbeef", true},
		{"short suffix", ServerIDPrefix, "srv_abc", true},
		{"empty", ToolIDPrefix, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.prefix, tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q, %q) error = %v, wantErr %v", tt.prefix, tt.id, err, tt.wantErr)
			}
		})
	}
}
