package registry

import (
	"testing"

	"github.com/mcpjungle/mcphost/internal"
	"github.com/mcpjungle/mcphost/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTool(name, serverID string, tags ...string) model.Tool {
	return model.Tool{
		Name:         name,
		Description:  name + " tool",
		InputSchema:  map[string]any{"type": "object"},
		OutputSchema: map[string]any{"type": "object"},
		Tags:         model.NewTagSet(tags...),
		ServerID:     serverID,
	}
}

func names(tools []model.Tool) []string {
	out := make([]string, len(tools))
	for i, t := range tools {
		out[i] = t.Name
	}
	return out
}

func TestRegister(t *testing.T) {
	r := New()
	id := r.Register(model.Tool{ID: "tool_ignored", Name: "sum"})

	require.NoError(t, internal.ValidateID(internal.ToolIDPrefix, id))
	assert.NotEqual(t, "tool_ignored", id)

	got, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, model.DefaultToolVersion, got.Version)
	assert.True(t, got.Active)
	assert.False(t, got.LastUpdated.IsZero())
	assert.NotNil(t, got.Tags)
}

func TestRegisterKeepsExplicitVersion(t *testing.T) {
	r := New()
	tool := newTool("sum", "")
	tool.Version = "2.1.0"
	id := r.Register(tool)

	got, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, "2.1.0", got.Version)
}

func TestUnregisterCleansIndices(t *testing.T) {
	r := New()
	id := r.Register(newTool("sum", "srv_00000001", "math", "fast"))

	assert.True(t, r.Unregister(id))
	assert.False(t, r.Unregister(id), "second unregister should report unknown id")

	assert.Empty(t, r.serverTools, "server index should not keep empty buckets")
	assert.Empty(t, r.tagIndex, "tag index should not keep empty buckets")
	assert.Empty(t, r.Find(Query{ServerID: "srv_00000001"}))
	assert.Empty(t, r.Find(Query{Tags: []string{"math"}}))

	_, ok := r.Get(id)
	assert.False(t, ok)
}

func TestUnregisterKeepsSiblings(t *testing.T) {
	r := New()
	a := r.Register(newTool("sum", "srv_00000001", "math"))
	r.Register(newTool("product", "srv_00000001", "math"))

	require.True(t, r.Unregister(a))
	assert.Equal(t, []string{"product"}, names(r.ToolsForServer("srv_00000001")))
	assert.Equal(t, []string{"product"}, names(r.Find(Query{Tags: []string{"math"}})))
}

func TestFind(t *testing.T) {
	r := New()
	r.Register(newTool("sum", "srv_00000001", "x", "y"))
	r.Register(newTool("summary", "srv_00000002", "x"))
	r.Register(newTool("translate", "srv_00000001", "y", "x", "text"))
	r.Register(newTool("Resume", "", "y"))

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"no criteria returns all", Query{}, []string{"sum", "summary", "translate", "Resume"}},
		{"tags are intersected", Query{Tags: []string{"x", "y"}}, []string{"sum", "translate"}},
		{"unknown tag yields empty", Query{Tags: []string{"x", "never"}}, []string{}},
		{"server filter", Query{ServerID: "srv_00000001"}, []string{"sum", "translate"}},
		{"unknown server yields empty", Query{ServerID: "srv_ffffffff"}, []string{}},
		{"name substring is case-insensitive", Query{NameContains: "TRANS"}, []string{"translate"}},
		{"name matches inside", Query{NameContains: "sum"}, []string{"sum", "summary", "Resume"}},
		{"all criteria", Query{Tags: []string{"x"}, ServerID: "srv_00000001", NameContains: "trans"}, []string{"translate"}},
		{"no match", Query{NameContains: "nothing"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Find(tt.query)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFindReturnsCopies(t *testing.T) {
	r := New()
	id := r.Register(newTool("sum", "", "math"))

	found := r.Find(Query{})
	require.Len(t, found, 1)
	found[0].Tags["mutated"] = struct{}{}
	found[0].Name = "changed"

	got, _ := r.Get(id)
	assert.Equal(t, "sum", got.Name)
	assert.False(t, got.Tags.Has("mutated"))
}

func TestToolsForServer(t *testing.T) {
	r := New()
	r.Register(newTool("a", "srv_00000001"))
	r.Register(newTool("b", "srv_00000002"))
	r.Register(newTool("c", "srv_00000001"))

	assert.Equal(t, []string{"a", "c"}, names(r.ToolsForServer("srv_00000001")))
	assert.Empty(t, r.ToolsForServer("srv_ffffffff"))
}

func TestAllAndClear(t *testing.T) {
	r := New()
	r.Register(newTool("a", "srv_00000001", "t"))
	r.Register(newTool("b", ""))

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"a", "b"}, names(r.All()))

	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.All())
	assert.Empty(t, r.Find(Query{Tags: []string{"t"}}))
	assert.Empty(t, r.ToolsForServer("srv_00000001"))
}
