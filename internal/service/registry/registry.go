// Package registry provides the tool catalog of the capability directory.
package registry

import (
	"sort"
	"strings"
	"time"

	"github.com/mcpjungle/mcphost/internal"
	"github.com/mcpjungle/mcphost/internal/model"
)

type idSet map[string]struct{}

type entry struct {
	tool *model.Tool
	// seq preserves registration order for deterministic results.
	seq uint64
}

// Query describes the criteria for finding tools.
// Zero-valued fields are not applied.
type Query struct {
	// Tags must all be present on a matching tool.
	Tags []string
	// ServerID restricts the result to tools owned by this server.
	ServerID string
	// NameContains is a case-insensitive substring to match against tool names.
	NameContains string
}

// ToolRegistry is the catalog of tools, indexed by owning server and by tag.
// It has no knowledge of server liveness.
//
// ToolRegistry is not safe for concurrent use.
// The host serializes access to it together with discovery and routing state.
type ToolRegistry struct {
	tools       map[string]*entry
	serverTools map[string]idSet
	tagIndex    map[string]idSet

	seq uint64
	now func() time.Time
}

// New creates an empty tool registry.
func New() *ToolRegistry {
	return &ToolRegistry{
		tools:       make(map[string]*entry),
		serverTools: make(map[string]idSet),
		tagIndex:    make(map[string]idSet),
		now:         time.Now,
	}
}

// Register adds a tool to the catalog and returns its freshly assigned id.
// Any id already set on the input is ignored.
func (r *ToolRegistry) Register(tool model.Tool) string {
	id := internal.NewUniqueID(internal.ToolIDPrefix, func(id string) bool {
		_, exists := r.tools[id]
		return exists
	})

	t := tool.Clone()
	t.ID = id
	t.LastUpdated = r.now().UTC()
	t.Active = true
	if t.Version == "" {
		t.Version = model.DefaultToolVersion
	}
	if t.Tags == nil {
		t.Tags = model.NewTagSet()
	}

	r.seq++
	r.tools[id] = &entry{tool: &t, seq: r.seq}

	if t.ServerID != "" {
		addToIndex(r.serverTools, t.ServerID, id)
	}
	for tag := range t.Tags {
		addToIndex(r.tagIndex, tag, id)
	}
	return id
}

// Unregister removes a tool from the catalog and from both secondary indices.
// It returns false if the id is unknown.
func (r *ToolRegistry) Unregister(id string) bool {
	e, ok := r.tools[id]
	if !ok {
		return false
	}
	if e.tool.ServerID != "" {
		removeFromIndex(r.serverTools, e.tool.ServerID, id)
	}
	for tag := range e.tool.Tags {
		removeFromIndex(r.tagIndex, tag, id)
	}
	delete(r.tools, id)
	return true
}

// Get returns a copy of the tool with the given id.
func (r *ToolRegistry) Get(id string) (model.Tool, bool) {
	e, ok := r.tools[id]
	if !ok {
		return model.Tool{}, false
	}
	return e.tool.Clone(), true
}

// Find returns the tools matching every criterion in q, in registration order.
// A tag or server that was never indexed yields an empty result.
func (r *ToolRegistry) Find(q Query) []model.Tool {
	var candidates idSet

	if q.ServerID != "" {
		ids, ok := r.serverTools[q.ServerID]
		if !ok {
			return []model.Tool{}
		}
		candidates = intersect(candidates, ids)
	}

	for _, tag := range q.Tags {
		ids, ok := r.tagIndex[tag]
		if !ok {
			// if any tag doesn't exist, no tool can match
			return []model.Tool{}
		}
		candidates = intersect(candidates, ids)
	}

	var entries []*entry
	if candidates == nil {
		entries = make([]*entry, 0, len(r.tools))
		for _, e := range r.tools {
			entries = append(entries, e)
		}
	} else {
		entries = make([]*entry, 0, len(candidates))
		for id := range candidates {
			entries = append(entries, r.tools[id])
		}
	}

	needle := strings.ToLower(q.NameContains)
	result := make([]*entry, 0, len(entries))
	for _, e := range entries {
		if needle != "" && !strings.Contains(strings.ToLower(e.tool.Name), needle) {
			continue
		}
		result = append(result, e)
	}
	return cloneSorted(result)
}

// ToolsForServer returns all tools owned by the given server.
func (r *ToolRegistry) ToolsForServer(serverID string) []model.Tool {
	ids, ok := r.serverTools[serverID]
	if !ok {
		return []model.Tool{}
	}
	entries := make([]*entry, 0, len(ids))
	for id := range ids {
		entries = append(entries, r.tools[id])
	}
	return cloneSorted(entries)
}

// All returns every tool in the catalog.
func (r *ToolRegistry) All() []model.Tool {
	entries := make([]*entry, 0, len(r.tools))
	for _, e := range r.tools {
		entries = append(entries, e)
	}
	return cloneSorted(entries)
}

// Len returns the number of tools in the catalog.
func (r *ToolRegistry) Len() int {
	return len(r.tools)
}

// Clear removes every tool and index entry.
func (r *ToolRegistry) Clear() {
	r.tools = make(map[string]*entry)
	r.serverTools = make(map[string]idSet)
	r.tagIndex = make(map[string]idSet)
}

func addToIndex(index map[string]idSet, key, id string) {
	ids, ok := index[key]
	if !ok {
		ids = make(idSet)
		index[key] = ids
	}
	ids[id] = struct{}{}
}

// removeFromIndex drops id from the index bucket and deletes the bucket once it is empty.
func removeFromIndex(index map[string]idSet, key, id string) {
	ids, ok := index[key]
	if !ok {
		return
	}
	delete(ids, id)
	if len(ids) == 0 {
		delete(index, key)
	}
}

// intersect returns acc ∩ ids. A nil acc stands for "everything".
func intersect(acc, ids idSet) idSet {
	out := make(idSet)
	if acc == nil {
		for id := range ids {
			out[id] = struct{}{}
		}
		return out
	}
	for id := range acc {
		if _, ok := ids[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func cloneSorted(entries []*entry) []model.Tool {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})
	out := make([]model.Tool, len(entries))
	for i, e := range entries {
		out[i] = e.tool.Clone()
	}
	return out
}
