// Package router maps tool names to candidate servers and picks one per request.
package router

import (
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/mcpjungle/mcphost/internal/model"
)

// Strategy is a server selection policy.
type Strategy string

const (
	RoundRobin  Strategy = "round_robin"
	Random      Strategy = "random"
	LeastLoaded Strategy = "least_loaded"
)

// DefaultStrategy is used by callers that don't ask for a specific policy.
const DefaultStrategy = RoundRobin

// Strategies lists the supported selection policies.
var Strategies = []Strategy{RoundRobin, Random, LeastLoaded}

// Valid reports whether s is one of the supported strategies.
func (s Strategy) Valid() bool {
	return slices.Contains(Strategies, s)
}

// ServerLookup resolves a server id to its current record.
// The router only dispatches to servers the lookup reports as active.
type ServerLookup interface {
	Get(id string) (model.Server, bool)
}

// selectFunc picks the index of a server among the live candidates of a tool.
type selectFunc func(r *Router, tool string, live []string) int

var selectors = map[Strategy]selectFunc{
	RoundRobin:  (*Router).selectRoundRobin,
	Random:      (*Router).selectRandom,
	LeastLoaded: (*Router).selectLeastLoaded,
}

// Option configures a Router.
type Option func(*Router)

// WithRand sets the source of randomness for the random strategy.
func WithRand(rng *rand.Rand) Option {
	return func(r *Router) {
		r.rng = rng
	}
}

// Router holds the tool -> candidate servers map and per-server in-flight load.
// The order of a tool's candidate list is the round-robin cursor.
//
// Router is not safe for concurrent use.
type Router struct {
	servers ServerLookup

	toolServers map[string][]string
	load        map[string]int

	rng *rand.Rand
}

// New creates a router that validates candidates against the given server lookup.
func New(servers ServerLookup, opts ...Option) *Router {
	r := &Router{
		servers:     servers,
		toolServers: make(map[string][]string),
		load:        make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UpdateMapping makes serverID a candidate for tool.
// Adding an existing mapping is a no-op.
func (r *Router) UpdateMapping(tool, serverID string) {
	if !slices.Contains(r.toolServers[tool], serverID) {
		r.toolServers[tool] = append(r.toolServers[tool], serverID)
	}
	if _, ok := r.load[serverID]; !ok {
		r.load[serverID] = 0
	}
}

// RemoveMapping drops serverID from the candidates of tool.
// The tool entry is deleted once it has no candidates left.
func (r *Router) RemoveMapping(tool, serverID string) {
	list, ok := r.toolServers[tool]
	if !ok {
		return
	}
	list = slices.DeleteFunc(list, func(id string) bool { return id == serverID })
	if len(list) == 0 {
		delete(r.toolServers, tool)
		return
	}
	r.toolServers[tool] = list
}

// RemoveServer drops serverID from every tool's candidates and forgets its load.
// It returns the sorted names of the tools whose candidate list changed.
func (r *Router) RemoveServer(serverID string) []string {
	affected := make([]string, 0)
	for tool, list := range r.toolServers {
		if !slices.Contains(list, serverID) {
			continue
		}
		affected = append(affected, tool)
		r.RemoveMapping(tool, serverID)
	}
	delete(r.load, serverID)
	sort.Strings(affected)
	return affected
}

// Select picks a live server for tool using the given strategy and counts
// one more in-flight request against it.
// An unrecognized strategy selects the first live candidate.
// It returns false if the tool is unknown or none of its candidates is live.
func (r *Router) Select(tool string, strategy Strategy) (model.Server, bool) {
	list, ok := r.toolServers[tool]
	if !ok {
		return model.Server{}, false
	}

	live := make([]string, 0, len(list))
	records := make(map[string]model.Server, len(list))
	for _, id := range list {
		s, ok := r.servers.Get(id)
		if !ok || !s.Active {
			continue
		}
		live = append(live, id)
		records[id] = s
	}
	if len(live) == 0 {
		return model.Server{}, false
	}

	idx := 0
	if sel, ok := selectors[strategy]; ok {
		idx = sel(r, tool, live)
	}
	chosen := live[idx]
	r.load[chosen]++
	return records[chosen], true
}

// selectRoundRobin takes the first live candidate and moves it to the tail of the full list.
// Dead candidates keep their slot and rejoin the rotation once live again.
func (r *Router) selectRoundRobin(tool string, live []string) int {
	chosen := live[0]
	list := r.toolServers[tool]
	rotated := make([]string, 0, len(list))
	for _, id := range list {
		if id != chosen {
			rotated = append(rotated, id)
		}
	}
	r.toolServers[tool] = append(rotated, chosen)
	return 0
}

func (r *Router) selectRandom(_ string, live []string) int {
	if r.rng != nil {
		return r.rng.IntN(len(live))
	}
	return rand.IntN(len(live))
}

// selectLeastLoaded returns the candidate with the lowest load, preferring earlier ones on ties.
func (r *Router) selectLeastLoaded(_ string, live []string) int {
	best := 0
	for i, id := range live[1:] {
		if r.load[id] < r.load[live[best]] {
			best = i + 1
		}
	}
	return best
}

// RecordCompletion counts one in-flight request on serverID as finished.
// The counter never goes below zero and unknown servers are ignored.
func (r *Router) RecordCompletion(serverID string) {
	if r.load[serverID] > 0 {
		r.load[serverID]--
	}
}

// Load returns the number of in-flight requests on serverID.
func (r *Router) Load(serverID string) int {
	return r.load[serverID]
}

// ToolServers returns a copy of the candidate list of tool in rotation order.
func (r *Router) ToolServers(tool string) []string {
	list, ok := r.toolServers[tool]
	if !ok {
		return []string{}
	}
	return slices.Clone(list)
}

// Tools returns the sorted names of all routable tools.
func (r *Router) Tools() []string {
	tools := make([]string, 0, len(r.toolServers))
	for tool := range r.toolServers {
		tools = append(tools, tool)
	}
	sort.Strings(tools)
	return tools
}

// Clear removes all mappings and load counters.
func (r *Router) Clear() {
	r.toolServers = make(map[string][]string)
	r.load = make(map[string]int)
}
