// Package discovery tracks the servers known to the directory and derives their liveness from heartbeats.
package discovery

import (
	"sort"
	"strings"
	"time"

	"github.com/mcpjungle/mcphost/internal"
	"github.com/mcpjungle/mcphost/internal/model"
)

// Clock returns the current time.
type Clock func() time.Time

// Option configures a ServiceDiscovery.
type Option func(*ServiceDiscovery)

// WithClock overrides the time source used for heartbeats and liveness checks.
func WithClock(c Clock) Option {
	return func(d *ServiceDiscovery) {
		d.now = c
	}
}

// RegisterInput holds the descriptive fields of a server registration.
type RegisterInput struct {
	Name        string
	Description string
	Version     string
	Host        string
	Port        int
	Tags        []string
	Metadata    map[string]any
}

type record struct {
	server *model.Server
	seq    uint64
}

// ServiceDiscovery is the directory of servers.
// Liveness is only recomputed by CheckLiveness or forced true by Heartbeat, never on read.
//
// ServiceDiscovery is not safe for concurrent use.
type ServiceDiscovery struct {
	servers  map[string]*record
	tagIndex map[string]map[string]struct{}

	timeout time.Duration
	now     Clock
	seq     uint64
}

// New creates an empty directory that considers a server dead once
// more than timeout has passed since its last heartbeat.
func New(timeout time.Duration, opts ...Option) *ServiceDiscovery {
	d := &ServiceDiscovery{
		servers:  make(map[string]*record),
		tagIndex: make(map[string]map[string]struct{}),
		timeout:  timeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Timeout returns the configured heartbeat timeout.
func (d *ServiceDiscovery) Timeout() time.Duration {
	return d.timeout
}

// Register adds a server and returns its freshly assigned id.
// A new server starts live with its heartbeat set to now.
func (d *ServiceDiscovery) Register(in RegisterInput) string {
	id := internal.NewUniqueID(internal.ServerIDPrefix, func(id string) bool {
		_, exists := d.servers[id]
		return exists
	})

	s := &model.Server{
		ID:            id,
		Name:          in.Name,
		Description:   in.Description,
		Version:       in.Version,
		Host:          in.Host,
		Port:          in.Port,
		Tags:          model.NewTagSet(in.Tags...),
		Metadata:      make(map[string]any, len(in.Metadata)),
		LastHeartbeat: d.now().UTC(),
		Active:        true,
	}
	for k, v := range in.Metadata {
		s.Metadata[k] = v
	}

	d.seq++
	d.servers[id] = &record{server: s, seq: d.seq}
	for tag := range s.Tags {
		ids, ok := d.tagIndex[tag]
		if !ok {
			ids = make(map[string]struct{})
			d.tagIndex[tag] = ids
		}
		ids[id] = struct{}{}
	}
	return id
}

// Unregister removes a server and its tag index entries.
// It returns false if the id is unknown.
func (d *ServiceDiscovery) Unregister(id string) bool {
	rec, ok := d.servers[id]
	if !ok {
		return false
	}
	for tag := range rec.server.Tags {
		ids := d.tagIndex[tag]
		delete(ids, id)
		if len(ids) == 0 {
			delete(d.tagIndex, tag)
		}
	}
	delete(d.servers, id)
	return true
}

// Heartbeat refreshes a server's heartbeat timestamp and marks it live.
// It returns false if the id is unknown.
func (d *ServiceDiscovery) Heartbeat(id string) bool {
	rec, ok := d.servers[id]
	if !ok {
		return false
	}
	rec.server.LastHeartbeat = d.now().UTC()
	rec.server.Active = true
	return true
}

// CheckLiveness recomputes the liveness flag of every server and returns
// the ids of servers that are inactive after the pass, in registration order.
func (d *ServiceDiscovery) CheckLiveness() []string {
	now := d.now()
	inactive := make([]*record, 0)
	for _, rec := range d.servers {
		rec.server.Active = now.Sub(rec.server.LastHeartbeat) <= d.timeout
		if !rec.server.Active {
			inactive = append(inactive, rec)
		}
	}
	sortRecords(inactive)

	ids := make([]string, len(inactive))
	for i, rec := range inactive {
		ids[i] = rec.server.ID
	}
	return ids
}

// Get returns a copy of the server with the given id.
func (d *ServiceDiscovery) Get(id string) (model.Server, bool) {
	rec, ok := d.servers[id]
	if !ok {
		return model.Server{}, false
	}
	return rec.server.Clone(), true
}

// IsActive reports whether the server exists and is currently marked live.
func (d *ServiceDiscovery) IsActive(id string) bool {
	rec, ok := d.servers[id]
	return ok && rec.server.Active
}

// Find returns the servers carrying every given tag whose name contains nameContains
// (case-insensitive). With activeOnly set, servers currently marked inactive are skipped.
func (d *ServiceDiscovery) Find(tags []string, nameContains string, activeOnly bool) []model.Server {
	var candidates map[string]struct{}
	for _, tag := range tags {
		ids, ok := d.tagIndex[tag]
		if !ok {
			return []model.Server{}
		}
		if candidates == nil {
			candidates = make(map[string]struct{}, len(ids))
			for id := range ids {
				candidates[id] = struct{}{}
			}
			continue
		}
		for id := range candidates {
			if _, ok := ids[id]; !ok {
				delete(candidates, id)
			}
		}
	}

	needle := strings.ToLower(nameContains)
	matches := make([]*record, 0)
	for id, rec := range d.servers {
		if candidates != nil {
			if _, ok := candidates[id]; !ok {
				continue
			}
		}
		if activeOnly && !rec.server.Active {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(rec.server.Name), needle) {
			continue
		}
		matches = append(matches, rec)
	}
	return cloneRecords(matches)
}

// All returns every server, or only the live ones when activeOnly is set.
func (d *ServiceDiscovery) All(activeOnly bool) []model.Server {
	return d.Find(nil, "", activeOnly)
}

// Len returns the number of registered servers.
func (d *ServiceDiscovery) Len() int {
	return len(d.servers)
}

// Clear removes every server.
func (d *ServiceDiscovery) Clear() {
	d.servers = make(map[string]*record)
	d.tagIndex = make(map[string]map[string]struct{})
}

func sortRecords(recs []*record) {
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].seq < recs[j].seq
	})
}

func cloneRecords(recs []*record) []model.Server {
	sortRecords(recs)
	out := make([]model.Server, len(recs))
	for i, rec := range recs {
		out[i] = rec.server.Clone()
	}
	return out
}
