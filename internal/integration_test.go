package internal_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mcpjungle/mcphost/client"
	"github.com/mcpjungle/mcphost/internal/api"
	"github.com/mcpjungle/mcphost/internal/db"
	"github.com/mcpjungle/mcphost/internal/migrations"
	"github.com/mcpjungle/mcphost/internal/service/audit"
	"github.com/mcpjungle/mcphost/internal/service/host"
	"github.com/mcpjungle/mcphost/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var objectSchema = map[string]any{"type": "object"}

func TestFailoverIntegration(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	conn, err := db.NewDBConnection("")
	require.NoError(t, err)
	require.NoError(t, migrations.Migrate(conn))
	events := audit.NewLog(conn, logger)

	clk := &clock{now: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	cfg := host.DefaultConfig()
	cfg.HeartbeatTimeout = 30 * time.Second
	cfg.Logger = logger
	cfg.Recorder = events
	cfg.Clock = clk.Now
	h, err := host.New(cfg)
	require.NoError(t, err)

	s, err := api.NewServer(&api.ServerOptions{Port: "0", Host: h, Events: events, Logger: logger})
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	c := client.NewClient(ts.URL, ts.Client())

	register := func(name string, port int) string {
		id, err := c.RegisterServer(&types.RegisterServerInput{Name: name, Host: "127.0.0.1", Port: port})
		require.NoError(t, err)
		_, err = c.RegisterTool(&types.RegisterToolInput{
			Name:         "translate",
			InputSchema:  objectSchema,
			OutputSchema: objectSchema,
			ServerID:     id,
		})
		require.NoError(t, err)
		return id
	}
	first := register("translator-a", 7001)
	second := register("translator-b", 7002)

	res, err := c.Route("translate", "")
	require.NoError(t, err)
	assert.Equal(t, first, res.ServerID)
	res, err = c.Route("translate", "")
	require.NoError(t, err)
	assert.Equal(t, second, res.ServerID)

	// only the second server keeps sending heartbeats
	clk.Advance(31 * time.Second)
	_, err = c.Heartbeat(second)
	require.NoError(t, err)

	purges, err := h.Reconcile(ctx)
	require.NoError(t, err)
	require.Len(t, purges, 1)
	assert.Equal(t, first, purges[0].ServerID)
	assert.Equal(t, []string{"translate"}, purges[0].AffectedTools)

	for i := 0; i < 3; i++ {
		res, err = c.Route("translate", string(types.StrategyRoundRobin))
		require.NoError(t, err)
		assert.Equal(t, second, res.ServerID)
	}

	candidates, err := c.ToolServers("translate")
	require.NoError(t, err)
	assert.Equal(t, []string{second}, candidates)

	active, err := c.ListServers(nil)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second, active[0].ID)

	purgeEvents, err := c.ListEvents("purge", "", 0)
	require.NoError(t, err)
	require.Len(t, purgeEvents, 1)
	assert.Equal(t, first, purgeEvents[0].ServerID)
	assert.Equal(t, []string{"translate"}, purgeEvents[0].AffectedTools)

	routeEvents, err := c.ListEvents("route", second, 0)
	require.NoError(t, err)
	assert.Len(t, routeEvents, 4)

	// a second pass has nothing left to purge
	purges, err = h.Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, purges)
}
