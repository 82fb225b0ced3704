package migrations

import (
	"testing"

	"github.com/mcpjungle/mcphost/internal/db"
	"github.com/mcpjungle/mcphost/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	conn, err := db.NewDBConnection("")
	require.NoError(t, err)

	require.NoError(t, Migrate(conn))
	assert.True(t, conn.Migrator().HasTable(&model.DispatchEvent{}))

	// running twice is harmless
	assert.NoError(t, Migrate(conn))
}
