// Package migrations keeps the database schema in sync with the models.
package migrations

import (
	"fmt"

	"github.com/mcpjungle/mcphost/internal/model"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables used by the server.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.DispatchEvent{}); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}
