// Package db opens the database that stores the dispatch history.
package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InMemoryDSN selects a private in-memory sqlite database.
const InMemoryDSN = ":memory:"

// NewDBConnection opens a database connection for the given DSN.
// Postgres URLs (postgres:// or postgresql://) use the postgres driver, anything else
// is treated as a sqlite path. An empty DSN opens an in-memory sqlite database.
func NewDBConnection(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	if isPostgresDSN(dsn) {
		conn, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return conn, nil
	}

	if dsn == "" {
		dsn = InMemoryDSN
	}
	conn, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", dsn, err)
	}
	if dsn == InMemoryDSN {
		// every new connection to :memory: would see a different, empty database
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return conn, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
