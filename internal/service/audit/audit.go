// Package audit stores the dispatch history of the directory.
package audit

import (
	"context"
	"fmt"

	"github.com/mcpjungle/mcphost/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// DefaultRecentLimit is the number of events returned when no limit is given.
	DefaultRecentLimit = 50
	// MaxRecentLimit caps how many events a single query can return.
	MaxRecentLimit = 1000
)

// Log is a gorm-backed history of routing, completion and purge events.
type Log struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewLog creates a dispatch history log on the given database.
func NewLog(db *gorm.DB, logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{db: db, logger: logger}
}

// Record persists a dispatch event.
func (l *Log) Record(ctx context.Context, e *model.DispatchEvent) error {
	if err := l.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to save %s event: %w", e.Kind, err)
	}
	l.logger.Debug("recorded dispatch event",
		zap.Uint("id", e.ID),
		zap.String("kind", string(e.Kind)),
		zap.String("server_id", e.ServerID),
	)
	return nil
}

// Filter narrows down a history query. Zero-valued fields are not applied.
type Filter struct {
	Kind     model.DispatchEventKind
	ServerID string
	Limit    int
}

// Recent returns the latest events matching the filter, newest first.
// The limit defaults to DefaultRecentLimit and is capped at MaxRecentLimit.
func (l *Log) Recent(ctx context.Context, f Filter) ([]model.DispatchEvent, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	q := l.db.WithContext(ctx).Model(&model.DispatchEvent{})
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.ServerID != "" {
		q = q.Where("server_id = ?", f.ServerID)
	}

	var events []model.DispatchEvent
	if err := q.Order("id DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list dispatch events: %w", err)
	}
	return events, nil
}
