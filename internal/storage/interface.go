// Package storage defines the persistence contract for handover rules
// and relay logs, with SQLite and PostgreSQL adapters registered behind
// a factory.
package storage

import (
	"context"
	"time"

	"relay-router/internal/models"
)

// Storage is the persistence contract for the relay router. Rule reads
// filter on user_id and is_active only; expiry is handled by the
// routing engine, never by the store.
type Storage interface {
	// Connection management
	Close() error
	Health() error

	// Handover rules
	CreateRule(ctx context.Context, rule *models.Rule) error
	GetRule(ctx context.Context, id string) (*models.Rule, error)

	// FindActiveRule returns the active rule for a user, or nil when
	// none exists. Absence is not an error.
	FindActiveRule(ctx context.Context, userID string) (*models.Rule, error)

	ListRules(ctx context.Context, limit, offset int) ([]*models.Rule, int, error)

	// DeactivateRule flips is_active to false. Deactivating an already
	// inactive rule is a no-op, not an error.
	DeactivateRule(ctx context.Context, id string) error

	DeleteRule(ctx context.Context, id string) error

	// Relay logs (append-only)
	AppendLogEvent(ctx context.Context, event *models.LogEvent) error
	ListLogEvents(ctx context.Context, limit, offset int) ([]*models.LogEvent, int, error)

	// ListLogEventsSince returns the events logged for a user's rule
	// window, oldest first. Used by the return briefing.
	ListLogEventsSince(ctx context.Context, userID string, since time.Time) ([]*models.LogEvent, error)

	// DeleteLogEventsBefore prunes old events and reports how many
	// rows were removed. Used by the retention sweep.
	DeleteLogEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// StorageConfig is implemented by adapter-specific configurations.
type StorageConfig interface {
	Validate() error
	GetType() string
	GetConnectionString() string
}

// StorageFactory creates a storage adapter from its configuration.
type StorageFactory interface {
	Create(config StorageConfig) (Storage, error)
}
