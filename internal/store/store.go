// Package store persists interview sessions. Every driver applies optimistic locking
// on Session.Version: Create sets it to 1 and each successful Update increments it.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zhouzirui/interview-partner/backend/internal/config"
	"github.com/zhouzirui/interview-partner/backend/internal/model/interview"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrAlreadyExists    = errors.New("session already exists")
	ErrVersionConflict  = errors.New("session version conflict")
	ErrInvalidStoreType = errors.New("invalid store driver")
	ErrInvalidConfig    = errors.New("invalid store configuration")
)

// Repository is the session persistence boundary.
type Repository interface {
	// Create stores a new session and sets its Version to 1.
	Create(ctx context.Context, session *interview.Session) error

	// Get returns a copy of the stored session or ErrNotFound.
	Get(ctx context.Context, id string) (*interview.Session, error)

	// Update replaces the stored session when the versions match and increments
	// session.Version. Returns ErrVersionConflict or ErrNotFound otherwise.
	Update(ctx context.Context, session *interview.Session) error

	// Delete removes the session. Deleting a missing session returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases driver resources.
	Close() error
}

// Driver names accepted by New.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverSupabase = "supabase"
)

// New builds the repository selected by cfg.Driver.
func New(ctx context.Context, cfg config.StoreConfig) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverRedis:
		return NewRedisStoreFromConfig(ctx, cfg)
	case DriverSQLite:
		return NewSQLiteStore(cfg.SQLitePath)
	case DriverSupabase:
		return NewSupabaseStore(SupabaseConfig{URL: cfg.SupabaseURL, APIKey: cfg.SupabaseAPIKey, Table: cfg.SupabaseTable})
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreType, cfg.Driver)
	}
}
