package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/supabase-community/supabase-go"

	"github.com/zhouzirui/interview-partner/backend/internal/model/interview"
)

const defaultSupabaseTable = "interview_sessions"

// SupabaseConfig holds the hosted Postgres connection settings.
type SupabaseConfig struct {
	URL    string
	APIKey string
	Table  string
}

// SupabaseStore keeps sessions in a PostgREST table shaped like the SQLite schema.
type SupabaseStore struct {
	client *supabase.Client
	table  string
}

type sessionRow struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Version   int64  `json:"version"`
	Payload   string `json:"payload"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// NewSupabaseStore validates cfg and creates the client.
func NewSupabaseStore(cfg SupabaseConfig) (*SupabaseStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: SUPABASE_URL is required", ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: SUPABASE_API_KEY is required", ErrInvalidConfig)
	}
	if cfg.Table == "" {
		cfg.Table = defaultSupabaseTable
	}

	client, err := supabase.NewClient(cfg.URL, cfg.APIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &SupabaseStore{client: client, table: cfg.Table}, nil
}

func toRow(session *interview.Session) (sessionRow, error) {
	payload, err := encodeSession(session)
	if err != nil {
		return sessionRow{}, err
	}
	return sessionRow{
		ID:        session.ID,
		Role:      session.Role,
		Status:    string(session.Status),
		Version:   session.Version,
		Payload:   string(payload),
		CreatedAt: session.CreatedAt.Unix(),
		UpdatedAt: session.UpdatedAt.Unix(),
	}, nil
}

// Create implements Repository.
func (s *SupabaseStore) Create(ctx context.Context, session *interview.Session) error {
	existing, err := s.selectRows(session.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return ErrAlreadyExists
	}

	stampCreated(session)
	row, err := toRow(session)
	if err != nil {
		return err
	}

	if _, _, err := s.client.From(s.table).Insert(row, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// Get implements Repository.
func (s *SupabaseStore) Get(ctx context.Context, id string) (*interview.Session, error) {
	rows, err := s.selectRows(id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return decodeSession([]byte(rows[0].Payload))
}

// Update implements Repository with a version-filtered PATCH.
func (s *SupabaseStore) Update(ctx context.Context, session *interview.Session) error {
	next := session.Clone()
	next.Version++
	next.UpdatedAt = time.Now().UTC()

	row, err := toRow(next)
	if err != nil {
		return err
	}

	var updated []sessionRow
	_, err = s.client.From(s.table).
		Update(row, "representation", "").
		Eq("id", session.ID).
		Eq("version", strconv.FormatInt(session.Version, 10)).
		ExecuteTo(&updated)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if len(updated) == 0 {
		existing, err := s.selectRows(session.ID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}

	session.Version = next.Version
	session.UpdatedAt = next.UpdatedAt
	return nil
}

// Delete implements Repository.
func (s *SupabaseStore) Delete(ctx context.Context, id string) error {
	var deleted []sessionRow
	_, err := s.client.From(s.table).
		Delete("representation", "").
		Eq("id", id).
		ExecuteTo(&deleted)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if len(deleted) == 0 {
		return ErrNotFound
	}
	return nil
}

// Close implements Repository. The HTTP client holds no resources to release.
func (s *SupabaseStore) Close() error {
	return nil
}

func (s *SupabaseStore) selectRows(id string) ([]sessionRow, error) {
	var rows []sessionRow
	_, err := s.client.From(s.table).
		Select("*", "", false).
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return rows, nil
}
