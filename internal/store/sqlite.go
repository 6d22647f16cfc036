package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zhouzirui/interview-partner/backend/internal/model/interview"
)

// SQLiteStore keeps sessions in a single table with the full record as a JSON payload.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("%w: SQLITE_PATH is required", ErrInvalidConfig)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS interview_sessions (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		status TEXT NOT NULL,
		version INTEGER NOT NULL,
		payload TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_interview_sessions_status ON interview_sessions(status, updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Create implements Repository.
func (s *SQLiteStore) Create(ctx context.Context, session *interview.Session) error {
	stampCreated(session)

	payload, err := encodeSession(session)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO interview_sessions (id, role, status, version, payload, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query,
		session.ID, session.Role, string(session.Status), session.Version, string(payload),
		session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// Get implements Repository.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*interview.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM interview_sessions WHERE id = ?`, id)

	var payload string
	err := row.Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}
	return decodeSession([]byte(payload))
}

// Update implements Repository. The version predicate makes the write conditional.
func (s *SQLiteStore) Update(ctx context.Context, session *interview.Session) error {
	next := session.Clone()
	next.Version++
	next.UpdatedAt = time.Now().UTC()

	payload, err := encodeSession(next)
	if err != nil {
		return err
	}

	query := `
	UPDATE interview_sessions
	SET status = ?, version = ?, payload = ?, updated_at = ?
	WHERE id = ? AND version = ?`

	result, err := s.db.ExecContext(ctx, query,
		string(next.Status), next.Version, string(payload), next.UpdatedAt.Unix(),
		session.ID, session.Version,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return s.missOrConflict(ctx, session.ID)
	}

	session.Version = next.Version
	session.UpdatedAt = next.UpdatedAt
	return nil
}

func (s *SQLiteStore) missOrConflict(ctx context.Context, id string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM interview_sessions WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	return ErrVersionConflict
}

// Delete implements Repository.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM interview_sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Close implements Repository.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
