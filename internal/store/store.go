// Package store provides the SQLite archive of chamber sessions and their
// behavioral records. The archive is write-only history: it is never read
// back to resume a session.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/sweeney/operant-chamber/internal/logic"
)

// ErrNotFound is returned when a session ID does not exist.
var ErrNotFound = errors.New("session not found")

// Session is one archived session.
type Session struct {
	ID        string
	Chamber   string
	Paradigm  string
	Ratio     int
	StartedAt time.Time
	EndedAt   *time.Time
	Records   int
}

// Record is one archived log line.
type Record struct {
	ID        int64
	SessionID string
	Kind      string
	Line      string
	CreatedAt time.Time
}

// Store provides access to the archive database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// WAL keeps the loop's appends from blocking the sessions subcommand
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer at a time
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		chamber TEXT NOT NULL,
		paradigm TEXT NOT NULL,
		ratio INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		line TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_records_session_id ON records(session_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_chamber ON sessions(chamber);
	`
	_, err := s.db.Exec(schema)
	return err
}

// BeginSession archives the start of a session and returns it with a fresh ID.
func (s *Store) BeginSession(chamber string, paradigm logic.Paradigm, ratio int, at time.Time) (*Session, error) {
	sess := &Session{
		ID:        uuid.New().String(),
		Chamber:   chamber,
		Paradigm:  paradigm.String(),
		Ratio:     ratio,
		StartedAt: at.UTC(),
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, chamber, paradigm, ratio, started_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.Chamber, sess.Paradigm, sess.Ratio, sess.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// EndSession stamps the end time of a session.
func (s *Store) EndSession(id string, at time.Time) error {
	res, err := s.db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendRecord archives one record line of a session.
func (s *Store) AppendRecord(sessionID string, rec logic.Record, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO records (session_id, kind, line, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, string(rec.Kind), rec.String(), at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// ListSessions returns sessions newest first, optionally filtered by chamber.
func (s *Store) ListSessions(chamber string) ([]Session, error) {
	query := `SELECT s.id, s.chamber, s.paradigm, s.ratio, s.started_at, s.ended_at,
		(SELECT COUNT(*) FROM records r WHERE r.session_id = s.id)
		FROM sessions s`
	var args []interface{}
	if chamber != "" {
		query += ` WHERE s.chamber = ?`
		args = append(args, chamber)
	}
	query += ` ORDER BY s.started_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var endedAt sql.NullTime
		if err := rows.Scan(&sess.ID, &sess.Chamber, &sess.Paradigm, &sess.Ratio, &sess.StartedAt, &endedAt, &sess.Records); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if endedAt.Valid {
			sess.EndedAt = &endedAt.Time
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Records returns the archived lines of a session in emission order.
func (s *Store) Records(sessionID string) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, kind, line, created_at FROM records WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Kind, &r.Line, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}
