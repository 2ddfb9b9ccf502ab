// Package store provides storage backends for the Arogya dev server.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "embed"

	"github.com/arogya-health/arogya/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the permissions used when creating the
// database directory.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists consultation state in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store. The DSN is a file path; the
// containing directory is created when missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "dsn_set", cfg.DSN != "")

	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite store ready", "dsn", cfg.DSN)

	return &SQLiteStore{db: db}, nil
}

// SaveSession inserts or replaces a session wholesale.
func (s *SQLiteStore) SaveSession(session models.Session) error {
	symptoms := strings.Join(session.Symptoms, ",")
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sessions
		(id, user_id, language, current_stage, symptoms, severity_level, emergency_detected, health_guide_generated, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, string(session.Language), string(session.CurrentStage), symptoms,
		string(session.SeverityLevel), session.EmergencyDetected, session.HealthGuideGenerated,
		session.CreatedAt, session.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveSession failed", "error", err, "session_id", session.ID)
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

// GetSession returns the session or models.ErrSessionNotFound.
func (s *SQLiteStore) GetSession(id string) (*models.Session, error) {
	row := s.db.QueryRow(`SELECT id, user_id, language, current_stage, symptoms, severity_level,
		emergency_detected, health_guide_generated, created_at, updated_at
		FROM sessions WHERE id = ?`, id)

	var session models.Session
	var userID, language, symptoms, severity sql.NullString
	err := row.Scan(&session.ID, &userID, &language, &session.CurrentStage, &symptoms, &severity,
		&session.EmergencyDetected, &session.HealthGuideGenerated, &session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session %s: %w", id, err)
	}
	session.UserID = userID.String
	session.Language = models.LanguageCode(language.String)
	session.SeverityLevel = models.Severity(severity.String)
	if symptoms.String != "" {
		session.Symptoms = strings.Split(symptoms.String, ",")
	}
	return &session, nil
}

// AddMessage appends a message to the transcript.
func (s *SQLiteStore) AddMessage(m models.Message) error {
	_, err := s.db.Exec(`INSERT INTO messages (id, session_id, sender, content, language, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.SessionID, m.Sender, m.Content, string(m.Language), m.Timestamp)
	if err != nil {
		slog.Error("SQLiteStore AddMessage failed", "error", err, "session_id", m.SessionID)
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// GetMessages returns the transcript in timestamp order.
func (s *SQLiteStore) GetMessages(sessionID string) ([]models.Message, error) {
	rows, err := s.db.Query(`SELECT id, session_id, sender, content, language, timestamp
		FROM messages WHERE session_id = ? ORDER BY timestamp ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		var language sql.NullString
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Content, &language, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Language = models.LanguageCode(language.String)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// CountMessages returns the number of stored messages for a session.
func (s *SQLiteStore) CountMessages(sessionID string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// SaveHealthGuide stores the guide serialized as JSON.
func (s *SQLiteStore) SaveHealthGuide(g models.HealthGuide) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode health guide: %w", err)
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO health_guides (session_id, guide_json, created_at) VALUES (?, ?, ?)`,
		g.SessionID, string(raw), g.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveHealthGuide failed", "error", err, "session_id", g.SessionID)
		return fmt.Errorf("failed to save health guide: %w", err)
	}
	return nil
}

// GetHealthGuide returns the stored guide or models.ErrGuideNotFound.
func (s *SQLiteStore) GetHealthGuide(sessionID string) (*models.HealthGuide, error) {
	var raw string
	err := s.db.QueryRow(`SELECT guide_json FROM health_guides WHERE session_id = ?`, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrGuideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query health guide: %w", err)
	}
	var guide models.HealthGuide
	if err := json.Unmarshal([]byte(raw), &guide); err != nil {
		return nil, fmt.Errorf("failed to decode health guide: %w", err)
	}
	return &guide, nil
}

// AddFeedback records a feedback submission.
func (s *SQLiteStore) AddFeedback(f models.Feedback) error {
	aspects := strings.Join(f.HelpfulAspects, "\n")
	_, err := s.db.Exec(`INSERT INTO feedback (id, session_id, rating, comments, helpful_aspects, improvement_suggestions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.SessionID, f.Rating, f.Comments, aspects, f.ImprovementSuggestions, f.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore AddFeedback failed", "error", err, "session_id", f.SessionID)
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
