// Package store is the SQLite persistence layer. All access goes
// through prepared statements on a single *sql.DB; each exported write
// is one transaction.
package store

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a row does not exist or is owned by a
// different user. Callers distinguish it with errors.Is.
var ErrNotFound = errors.New("record not found")

// Store wraps the SQLite database.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (creating if necessary) the database at dbPath and applies
// migrations. A leading ~ is expanded to the user home directory.
func Open(dbPath string, logger zerolog.Logger) (*Store, error) {
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, log: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug().Str("path", dbPath).Msg("database opened")
	return s, nil
}

// migrate creates the schema. The partial unique index on
// (user_id, task_date, top3_slot) makes concurrent slot assignment a
// store-level conflict instead of a silent double booking.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			username TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			email_verified INTEGER NOT NULL DEFAULT 1,
			last_login_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS daily_tasks (
			task_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(user_id),
			task_date TEXT NOT NULL,
			step TEXT NOT NULL CHECK (step IN ('CAPTURE', 'CATEGORIZE', 'ACT')),
			priority TEXT CHECK (priority IN ('URGENT_IMPORTANT', 'IMPORTANT', 'LATER', 'LET_GO')),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			estimated_time TEXT,
			status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'IN_PROGRESS', 'COMPLETED')),
			is_top3 INTEGER NOT NULL DEFAULT 0,
			top3_slot INTEGER CHECK (top3_slot BETWEEN 1 AND 3),
			action_detail TEXT,
			time_slot TEXT CHECK (time_slot IN ('MORNING', 'AFTERNOON', 'EVENING')),
			completed_at DATETIME,
			due_date TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS daily_reviews (
			review_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(user_id),
			review_date TEXT NOT NULL,
			morning_energy INTEGER,
			current_mood TEXT,
			stress_level INTEGER,
			stress_factors TEXT,
			well_done_1 TEXT,
			well_done_2 TEXT,
			well_done_3 TEXT,
			improvement TEXT,
			gratitude TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE (user_id, review_date)
		);

		CREATE TABLE IF NOT EXISTS weekly_goals (
			goal_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(user_id),
			week_start_date TEXT NOT NULL,
			week_end_date TEXT NOT NULL,
			goal_order INTEGER NOT NULL CHECK (goal_order BETWEEN 1 AND 3),
			title TEXT NOT NULL,
			progress_rate INTEGER NOT NULL DEFAULT 0,
			target_date TEXT,
			status TEXT NOT NULL DEFAULT 'IN_PROGRESS' CHECK (status IN ('IN_PROGRESS', 'COMPLETED', 'CANCELLED')),
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS free_notes (
			note_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(user_id),
			note_date TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE (user_id, note_date)
		);

		CREATE TABLE IF NOT EXISTS let_go_items (
			let_go_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(user_id),
			task_date TEXT NOT NULL,
			content TEXT NOT NULL,
			task_id INTEGER REFERENCES daily_tasks(task_id),
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_user_date ON daily_tasks(user_id, task_date);
		CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON daily_tasks(user_id, status);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_tasks_top3_slot
			ON daily_tasks(user_id, task_date, top3_slot) WHERE is_top3 = 1;
		CREATE INDEX IF NOT EXISTS idx_letgo_user_date ON let_go_items(user_id, task_date);
		CREATE INDEX IF NOT EXISTS idx_letgo_task ON let_go_items(task_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsUniqueViolation reports whether err is a SQLite unique constraint
// failure, e.g. from the TOP-3 slot index.
func IsUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
