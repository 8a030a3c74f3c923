package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Note is one row of free_notes, keyed by (user, date).
type Note struct {
	ID        int64     `json:"note_id"`
	UserID    int64     `json:"user_id"`
	NoteDate  string    `json:"note_date"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const noteColumns = `note_id, user_id, note_date, content, created_at, updated_at`

// UpsertNote creates or replaces the note for (user, date) and reports
// whether a new row was created.
func (s *Store) UpsertNote(ctx context.Context, userID int64, noteDate, content string) (*Note, bool, error) {
	now := time.Now().UTC()

	var existingID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT note_id FROM free_notes WHERE user_id = ? AND note_date = ?
	`, userID, noteDate).Scan(&existingID)

	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO free_notes (user_id, note_date, content, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, userID, noteDate, content, now, now)
		if err != nil {
			return nil, false, err
		}
		existingID, err = res.LastInsertId()
		if err != nil {
			return nil, false, err
		}
		created = true
	case err != nil:
		return nil, false, err
	default:
		_, err = s.db.ExecContext(ctx, `
			UPDATE free_notes SET content = ?, updated_at = ? WHERE note_id = ?
		`, content, now, existingID)
		if err != nil {
			return nil, false, err
		}
	}

	note, err := s.getNote(ctx, existingID)
	return note, created, err
}

// GetNoteByDate fetches the note for (user, date).
func (s *Store) GetNoteByDate(ctx context.Context, userID int64, noteDate string) (*Note, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+noteColumns+` FROM free_notes WHERE user_id = ? AND note_date = ?
	`, userID, noteDate)
	return scanNote(row)
}

// GetNote fetches a note by id scoped to its owner.
func (s *Store) GetNote(ctx context.Context, noteID, userID int64) (*Note, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+noteColumns+` FROM free_notes WHERE note_id = ? AND user_id = ?
	`, noteID, userID)
	return scanNote(row)
}

func (s *Store) getNote(ctx context.Context, noteID int64) (*Note, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+noteColumns+` FROM free_notes WHERE note_id = ?
	`, noteID)
	return scanNote(row)
}

func scanNote(row *sql.Row) (*Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.UserID, &n.NoteDate, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNotes returns the most recent notes, newest date first.
func (s *Store) ListNotes(ctx context.Context, userID int64, limit int) ([]*Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+noteColumns+` FROM free_notes
		WHERE user_id = ? ORDER BY note_date DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.NoteDate, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, &n)
	}
	return notes, rows.Err()
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(ctx context.Context, noteID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM free_notes WHERE note_id = ?`, noteID)
	return err
}
