package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// LetGoItem is one row of let_go_items. TaskID links a mirror entry to
// the LET_GO task it was created from; standalone entries have no link.
type LetGoItem struct {
	ID        int64     `json:"let_go_id"`
	UserID    int64     `json:"user_id"`
	TaskDate  string    `json:"task_date"`
	Content   string    `json:"content"`
	TaskID    *int64    `json:"task_id"`
	CreatedAt time.Time `json:"created_at"`
}

const letGoColumns = `let_go_id, user_id, task_date, content, task_id, created_at`

// CreateLetGoItem inserts a standalone let-go entry.
func (s *Store) CreateLetGoItem(ctx context.Context, userID int64, taskDate, content string) (*LetGoItem, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO let_go_items (user_id, task_date, content, created_at)
		VALUES (?, ?, ?, ?)
	`, userID, taskDate, content, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+letGoColumns+` FROM let_go_items WHERE let_go_id = ?
	`, id)
	return scanLetGoItem(row)
}

// GetLetGoItem fetches an entry scoped to its owner.
func (s *Store) GetLetGoItem(ctx context.Context, letGoID, userID int64) (*LetGoItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+letGoColumns+` FROM let_go_items WHERE let_go_id = ? AND user_id = ?
	`, letGoID, userID)
	return scanLetGoItem(row)
}

func scanLetGoItem(row *sql.Row) (*LetGoItem, error) {
	var item LetGoItem
	var taskID sql.NullInt64

	err := row.Scan(&item.ID, &item.UserID, &item.TaskDate, &item.Content, &taskID, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if taskID.Valid {
		item.TaskID = &taskID.Int64
	}
	return &item, nil
}

// ListLetGoItems returns the entries for one date, newest first.
func (s *Store) ListLetGoItems(ctx context.Context, userID int64, taskDate string) ([]*LetGoItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+letGoColumns+` FROM let_go_items
		WHERE user_id = ? AND task_date = ?
		ORDER BY created_at DESC, let_go_id DESC
	`, userID, taskDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*LetGoItem
	for rows.Next() {
		var item LetGoItem
		var taskID sql.NullInt64
		if err := rows.Scan(&item.ID, &item.UserID, &item.TaskDate, &item.Content, &taskID, &item.CreatedAt); err != nil {
			return nil, err
		}
		if taskID.Valid {
			item.TaskID = &taskID.Int64
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// ListLetGoItemsByTask returns the mirror entries linked to a task.
func (s *Store) ListLetGoItemsByTask(ctx context.Context, taskID int64) ([]*LetGoItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+letGoColumns+` FROM let_go_items WHERE task_id = ?
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*LetGoItem
	for rows.Next() {
		var item LetGoItem
		var linked sql.NullInt64
		if err := rows.Scan(&item.ID, &item.UserID, &item.TaskDate, &item.Content, &linked, &item.CreatedAt); err != nil {
			return nil, err
		}
		if linked.Valid {
			item.TaskID = &linked.Int64
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// DeleteLetGoItem removes an entry.
func (s *Store) DeleteLetGoItem(ctx context.Context, letGoID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM let_go_items WHERE let_go_id = ?`, letGoID)
	return err
}
