package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Task is one row of daily_tasks. Nullable columns are pointers so the
// JSON encoding matches the wire format directly.
type Task struct {
	ID            int64      `json:"task_id"`
	UserID        int64      `json:"user_id"`
	TaskDate      string     `json:"task_date"`
	Step          string     `json:"step"`
	Priority      *string    `json:"priority"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	EstimatedTime *string    `json:"estimated_time"`
	Status        string     `json:"status"`
	IsTop3        bool       `json:"is_top3"`
	Top3Slot      *int       `json:"top3_slot"`
	ActionDetail  *string    `json:"action_detail"`
	TimeSlot      *string    `json:"time_slot"`
	CompletedAt   *time.Time `json:"completed_at"`
	DueDate       *string    `json:"due_date"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TaskPatch is a partial update. Nil fields are left unchanged.
// SetCompletedAt distinguishes "clear completed_at" from "leave it".
type TaskPatch struct {
	Title          *string
	Description    *string
	Priority       *string
	EstimatedTime  *string
	Status         *string
	TimeSlot       *string
	DueDate        *string
	SetCompletedAt bool
	CompletedAt    *time.Time
}

const taskColumns = `task_id, user_id, task_date, step, priority, title, description,
	estimated_time, status, is_top3, top3_slot, action_detail, time_slot,
	completed_at, due_date, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*Task, error) {
	var t Task
	var priority, estimatedTime, actionDetail, timeSlot, dueDate sql.NullString
	var top3Slot sql.NullInt64
	var completedAt sql.NullTime

	err := row.Scan(&t.ID, &t.UserID, &t.TaskDate, &t.Step, &priority, &t.Title,
		&t.Description, &estimatedTime, &t.Status, &t.IsTop3, &top3Slot,
		&actionDetail, &timeSlot, &completedAt, &dueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if priority.Valid {
		t.Priority = &priority.String
	}
	if estimatedTime.Valid {
		t.EstimatedTime = &estimatedTime.String
	}
	if top3Slot.Valid {
		slot := int(top3Slot.Int64)
		t.Top3Slot = &slot
	}
	if actionDetail.Valid {
		t.ActionDetail = &actionDetail.String
	}
	if timeSlot.Valid {
		t.TimeSlot = &timeSlot.String
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	if dueDate.Valid {
		t.DueDate = &dueDate.String
	}
	return &t, nil
}

// CreateTask inserts a new capture-step task and returns the stored row.
func (s *Store) CreateTask(ctx context.Context, userID int64, taskDate, step, title, description string) (*Task, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_tasks (user_id, task_date, step, title, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'PENDING', ?, ?)
	`, userID, taskDate, step, title, description, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetTask(ctx, id, userID)
}

// GetTask fetches a task by id, scoped to its owner.
func (s *Store) GetTask(ctx context.Context, taskID, userID int64) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM daily_tasks WHERE task_id = ? AND user_id = ?
	`, taskID, userID)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return task, err
}

// ListTasksByDate returns all tasks for one user and calendar day,
// oldest first.
func (s *Store) ListTasksByDate(ctx context.Context, userID int64, taskDate string) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM daily_tasks
		WHERE user_id = ? AND task_date = ?
		ORDER BY created_at ASC, task_id ASC
	`, userID, taskDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

// ListIncompleteTasks returns every task not yet completed, ordered by
// due date with undated tasks last.
func (s *Store) ListIncompleteTasks(ctx context.Context, userID int64) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+` FROM daily_tasks
		WHERE user_id = ? AND status != 'COMPLETED'
		ORDER BY due_date IS NULL, due_date ASC, task_date ASC, task_id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]*Task, error) {
	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CategorizeTask advances a task to the categorize step and, for LET_GO,
// mirrors it into let_go_items in the same transaction.
func (s *Store) CategorizeTask(ctx context.Context, task *Task, priority, estimatedTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		UPDATE daily_tasks
		SET step = 'CATEGORIZE', priority = ?, estimated_time = ?, updated_at = ?
		WHERE task_id = ?
	`, priority, nullString(estimatedTime), now, task.ID)
	if err != nil {
		return fmt.Errorf("categorize task: %w", err)
	}

	if priority == "LET_GO" {
		content := task.Title
		if task.Description != "" {
			content = task.Title + " - " + task.Description
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO let_go_items (user_id, task_date, content, task_id, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, task.UserID, task.TaskDate, content, task.ID, now)
		if err != nil {
			return fmt.Errorf("mirror let-go item: %w", err)
		}
	}

	return tx.Commit()
}

// Top3SlotHolder returns the id of the task holding slot for the given
// user and date, or 0 when the slot is free.
func (s *Store) Top3SlotHolder(ctx context.Context, userID int64, taskDate string, slot int) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT task_id FROM daily_tasks
		WHERE user_id = ? AND task_date = ? AND is_top3 = 1 AND top3_slot = ?
	`, userID, taskDate, slot).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return id, err
}

// Top3Slots returns the occupied TOP-3 slots for one user and date.
func (s *Store) Top3Slots(ctx context.Context, userID int64, taskDate string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT top3_slot FROM daily_tasks
		WHERE user_id = ? AND task_date = ? AND is_top3 = 1 AND top3_slot IS NOT NULL
		ORDER BY top3_slot ASC
	`, userID, taskDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []int
	for rows.Next() {
		var slot int
		if err := rows.Scan(&slot); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// SetTop3 promotes a task to the act step with the given slot. The
// partial unique index idx_tasks_top3_slot rejects a concurrent claim
// of the same slot.
func (s *Store) SetTop3(ctx context.Context, taskID int64, slot int, actionDetail, timeSlot string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		UPDATE daily_tasks
		SET step = 'ACT', is_top3 = 1, top3_slot = ?, action_detail = ?, time_slot = ?, updated_at = ?
		WHERE task_id = ?
	`, slot, actionDetail, nullString(timeSlot), now, taskID)
	if err != nil {
		return fmt.Errorf("set top3: %w", err)
	}
	return nil
}

// SetTaskStatus updates status and completed_at together so the
// "completed_at set iff COMPLETED" invariant holds on every path.
func (s *Store) SetTaskStatus(ctx context.Context, taskID int64, status string, completedAt *time.Time) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		UPDATE daily_tasks SET status = ?, completed_at = ?, updated_at = ? WHERE task_id = ?
	`, status, nullTime(completedAt), now, taskID)
	return err
}

// UpdateTask applies a partial update. Returns ErrNotFound via GetTask
// semantics only at the service layer; here an empty patch is a no-op
// error for the caller to translate.
func (s *Store) UpdateTask(ctx context.Context, taskID int64, patch TaskPatch) error {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)

	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.EstimatedTime != nil {
		add("estimated_time", *patch.EstimatedTime)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.TimeSlot != nil {
		add("time_slot", *patch.TimeSlot)
	}
	if patch.DueDate != nil {
		add("due_date", *patch.DueDate)
	}
	if patch.SetCompletedAt {
		add("completed_at", nullTime(patch.CompletedAt))
	}

	if len(sets) == 0 {
		return errors.New("empty patch")
	}

	add("updated_at", time.Now().UTC())
	args = append(args, taskID)

	query := "UPDATE daily_tasks SET " + strings.Join(sets, ", ") + " WHERE task_id = ?"
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// DeleteTask removes a task and any let-go mirror rows linked to it,
// in one transaction.
func (s *Store) DeleteTask(ctx context.Context, taskID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM let_go_items WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("delete let-go mirror: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM daily_tasks WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return tx.Commit()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
