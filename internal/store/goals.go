package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Goal is one row of weekly_goals.
type Goal struct {
	ID            int64     `json:"goal_id"`
	UserID        int64     `json:"user_id"`
	WeekStartDate string    `json:"week_start_date"`
	WeekEndDate   string    `json:"week_end_date"`
	GoalOrder     int       `json:"goal_order"`
	Title         string    `json:"title"`
	ProgressRate  int       `json:"progress_rate"`
	TargetDate    *string   `json:"target_date"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const goalColumns = `goal_id, user_id, week_start_date, week_end_date, goal_order,
	title, progress_rate, target_date, status, created_at, updated_at`

// CreateGoal inserts a weekly goal in progress at 0%.
func (s *Store) CreateGoal(ctx context.Context, userID int64, weekStart, weekEnd string, order int, title, targetDate string) (*Goal, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO weekly_goals (user_id, week_start_date, week_end_date, goal_order, title,
			progress_rate, target_date, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, 'IN_PROGRESS', ?, ?)
	`, userID, weekStart, weekEnd, order, title, nullString(targetDate), now, now)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.getGoal(ctx, id)
}

// GetGoal fetches a goal scoped to its owner.
func (s *Store) GetGoal(ctx context.Context, goalID, userID int64) (*Goal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+` FROM weekly_goals WHERE goal_id = ? AND user_id = ?
	`, goalID, userID)
	return scanGoalRow(row)
}

func (s *Store) getGoal(ctx context.Context, goalID int64) (*Goal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+` FROM weekly_goals WHERE goal_id = ?
	`, goalID)
	return scanGoalRow(row)
}

func scanGoalRow(row *sql.Row) (*Goal, error) {
	var g Goal
	var target sql.NullString

	err := row.Scan(&g.ID, &g.UserID, &g.WeekStartDate, &g.WeekEndDate, &g.GoalOrder,
		&g.Title, &g.ProgressRate, &target, &g.Status, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	g.TargetDate = strPtr(target)
	return &g, nil
}

// ListGoalsForWeek returns the goals for one week ordered by slot.
func (s *Store) ListGoalsForWeek(ctx context.Context, userID int64, weekStart, weekEnd string) ([]*Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+goalColumns+` FROM weekly_goals
		WHERE user_id = ? AND week_start_date = ? AND week_end_date = ?
		ORDER BY goal_order ASC
	`, userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []*Goal
	for rows.Next() {
		var g Goal
		var target sql.NullString
		err := rows.Scan(&g.ID, &g.UserID, &g.WeekStartDate, &g.WeekEndDate, &g.GoalOrder,
			&g.Title, &g.ProgressRate, &target, &g.Status, &g.CreatedAt, &g.UpdatedAt)
		if err != nil {
			return nil, err
		}
		g.TargetDate = strPtr(target)
		goals = append(goals, &g)
	}
	return goals, rows.Err()
}

// UpdateGoalProgress sets the progress rate and status together.
func (s *Store) UpdateGoalProgress(ctx context.Context, goalID int64, progressRate int, status string) (*Goal, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE weekly_goals SET progress_rate = ?, status = ?, updated_at = ? WHERE goal_id = ?
	`, progressRate, status, time.Now().UTC(), goalID)
	if err != nil {
		return nil, err
	}
	return s.getGoal(ctx, goalID)
}

// DeleteGoal removes a goal.
func (s *Store) DeleteGoal(ctx context.Context, goalID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM weekly_goals WHERE goal_id = ?`, goalID)
	return err
}
