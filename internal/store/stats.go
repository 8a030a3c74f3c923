package store

import (
	"context"
	"database/sql"
)

// DayStat is a per-day aggregate over daily_tasks.
type DayStat struct {
	TaskDate       string  `json:"task_date"`
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	Top3Tasks      int     `json:"top3_tasks"`
	Top3Completed  int     `json:"top3_completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// RangeSummary is a single aggregate over a date range.
type RangeSummary struct {
	TotalTasks         int      `json:"total_tasks"`
	CompletedTasks     int      `json:"completed_tasks"`
	CompletionRate     float64  `json:"completion_rate"`
	Top3Tasks          int      `json:"top3_tasks"`
	Top3Completed      int      `json:"top3_completed"`
	Top3CompletionRate *float64 `json:"top3_completion_rate"`
}

// MonthStat is a per-calendar-month aggregate.
type MonthStat struct {
	Month          string  `json:"month"`
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	CompletionRate float64 `json:"completion_rate"`
	Top3Tasks      int     `json:"top3_tasks"`
	Top3Completed  int     `json:"top3_completed"`
	WorkingDays    int     `json:"working_days"`
}

// PeriodSummary aggregates a multi-month window.
type PeriodSummary struct {
	TotalMonths        int      `json:"total_months"`
	WorkingDays        int      `json:"working_days"`
	TotalTasks         int      `json:"total_tasks"`
	CompletedTasks     int      `json:"completed_tasks"`
	AvgCompletionRate  float64  `json:"avg_completion_rate"`
	Top3Tasks          int      `json:"top3_tasks"`
	Top3Completed      int      `json:"top3_completed"`
	Top3CompletionRate *float64 `json:"top3_completion_rate"`
}

// DailyStats returns per-day aggregates for [start, end], ascending.
// Days with no tasks produce no row.
func (s *Store) DailyStats(ctx context.Context, userID int64, start, end string) ([]*DayStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			task_date,
			COUNT(*) AS total_tasks,
			SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END) AS completed_tasks,
			SUM(CASE WHEN is_top3 = 1 THEN 1 ELSE 0 END) AS top3_tasks,
			SUM(CASE WHEN is_top3 = 1 AND status = 'COMPLETED' THEN 1 ELSE 0 END) AS top3_completed,
			ROUND(CAST(SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END) AS FLOAT) / COUNT(*) * 100, 2) AS completion_rate
		FROM daily_tasks
		WHERE user_id = ? AND task_date BETWEEN ? AND ?
		GROUP BY task_date
		ORDER BY task_date ASC
	`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*DayStat
	for rows.Next() {
		var d DayStat
		if err := rows.Scan(&d.TaskDate, &d.TotalTasks, &d.CompletedTasks, &d.Top3Tasks,
			&d.Top3Completed, &d.CompletionRate); err != nil {
			return nil, err
		}
		stats = append(stats, &d)
	}
	return stats, rows.Err()
}

// RangeStats returns a single aggregate over [start, end]. With no
// tasks in range everything is zero and the TOP-3 rate is null.
func (s *Store) RangeStats(ctx context.Context, userID int64, start, end string) (*RangeSummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) AS total_tasks,
			COALESCE(SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END), 0) AS completed_tasks,
			COALESCE(ROUND(CAST(SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END) AS FLOAT) / NULLIF(COUNT(*), 0) * 100, 2), 0) AS completion_rate,
			COALESCE(SUM(CASE WHEN is_top3 = 1 THEN 1 ELSE 0 END), 0) AS top3_tasks,
			COALESCE(SUM(CASE WHEN is_top3 = 1 AND status = 'COMPLETED' THEN 1 ELSE 0 END), 0) AS top3_completed,
			ROUND(CAST(SUM(CASE WHEN is_top3 = 1 AND status = 'COMPLETED' THEN 1 ELSE 0 END) AS FLOAT) /
				NULLIF(SUM(CASE WHEN is_top3 = 1 THEN 1 ELSE 0 END), 0) * 100, 2) AS top3_completion_rate
		FROM daily_tasks
		WHERE user_id = ? AND task_date BETWEEN ? AND ?
	`, userID, start, end)

	var sum RangeSummary
	var top3Rate sql.NullFloat64
	err := row.Scan(&sum.TotalTasks, &sum.CompletedTasks, &sum.CompletionRate,
		&sum.Top3Tasks, &sum.Top3Completed, &top3Rate)
	if err != nil {
		return nil, err
	}
	if top3Rate.Valid {
		sum.Top3CompletionRate = &top3Rate.Float64
	}
	return &sum, nil
}

// MonthlyTrend returns per-month aggregates for [start, end], ascending
// by month.
func (s *Store) MonthlyTrend(ctx context.Context, userID int64, start, end string) ([]*MonthStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			strftime('%Y-%m', task_date) AS month,
			COUNT(*) AS total_tasks,
			SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END) AS completed_tasks,
			ROUND(CAST(SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END) AS FLOAT) / COUNT(*) * 100, 2) AS completion_rate,
			SUM(CASE WHEN is_top3 = 1 THEN 1 ELSE 0 END) AS top3_tasks,
			SUM(CASE WHEN is_top3 = 1 AND status = 'COMPLETED' THEN 1 ELSE 0 END) AS top3_completed,
			COUNT(DISTINCT task_date) AS working_days
		FROM daily_tasks
		WHERE user_id = ? AND task_date BETWEEN ? AND ?
		GROUP BY strftime('%Y-%m', task_date)
		ORDER BY month ASC
	`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*MonthStat
	for rows.Next() {
		var m MonthStat
		if err := rows.Scan(&m.Month, &m.TotalTasks, &m.CompletedTasks, &m.CompletionRate,
			&m.Top3Tasks, &m.Top3Completed, &m.WorkingDays); err != nil {
			return nil, err
		}
		stats = append(stats, &m)
	}
	return stats, rows.Err()
}

// PeriodStats returns the whole-window aggregate for [start, end].
func (s *Store) PeriodStats(ctx context.Context, userID int64, start, end string) (*PeriodSummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(DISTINCT strftime('%Y-%m', task_date)) AS total_months,
			COUNT(DISTINCT task_date) AS working_days,
			COUNT(*) AS total_tasks,
			COALESCE(SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END), 0) AS completed_tasks,
			COALESCE(ROUND(CAST(SUM(CASE WHEN status = 'COMPLETED' THEN 1 ELSE 0 END) AS FLOAT) / NULLIF(COUNT(*), 0) * 100, 2), 0) AS avg_completion_rate,
			COALESCE(SUM(CASE WHEN is_top3 = 1 THEN 1 ELSE 0 END), 0) AS top3_tasks,
			COALESCE(SUM(CASE WHEN is_top3 = 1 AND status = 'COMPLETED' THEN 1 ELSE 0 END), 0) AS top3_completed,
			ROUND(CAST(SUM(CASE WHEN is_top3 = 1 AND status = 'COMPLETED' THEN 1 ELSE 0 END) AS FLOAT) /
				NULLIF(SUM(CASE WHEN is_top3 = 1 THEN 1 ELSE 0 END), 0) * 100, 2) AS top3_completion_rate
		FROM daily_tasks
		WHERE user_id = ? AND task_date BETWEEN ? AND ?
	`, userID, start, end)

	var sum PeriodSummary
	var top3Rate sql.NullFloat64
	err := row.Scan(&sum.TotalMonths, &sum.WorkingDays, &sum.TotalTasks, &sum.CompletedTasks,
		&sum.AvgCompletionRate, &sum.Top3Tasks, &sum.Top3Completed, &top3Rate)
	if err != nil {
		return nil, err
	}
	if top3Rate.Valid {
		sum.Top3CompletionRate = &top3Rate.Float64
	}
	return &sum, nil
}

// TaskDates returns the distinct task dates in [start, end], ascending.
// Input for streak computation.
func (s *Store) TaskDates(ctx context.Context, userID int64, start, end string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT task_date FROM daily_tasks
		WHERE user_id = ? AND task_date BETWEEN ? AND ?
		ORDER BY task_date ASC
	`, userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
