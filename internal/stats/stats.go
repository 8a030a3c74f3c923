// Package stats builds productivity reports from task aggregates:
// per-day trends, weekly summaries, and a trailing six-month view with
// the longest consecutive-day streak.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jkkim74/bsTodoList/internal/apperr"
	"github.com/jkkim74/bsTodoList/internal/store"
)

// Service runs read-only projections over committed task rows.
type Service struct {
	store *store.Store
}

// NewService wires the stats service to its store.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// WeeklyReport is the weekly summary plus the per-day trend used for
// charting.
type WeeklyReport struct {
	Summary           *store.RangeSummary `json:"summary"`
	DailyTrend        []*store.DayStat    `json:"daily_trend"`
	MostProductiveDay *store.DayStat      `json:"most_productive_day"`
}

// MonthlyReport covers a trailing six-calendar-month window.
type MonthlyReport struct {
	Summary      *store.PeriodSummary `json:"summary"`
	MonthlyTrend []*store.MonthStat   `json:"monthly_trend"`
	BestMonth    *store.MonthStat     `json:"best_month"`
	MaxStreak    int                  `json:"max_streak"`
	Period       Period               `json:"period"`
}

// Period is the inclusive date range a report covers.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Daily returns per-day aggregates for an explicit date range.
func (s *Service) Daily(ctx context.Context, userID int64, start, end string) ([]*store.DayStat, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	stats, err := s.store.DailyStats(ctx, userID, start, end)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load daily stats")
	}
	if stats == nil {
		stats = []*store.DayStat{}
	}
	return stats, nil
}

// Weekly returns the aggregate for a 7-day range, the per-day trend,
// and the most productive day in range.
func (s *Service) Weekly(ctx context.Context, userID int64, start, end string) (*WeeklyReport, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	summary, err := s.store.RangeStats(ctx, userID, start, end)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load weekly summary")
	}
	trend, err := s.store.DailyStats(ctx, userID, start, end)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load daily trend")
	}
	if trend == nil {
		trend = []*store.DayStat{}
	}

	var best *store.DayStat
	for _, day := range trend {
		if best == nil || day.CompletionRate > best.CompletionRate {
			best = day
		}
	}

	return &WeeklyReport{Summary: summary, DailyTrend: trend, MostProductiveDay: best}, nil
}

// Monthly returns the trailing six-month window ending at (year,
// month): per-month trend, window summary, best month, and the longest
// streak of consecutive days with at least one task.
func (s *Service) Monthly(ctx context.Context, userID int64, year, month int) (*MonthlyReport, error) {
	if month < 1 || month > 12 {
		return nil, apperr.Validation("month must be between 1 and 12")
	}
	if year < 1 {
		return nil, apperr.Validation("invalid year")
	}

	start := time.Date(year, time.Month(month-5), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.UTC)
	startStr := start.Format("2006-01-02")
	endStr := end.Format("2006-01-02")

	summary, err := s.store.PeriodStats(ctx, userID, startStr, endStr)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load period summary")
	}
	trend, err := s.store.MonthlyTrend(ctx, userID, startStr, endStr)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load monthly trend")
	}
	if trend == nil {
		trend = []*store.MonthStat{}
	}

	var best *store.MonthStat
	for _, m := range trend {
		if best == nil || m.CompletionRate > best.CompletionRate {
			best = m
		}
	}

	dates, err := s.store.TaskDates(ctx, userID, startStr, endStr)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load task dates")
	}
	streak, err := LongestStreak(dates)
	if err != nil {
		return nil, apperr.Internal(err, "failed to compute streak")
	}

	return &MonthlyReport{
		Summary:      summary,
		MonthlyTrend: trend,
		BestMonth:    best,
		MaxStreak:    streak,
		Period:       Period{Start: startStr, End: endStr},
	}, nil
}

// LongestStreak returns the longest run of consecutive calendar days in
// dates. The input must be sorted ascending and duplicate-free, as
// produced by Store.TaskDates.
func LongestStreak(dates []string) (int, error) {
	if len(dates) == 0 {
		return 0, nil
	}

	maxStreak, current := 1, 1
	prev, err := time.Parse("2006-01-02", dates[0])
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", dates[0], err)
	}

	for _, d := range dates[1:] {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			return 0, fmt.Errorf("parse date %q: %w", d, err)
		}
		if day.Sub(prev) == 24*time.Hour {
			current++
		} else {
			current = 1
		}
		if current > maxStreak {
			maxStreak = current
		}
		prev = day
	}
	return maxStreak, nil
}

func validateRange(start, end string) error {
	if start == "" || end == "" {
		return apperr.Validation("start_date and end_date are required")
	}
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return apperr.Validation("start_date must be YYYY-MM-DD")
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return apperr.Validation("end_date must be YYYY-MM-DD")
	}
	if e.Before(s) {
		return apperr.Validation("end_date must not be before start_date")
	}
	return nil
}
