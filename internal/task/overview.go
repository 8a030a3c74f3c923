package task

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/jkkim74/bsTodoList/internal/apperr"
	"github.com/jkkim74/bsTodoList/internal/store"
)

// Overview is the daily read projection: the inbox, one bucket per
// priority, and the TOP-3 list.
type Overview struct {
	Date            string        `json:"date"`
	Inbox           []*store.Task `json:"inbox"`
	UrgentImportant []*store.Task `json:"urgent_important"`
	Important       []*store.Task `json:"important"`
	Later           []*store.Task `json:"later"`
	LetGo           []*store.Task `json:"let_go"`
	Top3            []*store.Task `json:"top3"`
	Statistics      OverviewStats `json:"statistics"`
}

// OverviewStats summarizes one day's completion.
type OverviewStats struct {
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	CompletionRate int `json:"completion_rate"`
}

// IncompleteGroups buckets unfinished tasks by due date relative to
// today.
type IncompleteGroups struct {
	Overdue   []*store.Task `json:"overdue"`
	Today     []*store.Task `json:"today"`
	Upcoming  []*store.Task `json:"upcoming"`
	NoDueDate []*store.Task `json:"no_due_date"`
}

// DailyOverview partitions one day's tasks into display buckets and
// computes the day's completion statistics. Pure read.
func (s *Service) DailyOverview(ctx context.Context, userID int64, date string) (*Overview, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperr.Validation("date must be YYYY-MM-DD")
	}

	tasks, err := s.store.ListTasksByDate(ctx, userID, date)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load tasks")
	}

	ov := &Overview{
		Date:            date,
		Inbox:           []*store.Task{},
		UrgentImportant: []*store.Task{},
		Important:       []*store.Task{},
		Later:           []*store.Task{},
		LetGo:           []*store.Task{},
		Top3:            []*store.Task{},
	}

	completed := 0
	for _, t := range tasks {
		if t.Status == StatusCompleted {
			completed++
		}
		if t.Step == StepCapture && t.Status != StatusCompleted {
			ov.Inbox = append(ov.Inbox, t)
		}
		if t.Priority != nil {
			switch *t.Priority {
			case PriorityUrgentImportant:
				ov.UrgentImportant = append(ov.UrgentImportant, t)
			case PriorityImportant:
				ov.Important = append(ov.Important, t)
			case PriorityLater:
				ov.Later = append(ov.Later, t)
			case PriorityLetGo:
				ov.LetGo = append(ov.LetGo, t)
			}
		}
		if t.IsTop3 {
			ov.Top3 = append(ov.Top3, t)
		}
	}

	// Completed TOP-3 tasks sink below in-progress ones; within each
	// group slot order wins.
	sort.SliceStable(ov.Top3, func(i, j int) bool {
		a, b := ov.Top3[i], ov.Top3[j]
		aDone := a.Status == StatusCompleted
		bDone := b.Status == StatusCompleted
		if aDone != bDone {
			return !aDone
		}
		return slotOf(a) < slotOf(b)
	})

	ov.Statistics = OverviewStats{
		TotalTasks:     len(tasks),
		CompletedTasks: completed,
		CompletionRate: completionRate(completed, len(tasks)),
	}
	return ov, nil
}

// Incomplete groups every unfinished task by due date relative to
// today (user-local calendar day).
func (s *Service) Incomplete(ctx context.Context, userID int64) (*IncompleteGroups, error) {
	tasks, err := s.store.ListIncompleteTasks(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load tasks")
	}

	today := s.now().Format("2006-01-02")
	groups := &IncompleteGroups{
		Overdue:   []*store.Task{},
		Today:     []*store.Task{},
		Upcoming:  []*store.Task{},
		NoDueDate: []*store.Task{},
	}
	for _, t := range tasks {
		switch {
		case t.DueDate == nil:
			groups.NoDueDate = append(groups.NoDueDate, t)
		case *t.DueDate < today:
			groups.Overdue = append(groups.Overdue, t)
		case *t.DueDate == today:
			groups.Today = append(groups.Today, t)
		default:
			groups.Upcoming = append(groups.Upcoming, t)
		}
	}
	return groups, nil
}

// completionRate is round(completed/total*100), with an empty day
// reported as 0 rather than dividing by zero.
func completionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func slotOf(t *store.Task) int {
	if t.Top3Slot == nil {
		return maxTop3 + 1
	}
	return *t.Top3Slot
}
