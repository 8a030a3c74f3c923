package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a throwaway SQLite database under t.TempDir and
// seeds one user so foreign keys hold.
func newTestStore(t *testing.T) (*Store, int64) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	userID, err := s.CreateUser(context.Background(), "test@example.com", "hash", "tester")
	require.NoError(t, err)
	return s, userID
}

func TestCreateAndGetTask(t *testing.T) {
	s, userID := newTestStore(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, userID, "2026-01-05", "CAPTURE", "Buy milk", "2% if possible")
	require.NoError(t, err)

	assert.Equal(t, "CAPTURE", task.Step)
	assert.Equal(t, "PENDING", task.Status)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Nil(t, task.Priority)
	assert.False(t, task.IsTop3)
	assert.Nil(t, task.CompletedAt)

	got, err := s.GetTask(ctx, task.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	// Owned by someone else: not found.
	otherID, err := s.CreateUser(ctx, "other@example.com", "hash", "other")
	require.NoError(t, err)
	_, err = s.GetTask(ctx, task.ID, otherID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategorizeLetGoMirrorsAndDeleteRemovesMirror(t *testing.T) {
	s, userID := newTestStore(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, userID, "2026-01-05", "CAPTURE", "Reorganize garage", "someday")
	require.NoError(t, err)

	require.NoError(t, s.CategorizeTask(ctx, task, "LET_GO", ""))

	items, err := s.ListLetGoItems(ctx, userID, "2026-01-05")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Reorganize garage - someday", items[0].Content)
	require.NotNil(t, items[0].TaskID)
	assert.Equal(t, task.ID, *items[0].TaskID)

	// Deleting the task removes the linked mirror entry.
	require.NoError(t, s.DeleteTask(ctx, task.ID))

	items, err = s.ListLetGoItems(ctx, userID, "2026-01-05")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTop3SlotUniqueIndex(t *testing.T) {
	s, userID := newTestStore(t)
	ctx := context.Background()

	a, err := s.CreateTask(ctx, userID, "2026-01-05", "CAPTURE", "a", "")
	require.NoError(t, err)
	b, err := s.CreateTask(ctx, userID, "2026-01-05", "CAPTURE", "b", "")
	require.NoError(t, err)

	require.NoError(t, s.SetTop3(ctx, a.ID, 1, "do a", "MORNING"))

	// Same slot, same day, different task: the partial unique index
	// rejects the write.
	err = s.SetTop3(ctx, b.ID, 1, "do b", "")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	// A different day is unaffected.
	c, err := s.CreateTask(ctx, userID, "2026-01-06", "CAPTURE", "c", "")
	require.NoError(t, err)
	assert.NoError(t, s.SetTop3(ctx, c.ID, 1, "do c", ""))

	slots, err := s.Top3Slots(ctx, userID, "2026-01-05")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, slots)

	holder, err := s.Top3SlotHolder(ctx, userID, "2026-01-05", 1)
	require.NoError(t, err)
	assert.Equal(t, a.ID, holder)

	holder, err = s.Top3SlotHolder(ctx, userID, "2026-01-05", 2)
	require.NoError(t, err)
	assert.Zero(t, holder)
}

func TestSetTaskStatus(t *testing.T) {
	s, userID := newTestStore(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, userID, "2026-01-05", "CAPTURE", "a", "")
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, s.SetTaskStatus(ctx, task.ID, "COMPLETED", &now))

	got, err := s.GetTask(ctx, task.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", got.Status)
	require.NotNil(t, got.CompletedAt)

	require.NoError(t, s.SetTaskStatus(ctx, task.ID, "IN_PROGRESS", nil))

	got, err = s.GetTask(ctx, task.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "IN_PROGRESS", got.Status)
	assert.Nil(t, got.CompletedAt)
}

func TestUpdateTaskPartial(t *testing.T) {
	s, userID := newTestStore(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, userID, "2026-01-05", "CAPTURE", "old title", "desc")
	require.NoError(t, err)

	title := "new title"
	due := "2026-01-10"
	require.NoError(t, s.UpdateTask(ctx, task.ID, TaskPatch{Title: &title, DueDate: &due}))

	got, err := s.GetTask(ctx, task.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)
	assert.Equal(t, "desc", got.Description)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2026-01-10", *got.DueDate)

	assert.Error(t, s.UpdateTask(ctx, task.ID, TaskPatch{}))
}

func TestUpsertReview(t *testing.T) {
	s, userID := newTestStore(t)
	ctx := context.Background()

	energy := 7
	mood := "calm"
	review, created, err := s.UpsertReview(ctx, userID, "2026-01-05", ReviewFields{
		MorningEnergy: &energy,
		CurrentMood:   &mood,
	})
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, review.MorningEnergy)
	assert.Equal(t, 7, *review.MorningEnergy)

	energy = 4
	review, created, err = s.UpsertReview(ctx, userID, "2026-01-05", ReviewFields{MorningEnergy: &energy})
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, review.MorningEnergy)
	assert.Equal(t, 4, *review.MorningEnergy)
	// Fields absent from the second write are replaced with null.
	assert.Nil(t, review.CurrentMood)

	_, err = s.GetReviewByDate(ctx, userID, "2026-01-06")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertNoteAndList(t *testing.T) {
	s, userID := newTestStore(t)
	ctx := context.Background()

	_, created, err := s.UpsertNote(ctx, userID, "2026-01-05", "first")
	require.NoError(t, err)
	assert.True(t, created)

	note, created, err := s.UpsertNote(ctx, userID, "2026-01-05", "second")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "second", note.Content)

	_, _, err = s.UpsertNote(ctx, userID, "2026-01-04", "older")
	require.NoError(t, err)

	notes, err := s.ListNotes(ctx, userID, 30)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "2026-01-05", notes[0].NoteDate)
}

func TestGoalLifecycle(t *testing.T) {
	s, userID := newTestStore(t)
	ctx := context.Background()

	goal, err := s.CreateGoal(ctx, userID, "2026-01-05", "2026-01-11", 1, "Ship the report", "2026-01-09")
	require.NoError(t, err)
	assert.Equal(t, "IN_PROGRESS", goal.Status)
	assert.Zero(t, goal.ProgressRate)

	goal, err = s.UpdateGoalProgress(ctx, goal.ID, 100, "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, 100, goal.ProgressRate)
	assert.Equal(t, "COMPLETED", goal.Status)

	goals, err := s.ListGoalsForWeek(ctx, userID, "2026-01-05", "2026-01-11")
	require.NoError(t, err)
	require.Len(t, goals, 1)

	require.NoError(t, s.DeleteGoal(ctx, goal.ID))
	_, err = s.GetGoal(ctx, goal.ID, userID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDailyStatsAndTaskDates(t *testing.T) {
	s, userID := newTestStore(t)
	ctx := context.Background()

	seed := func(date string, completed bool) {
		t.Helper()
		task, err := s.CreateTask(ctx, userID, date, "CAPTURE", "t", "")
		require.NoError(t, err)
		if completed {
			now := time.Now().UTC()
			require.NoError(t, s.SetTaskStatus(ctx, task.ID, "COMPLETED", &now))
		}
	}

	seed("2026-01-05", true)
	seed("2026-01-05", true)
	seed("2026-01-05", true)
	seed("2026-01-05", false)
	seed("2026-01-06", false)
	seed("2026-01-08", false)

	stats, err := s.DailyStats(ctx, userID, "2026-01-01", "2026-01-31")
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, 4, stats[0].TotalTasks)
	assert.Equal(t, 3, stats[0].CompletedTasks)
	assert.InDelta(t, 75.0, stats[0].CompletionRate, 0.001)

	dates, err := s.TaskDates(ctx, userID, "2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01-05", "2026-01-06", "2026-01-08"}, dates)

	sum, err := s.RangeStats(ctx, userID, "2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, 6, sum.TotalTasks)
	assert.Equal(t, 3, sum.CompletedTasks)
	// No TOP-3 tasks in range: the rate is null, not zero.
	assert.Nil(t, sum.Top3CompletionRate)
}
