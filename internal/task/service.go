// Package task implements the brain dump → categorize → act lifecycle
// and the TOP-3 slot assignment rules.
package task

import (
	"context"
	"errors"
	"time"

	"github.com/jkkim74/bsTodoList/internal/apperr"
	"github.com/jkkim74/bsTodoList/internal/store"
)

// Workflow steps. A task only moves forward: capture on creation,
// categorize once a priority is set, act once it holds a TOP-3 slot.
const (
	StepCapture    = "CAPTURE"
	StepCategorize = "CATEGORIZE"
	StepAct        = "ACT"
)

// Priorities.
const (
	PriorityUrgentImportant = "URGENT_IMPORTANT"
	PriorityImportant       = "IMPORTANT"
	PriorityLater           = "LATER"
	PriorityLetGo           = "LET_GO"
)

// Statuses. Orthogonal to the workflow step.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// Time slots.
const (
	SlotMorning   = "MORNING"
	SlotAfternoon = "AFTERNOON"
	SlotEvening   = "EVENING"
)

const maxTop3 = 3

// Service owns task lifecycle writes and the daily read projections.
type Service struct {
	store *store.Store
	now   func() time.Time
}

// NewService wires the lifecycle service to its store.
func NewService(st *store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// CaptureRequest creates a brain-dump task.
type CaptureRequest struct {
	TaskDate    string `json:"task_date"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CategorizeRequest assigns a priority.
type CategorizeRequest struct {
	Priority      string `json:"priority" binding:"required"`
	EstimatedTime string `json:"estimated_time"`
}

// Top3Request claims a focus slot. Slot 0 means "lowest free slot".
type Top3Request struct {
	Slot         int    `json:"slot"`
	ActionDetail string `json:"action_detail"`
	TimeSlot     string `json:"time_slot"`
}

// UpdateRequest is a partial update; nil fields are untouched.
type UpdateRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Priority      *string `json:"priority"`
	EstimatedTime *string `json:"estimated_time"`
	Status        *string `json:"status"`
	TimeSlot      *string `json:"time_slot"`
	DueDate       *string `json:"due_date"`
}

// Capture creates a task in the capture step with status PENDING.
// The date defaults to today when omitted.
func (s *Service) Capture(ctx context.Context, userID int64, req CaptureRequest) (*store.Task, error) {
	if req.Title == "" {
		return nil, apperr.Validation("title is required")
	}

	date := req.TaskDate
	if date == "" {
		date = s.now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, apperr.Validation("task_date must be YYYY-MM-DD")
	}

	task, err := s.store.CreateTask(ctx, userID, date, StepCapture, req.Title, req.Description)
	if err != nil {
		return nil, apperr.Internal(err, "failed to create task")
	}
	return task, nil
}

// Categorize moves a task to the categorize step. A LET_GO priority
// also appends a mirror entry to the let-go log.
func (s *Service) Categorize(ctx context.Context, userID, taskID int64, req CategorizeRequest) (*store.Task, error) {
	if req.Priority == "" {
		return nil, apperr.Validation("priority is required")
	}
	if !validPriority(req.Priority) {
		return nil, apperr.Validation("invalid priority %q", req.Priority)
	}

	task, err := s.getOwned(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.store.CategorizeTask(ctx, task, req.Priority, req.EstimatedTime); err != nil {
		return nil, apperr.Internal(err, "failed to categorize task")
	}
	return s.getOwned(ctx, taskID, userID)
}

// AssignTop3 moves a task to the act step and gives it a focus slot.
//
// An explicit slot held by a different task is a conflict, never a
// silent eviction. With no explicit slot the lowest free slot wins;
// three occupied slots is a capacity error.
func (s *Service) AssignTop3(ctx context.Context, userID, taskID int64, req Top3Request) (*store.Task, error) {
	if req.ActionDetail == "" {
		return nil, apperr.Validation("action_detail is required")
	}
	if req.Slot != 0 && (req.Slot < 1 || req.Slot > maxTop3) {
		return nil, apperr.Validation("slot must be between 1 and 3")
	}
	if req.TimeSlot != "" && !validTimeSlot(req.TimeSlot) {
		return nil, apperr.Validation("invalid time_slot %q", req.TimeSlot)
	}

	task, err := s.getOwned(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	slot := req.Slot
	if slot != 0 {
		holder, err := s.store.Top3SlotHolder(ctx, userID, task.TaskDate, slot)
		if err != nil {
			return nil, apperr.Internal(err, "failed to check slot")
		}
		if holder != 0 && holder != taskID {
			return nil, apperr.Conflict("TOP 3 slot %d is already taken", slot)
		}
	} else {
		occupied, err := s.store.Top3Slots(ctx, userID, task.TaskDate)
		if err != nil {
			return nil, apperr.Internal(err, "failed to list slots")
		}
		slot = lowestFreeSlot(occupied, task.Top3Slot, task.IsTop3)
		if slot == 0 {
			return nil, apperr.Capacity("TOP 3 is full for %s", task.TaskDate)
		}
	}

	if err := s.store.SetTop3(ctx, taskID, slot, req.ActionDetail, req.TimeSlot); err != nil {
		// The partial unique index turns a lost race into a conflict
		// instead of a double-booked slot.
		if store.IsUniqueViolation(err) {
			return nil, apperr.Conflict("TOP 3 slot %d is already taken", slot)
		}
		return nil, apperr.Internal(err, "failed to assign TOP 3")
	}
	return s.getOwned(ctx, taskID, userID)
}

// lowestFreeSlot picks the smallest slot in 1..3 not in occupied. A
// task re-assigning itself keeps its own slot out of the occupied set.
func lowestFreeSlot(occupied []int, own *int, isTop3 bool) int {
	taken := make(map[int]bool, len(occupied))
	for _, s := range occupied {
		taken[s] = true
	}
	if isTop3 && own != nil {
		delete(taken, *own)
	}
	for slot := 1; slot <= maxTop3; slot++ {
		if !taken[slot] {
			return slot
		}
	}
	return 0
}

// Complete marks a task done. Completing an already-completed task is
// a no-op in observable effect.
func (s *Service) Complete(ctx context.Context, userID, taskID int64) (*store.Task, error) {
	task, err := s.getOwned(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	completedAt := task.CompletedAt
	if task.Status != StatusCompleted || completedAt == nil {
		now := s.now().UTC()
		completedAt = &now
	}
	if err := s.store.SetTaskStatus(ctx, taskID, StatusCompleted, completedAt); err != nil {
		return nil, apperr.Internal(err, "failed to complete task")
	}
	return s.getOwned(ctx, taskID, userID)
}

// Uncomplete reverts a completed task to in progress and clears
// completed_at.
func (s *Service) Uncomplete(ctx context.Context, userID, taskID int64) (*store.Task, error) {
	if _, err := s.getOwned(ctx, taskID, userID); err != nil {
		return nil, err
	}
	if err := s.store.SetTaskStatus(ctx, taskID, StatusInProgress, nil); err != nil {
		return nil, apperr.Internal(err, "failed to uncomplete task")
	}
	return s.getOwned(ctx, taskID, userID)
}

// Update applies a partial update. A status change keeps the
// completed_at invariant: set iff COMPLETED.
func (s *Service) Update(ctx context.Context, userID, taskID int64, req UpdateRequest) (*store.Task, error) {
	if req.Priority != nil && !validPriority(*req.Priority) {
		return nil, apperr.Validation("invalid priority %q", *req.Priority)
	}
	if req.Status != nil && !validStatus(*req.Status) {
		return nil, apperr.Validation("invalid status %q", *req.Status)
	}
	if req.TimeSlot != nil && *req.TimeSlot != "" && !validTimeSlot(*req.TimeSlot) {
		return nil, apperr.Validation("invalid time_slot %q", *req.TimeSlot)
	}

	task, err := s.getOwned(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	patch := store.TaskPatch{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		EstimatedTime: req.EstimatedTime,
		Status:        req.Status,
		TimeSlot:      req.TimeSlot,
		DueDate:       req.DueDate,
	}
	if req.Status != nil && *req.Status != task.Status {
		patch.SetCompletedAt = true
		if *req.Status == StatusCompleted {
			now := s.now().UTC()
			patch.CompletedAt = &now
		}
	}
	if patch == (store.TaskPatch{}) {
		return nil, apperr.Validation("nothing to update")
	}

	if err := s.store.UpdateTask(ctx, taskID, patch); err != nil {
		return nil, apperr.Internal(err, "failed to update task")
	}
	return s.getOwned(ctx, taskID, userID)
}

// Delete removes a task and, for LET_GO tasks, its let-go mirror entry.
func (s *Service) Delete(ctx context.Context, userID, taskID int64) error {
	if _, err := s.getOwned(ctx, taskID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return apperr.Internal(err, "failed to delete task")
	}
	return nil
}

func (s *Service) getOwned(ctx context.Context, taskID, userID int64) (*store.Task, error) {
	task, err := s.store.GetTask(ctx, taskID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("task not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load task")
	}
	return task, nil
}

func validPriority(p string) bool {
	switch p {
	case PriorityUrgentImportant, PriorityImportant, PriorityLater, PriorityLetGo:
		return true
	}
	return false
}

func validStatus(st string) bool {
	switch st {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func validTimeSlot(ts string) bool {
	switch ts {
	case SlotMorning, SlotAfternoon, SlotEvening:
		return true
	}
	return false
}
