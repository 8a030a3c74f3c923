package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jkkim74/bsTodoList/internal/apperr"
	"github.com/jkkim74/bsTodoList/internal/store"
)

type goalRequest struct {
	WeekStartDate string `json:"week_start_date"`
	WeekEndDate   string `json:"week_end_date"`
	GoalOrder     int    `json:"goal_order"`
	Title         string `json:"title"`
	TargetDate    string `json:"target_date"`
}

type goalProgressRequest struct {
	ProgressRate *int `json:"progress_rate"`
}

func goalIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("goalId"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.NotFound("goal not found")
	}
	return id, nil
}

func (s *Server) handleCreateGoal(c *gin.Context) {
	var req goalRequest
	if err := c.BindJSON(&req); err != nil {
		s.respondErr(c, apperr.Validation("invalid request body"))
		return
	}
	if req.WeekStartDate == "" || req.WeekEndDate == "" || req.Title == "" {
		s.respondErr(c, apperr.Validation("week dates and title are required"))
		return
	}
	if req.GoalOrder < 1 || req.GoalOrder > 3 {
		s.respondErr(c, apperr.Validation("goal_order must be between 1 and 3"))
		return
	}

	goal, err := s.store.CreateGoal(c.Request.Context(), currentUserID(c),
		req.WeekStartDate, req.WeekEndDate, req.GoalOrder, req.Title, req.TargetDate)
	if err != nil {
		s.respondErr(c, apperr.Internal(err, "failed to create goal"))
		return
	}
	respondMessage(c, http.StatusCreated, goal, "goal created")
}

func (s *Server) handleCurrentGoals(c *gin.Context) {
	weekStart, weekEnd := weekBounds(time.Now())

	goals, err := s.store.ListGoalsForWeek(c.Request.Context(), currentUserID(c), weekStart, weekEnd)
	if err != nil {
		s.respondErr(c, apperr.Internal(err, "failed to load goals"))
		return
	}
	if goals == nil {
		goals = []*store.Goal{}
	}

	respondOK(c, gin.H{
		"week_start_date": weekStart,
		"week_end_date":   weekEnd,
		"goals":           goals,
	})
}

func (s *Server) handleGoalProgress(c *gin.Context) {
	id, err := goalIDParam(c)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	var req goalProgressRequest
	if err := c.BindJSON(&req); err != nil {
		s.respondErr(c, apperr.Validation("invalid request body"))
		return
	}
	if req.ProgressRate == nil || *req.ProgressRate < 0 || *req.ProgressRate > 100 {
		s.respondErr(c, apperr.Validation("progress_rate must be between 0 and 100"))
		return
	}

	if _, err := s.store.GetGoal(c.Request.Context(), id, currentUserID(c)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondErr(c, apperr.NotFound("goal not found"))
			return
		}
		s.respondErr(c, apperr.Internal(err, "failed to load goal"))
		return
	}

	status := "IN_PROGRESS"
	if *req.ProgressRate == 100 {
		status = "COMPLETED"
	}

	goal, err := s.store.UpdateGoalProgress(c.Request.Context(), id, *req.ProgressRate, status)
	if err != nil {
		s.respondErr(c, apperr.Internal(err, "failed to update goal"))
		return
	}
	respondMessage(c, http.StatusOK, goal, "progress updated")
}

func (s *Server) handleDeleteGoal(c *gin.Context) {
	id, err := goalIDParam(c)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	if _, err := s.store.GetGoal(c.Request.Context(), id, currentUserID(c)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondErr(c, apperr.NotFound("goal not found"))
			return
		}
		s.respondErr(c, apperr.Internal(err, "failed to load goal"))
		return
	}

	if err := s.store.DeleteGoal(c.Request.Context(), id); err != nil {
		s.respondErr(c, apperr.Internal(err, "failed to delete goal"))
		return
	}
	respondMessage(c, http.StatusOK, nil, "goal deleted")
}

// weekBounds returns the Monday and Sunday of the week containing t.
func weekBounds(t time.Time) (string, string) {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday belongs to the week that started the prior Monday
	}
	monday := t.AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format("2006-01-02"), sunday.Format("2006-01-02")
}
