package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jkkim74/bsTodoList/internal/apperr"
	"github.com/jkkim74/bsTodoList/internal/store"
)

// reviewRequest is the daily review body. All reflection fields are
// optional; only the date is required.
type reviewRequest struct {
	ReviewDate    string  `json:"review_date"`
	MorningEnergy *int    `json:"morning_energy"`
	CurrentMood   *string `json:"current_mood"`
	StressLevel   *int    `json:"stress_level"`
	StressFactors *string `json:"stress_factors"`
	WellDone1     *string `json:"well_done_1"`
	WellDone2     *string `json:"well_done_2"`
	WellDone3     *string `json:"well_done_3"`
	Improvement   *string `json:"improvement"`
	Gratitude     *string `json:"gratitude"`
}

func (s *Server) handleUpsertReview(c *gin.Context) {
	var req reviewRequest
	if err := c.BindJSON(&req); err != nil {
		s.respondErr(c, apperr.Validation("invalid request body"))
		return
	}
	if req.ReviewDate == "" {
		s.respondErr(c, apperr.Validation("review_date is required"))
		return
	}
	if req.MorningEnergy != nil && (*req.MorningEnergy < 1 || *req.MorningEnergy > 10) {
		s.respondErr(c, apperr.Validation("morning_energy must be between 1 and 10"))
		return
	}
	if req.StressLevel != nil && (*req.StressLevel < 1 || *req.StressLevel > 10) {
		s.respondErr(c, apperr.Validation("stress_level must be between 1 and 10"))
		return
	}

	review, created, err := s.store.UpsertReview(c.Request.Context(), currentUserID(c), req.ReviewDate, store.ReviewFields{
		MorningEnergy: req.MorningEnergy,
		CurrentMood:   req.CurrentMood,
		StressLevel:   req.StressLevel,
		StressFactors: req.StressFactors,
		WellDone1:     req.WellDone1,
		WellDone2:     req.WellDone2,
		WellDone3:     req.WellDone3,
		Improvement:   req.Improvement,
		Gratitude:     req.Gratitude,
	})
	if err != nil {
		s.respondErr(c, apperr.Internal(err, "failed to save review"))
		return
	}

	if created {
		respondMessage(c, http.StatusCreated, review, "review created")
		return
	}
	respondMessage(c, http.StatusOK, review, "review updated")
}

func (s *Server) handleGetReview(c *gin.Context) {
	review, err := s.store.GetReviewByDate(c.Request.Context(), currentUserID(c), c.Param("date"))
	if errors.Is(err, store.ErrNotFound) {
		// A missing review is an empty day, not an error.
		respondOK(c, nil)
		return
	}
	if err != nil {
		s.respondErr(c, apperr.Internal(err, "failed to load review"))
		return
	}
	respondOK(c, review)
}
