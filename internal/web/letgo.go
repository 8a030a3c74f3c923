package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jkkim74/bsTodoList/internal/apperr"
	"github.com/jkkim74/bsTodoList/internal/store"
)

type letGoRequest struct {
	LetGoDate string `json:"let_go_date"`
	Content   string `json:"content"`
}

func letGoIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("letGoId"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.NotFound("let-go item not found")
	}
	return id, nil
}

func (s *Server) handleCreateLetGo(c *gin.Context) {
	var req letGoRequest
	if err := c.BindJSON(&req); err != nil {
		s.respondErr(c, apperr.Validation("invalid request body"))
		return
	}
	if req.LetGoDate == "" || req.Content == "" {
		s.respondErr(c, apperr.Validation("let_go_date and content are required"))
		return
	}

	item, err := s.store.CreateLetGoItem(c.Request.Context(), currentUserID(c),
		req.LetGoDate, req.Content)
	if err != nil {
		s.respondErr(c, apperr.Internal(err, "failed to record let-go item"))
		return
	}
	respondMessage(c, http.StatusCreated, item, "let-go item recorded")
}

func (s *Server) handleListLetGo(c *gin.Context) {
	items, err := s.store.ListLetGoItems(c.Request.Context(), currentUserID(c), c.Param("date"))
	if err != nil {
		s.respondErr(c, apperr.Internal(err, "failed to load let-go items"))
		return
	}
	if items == nil {
		items = []*store.LetGoItem{}
	}
	respondOK(c, items)
}

func (s *Server) handleDeleteLetGo(c *gin.Context) {
	id, err := letGoIDParam(c)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	if _, err := s.store.GetLetGoItem(c.Request.Context(), id, currentUserID(c)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondErr(c, apperr.NotFound("let-go item not found"))
			return
		}
		s.respondErr(c, apperr.Internal(err, "failed to load let-go item"))
		return
	}

	if err := s.store.DeleteLetGoItem(c.Request.Context(), id); err != nil {
		s.respondErr(c, apperr.Internal(err, "failed to delete let-go item"))
		return
	}
	respondMessage(c, http.StatusOK, nil, "let-go item deleted")
}
