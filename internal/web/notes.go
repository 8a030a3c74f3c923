package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jkkim74/bsTodoList/internal/apperr"
	"github.com/jkkim74/bsTodoList/internal/store"
)

type noteRequest struct {
	NoteDate string `json:"note_date"`
	Content  string `json:"content"`
}

func noteIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("noteId"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.NotFound("note not found")
	}
	return id, nil
}

func (s *Server) handleUpsertNote(c *gin.Context) {
	var req noteRequest
	if err := c.BindJSON(&req); err != nil {
		s.respondErr(c, apperr.Validation("invalid request body"))
		return
	}
	if req.NoteDate == "" || req.Content == "" {
		s.respondErr(c, apperr.Validation("note_date and content are required"))
		return
	}

	note, created, err := s.store.UpsertNote(c.Request.Context(), currentUserID(c), req.NoteDate, req.Content)
	if err != nil {
		s.respondErr(c, apperr.Internal(err, "failed to save note"))
		return
	}

	if created {
		respondMessage(c, http.StatusCreated, note, "note created")
		return
	}
	respondMessage(c, http.StatusOK, note, "note updated")
}

func (s *Server) handleListNotes(c *gin.Context) {
	limit, err := intQuery(c, "limit", 30)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	if limit < 1 || limit > 100 {
		limit = 30
	}

	notes, err := s.store.ListNotes(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		s.respondErr(c, apperr.Internal(err, "failed to load notes"))
		return
	}
	if notes == nil {
		notes = []*store.Note{}
	}
	respondOK(c, notes)
}

func (s *Server) handleGetNote(c *gin.Context) {
	note, err := s.store.GetNoteByDate(c.Request.Context(), currentUserID(c), c.Param("date"))
	if errors.Is(err, store.ErrNotFound) {
		respondOK(c, nil)
		return
	}
	if err != nil {
		s.respondErr(c, apperr.Internal(err, "failed to load note"))
		return
	}
	respondOK(c, note)
}

func (s *Server) handleDeleteNote(c *gin.Context) {
	id, err := noteIDParam(c)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	if _, err := s.store.GetNote(c.Request.Context(), id, currentUserID(c)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondErr(c, apperr.NotFound("note not found"))
			return
		}
		s.respondErr(c, apperr.Internal(err, "failed to load note"))
		return
	}

	if err := s.store.DeleteNote(c.Request.Context(), id); err != nil {
		s.respondErr(c, apperr.Internal(err, "failed to delete note"))
		return
	}
	respondMessage(c, http.StatusOK, nil, "note deleted")
}
