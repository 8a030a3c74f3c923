package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jkkim74/bsTodoList/internal/apperr"
	"github.com/jkkim74/bsTodoList/internal/task"
)

func taskIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("taskId"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.NotFound("task not found")
	}
	return id, nil
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req task.CaptureRequest
	if err := c.BindJSON(&req); err != nil {
		s.respondErr(c, apperr.Validation("invalid request body"))
		return
	}

	created, err := s.tasks.Capture(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, created, "task created")
}

func (s *Server) handleCategorizeTask(c *gin.Context) {
	id, err := taskIDParam(c)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	var req task.CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondErr(c, apperr.Validation("priority is required"))
		return
	}

	updated, err := s.tasks.Categorize(c.Request.Context(), currentUserID(c), id, req)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respondMessage(c, http.StatusOK, updated, "task categorized")
}

func (s *Server) handleAssignTop3(c *gin.Context) {
	id, err := taskIDParam(c)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	var req task.Top3Request
	if err := c.BindJSON(&req); err != nil {
		s.respondErr(c, apperr.Validation("invalid request body"))
		return
	}

	updated, err := s.tasks.AssignTop3(c.Request.Context(), currentUserID(c), id, req)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respondMessage(c, http.StatusOK, updated, "TOP 3 assigned")
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	id, err := taskIDParam(c)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	updated, err := s.tasks.Complete(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respondMessage(c, http.StatusOK, updated, "task completed")
}

func (s *Server) handleUncompleteTask(c *gin.Context) {
	id, err := taskIDParam(c)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	updated, err := s.tasks.Uncomplete(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respondMessage(c, http.StatusOK, updated, "task reopened")
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, err := taskIDParam(c)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	var req task.UpdateRequest
	if err := c.BindJSON(&req); err != nil {
		s.respondErr(c, apperr.Validation("invalid request body"))
		return
	}

	updated, err := s.tasks.Update(c.Request.Context(), currentUserID(c), id, req)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respondMessage(c, http.StatusOK, updated, "task updated")
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, err := taskIDParam(c)
	if err != nil {
		s.respondErr(c, err)
		return
	}

	if err := s.tasks.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		s.respondErr(c, err)
		return
	}
	respondMessage(c, http.StatusOK, nil, "task deleted")
}

func (s *Server) handleDailyOverview(c *gin.Context) {
	overview, err := s.tasks.DailyOverview(c.Request.Context(), currentUserID(c), c.Param("date"))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respondOK(c, overview)
}

func (s *Server) handleIncompleteTasks(c *gin.Context) {
	groups, err := s.tasks.Incomplete(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respondOK(c, groups)
}
