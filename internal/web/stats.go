package web

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jkkim74/bsTodoList/internal/apperr"
)

func (s *Server) handleDailyStats(c *gin.Context) {
	result, err := s.stats.Daily(c.Request.Context(), currentUserID(c),
		c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respondOK(c, result)
}

func (s *Server) handleWeeklyStats(c *gin.Context) {
	report, err := s.stats.Weekly(c.Request.Context(), currentUserID(c),
		c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respondOK(c, report)
}

func (s *Server) handleMonthlyStats(c *gin.Context) {
	now := time.Now()
	year, err := intQuery(c, "year", now.Year())
	if err != nil {
		s.respondErr(c, err)
		return
	}
	month, err := intQuery(c, "month", int(now.Month()))
	if err != nil {
		s.respondErr(c, err)
		return
	}

	report, err := s.stats.Monthly(c.Request.Context(), currentUserID(c), year, month)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respondOK(c, report)
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("%s must be a number", name)
	}
	return v, nil
}
