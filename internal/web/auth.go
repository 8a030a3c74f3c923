package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jkkim74/bsTodoList/internal/apperr"
	"github.com/jkkim74/bsTodoList/internal/auth"
)

func (s *Server) handleSignup(c *gin.Context) {
	var req auth.SignupRequest
	if err := c.BindJSON(&req); err != nil {
		s.respondErr(c, apperr.Validation("invalid request body"))
		return
	}

	session, err := s.auth.Signup(c.Request.Context(), req)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respondMessage(c, http.StatusCreated, session, "account created")
}

func (s *Server) handleLogin(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		s.respondErr(c, apperr.Validation("invalid request body"))
		return
	}

	session, err := s.auth.Login(c.Request.Context(), req)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	respondMessage(c, http.StatusOK, session, "login successful")
}
