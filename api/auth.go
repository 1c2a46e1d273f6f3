package api

import (
	"net/http"

	"meal-admin/services"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	EmployeeCode string `json:"employee_code"`
	Password     string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := services.Authenticate(c.Request.Context(), req.EmployeeCode, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	token, expires, err := issueToken(s.cfg.JWTSecret, u, s.cfg.TokenTTL, s.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   expires,
		"user":         u,
	})
}

func (s *Server) handleMe(c *gin.Context) {
	u, err := services.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
