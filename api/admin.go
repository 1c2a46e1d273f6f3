package api

import (
	"context"
	"net/http"
	"strings"

	"meal-admin/services"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleAdminListOrders(c *gin.Context) {
	f, ok := orderFilter(c)
	if !ok {
		return
	}
	userID, ok := queryInt(c, "user_id")
	if !ok {
		return
	}
	f.UserID = int64(userID)
	page, err := services.ListOrders(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type batchPayRequest struct {
	UserID   int64   `json:"user_id"`
	OrderIDs []int64 `json:"order_ids"`
}

func (s *Server) handleBatchPay(c *gin.Context) {
	var req batchPayRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := services.BatchMarkPaid(c.Request.Context(), req.UserID, req.OrderIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.PaidCount > 0 {
		s.notifyAsync(func(ctx context.Context) {
			s.notifier.PaymentRecorded(ctx, req.UserID, res)
		})
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleAdminOutstanding(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	sum, err := services.GetOutstanding(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := services.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) handleResetPassword(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	plain, err := services.ResetPassword(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id, "password": plain})
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

func (s *Server) handleSetUserActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req setActiveRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Active == nil {
		badRequest(c, "active is required")
		return
	}
	if id == currentUserID(c) && !*req.Active {
		badRequest(c, "cannot disable your own account")
		return
	}
	if err := services.SetUserActive(c.Request.Context(), id, *req.Active); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDirectoryEmployees(c *gin.Context) {
	if s.directory == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "employee directory not configured"})
		return
	}
	list, err := s.directory.Employees(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleDirectoryEmployee(c *gin.Context) {
	if s.directory == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "employee directory not configured"})
		return
	}
	code := strings.TrimSpace(c.Param("code"))
	e, found, err := s.directory.Lookup(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "employee " + code + " is not in the directory"})
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) handleDirectorySync(c *gin.Context) {
	if s.syncer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "employee directory not configured"})
		return
	}
	res, err := s.syncer.Sync(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
