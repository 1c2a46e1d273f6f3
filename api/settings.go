package api

import (
	"net/http"

	"meal-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type portionRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

func (s *Server) handleGetPortion(c *gin.Context) {
	amount, err := services.GetCompanyPortion(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": amount.StringFixed(2)})
}

func (s *Server) handleSetPortion(c *gin.Context) {
	var req portionRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Amount == nil {
		badRequest(c, "amount is required")
		return
	}
	amount, err := services.SetCompanyPortion(c.Request.Context(), *req.Amount, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": amount.StringFixed(2)})
}
