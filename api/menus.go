package api

import (
	"context"
	"net/http"

	"meal-admin/models"
	"meal-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (s *Server) handleListMenus(c *gin.Context) {
	from, ok := queryDate(c, "from")
	if !ok {
		return
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return
	}
	menus, err := services.ListMenus(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, menus)
}

func (s *Server) handleGetMenu(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := services.GetMenu(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) handleCreateMenu(c *gin.Context) {
	var req models.CreateMenuInput
	if !bindJSON(c, &req) {
		return
	}
	id, err := services.CreateMenu(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) handleAddMeal(c *gin.Context) {
	menuID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.MealInput
	if !bindJSON(c, &req) {
		return
	}
	id, err := services.AddMeal(c.Request.Context(), menuID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type mealPriceRequest struct {
	Price *decimal.Decimal `json:"price"`
}

func (s *Server) handleUpdateMealPrice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req mealPriceRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Price == nil {
		badRequest(c, "price is required")
		return
	}
	if err := services.UpdateMealPrice(c.Request.Context(), id, *req.Price); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteMeal(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := services.DeleteMeal(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type finalizeRequest struct {
	Version *int `json:"version"`
}

func (s *Server) handleFinalizeMenu(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req finalizeRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Version == nil {
		badRequest(c, "version is required")
		return
	}
	completed, err := services.FinalizeMenu(c.Request.Context(), id, *req.Version)
	if err != nil {
		respondError(c, err)
		return
	}
	s.notifyAsync(func(ctx context.Context) {
		s.notifier.MenuFinalized(ctx, id, completed)
	})
	c.JSON(http.StatusOK, gin.H{"menu_id": id, "completed_orders": completed})
}

func (s *Server) handleListSuppliers(c *gin.Context) {
	list, err := services.ListSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetSupplier(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sup, err := services.GetSupplier(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sup)
}

func (s *Server) handleCreateSupplier(c *gin.Context) {
	var req models.SupplierInput
	if !bindJSON(c, &req) {
		return
	}
	id, err := services.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) handleUpdateSupplier(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.SupplierInput
	if !bindJSON(c, &req) {
		return
	}
	if err := services.UpdateSupplier(c.Request.Context(), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDeleteSupplier(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := services.DeleteSupplier(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
