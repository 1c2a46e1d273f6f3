package api

import (
	"net/http"

	"meal-admin/models"
	"meal-admin/services"

	"github.com/gin-gonic/gin"
)

type placeOrdersRequest struct {
	Lines []models.OrderLineInput `json:"lines"`
}

func (s *Server) handlePlaceOrders(c *gin.Context) {
	var req placeOrdersRequest
	if !bindJSON(c, &req) {
		return
	}
	ids, err := services.PlaceOrders(c.Request.Context(), models.PlaceOrdersInput{
		UserID: currentUserID(c),
		Lines:  req.Lines,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order_ids": ids})
}

// orderFilter reads the date range, payment status and paging query parameters.
func orderFilter(c *gin.Context) (models.OrderFilter, bool) {
	var f models.OrderFilter
	var ok bool
	if f.From, ok = queryDate(c, "from"); !ok {
		return f, false
	}
	if f.To, ok = queryDate(c, "to"); !ok {
		return f, false
	}
	if f.Page, ok = queryInt(c, "page"); !ok {
		return f, false
	}
	if f.PageSize, ok = queryInt(c, "page_size"); !ok {
		return f, false
	}
	f.PaymentStatus = c.Query("payment_status")
	return f, true
}

func (s *Server) handleListMyOrders(c *gin.Context) {
	f, ok := orderFilter(c)
	if !ok {
		return
	}
	f.UserID = currentUserID(c)
	page, err := services.ListOrders(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleMyOutstanding(c *gin.Context) {
	sum, err := services.GetOutstanding(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (s *Server) handleGetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	o, err := services.GetOrder(c.Request.Context(), id, currentUserID(c), isAdmin(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := services.CancelOrder(c.Request.Context(), id, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleMarkOrderPaid(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := services.MarkOrderPaid(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
