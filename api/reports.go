package api

import (
	"bytes"
	"fmt"
	"net/http"

	"meal-admin/services"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleMenuReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, err := services.BuildMenuReport(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := services.WriteMenuReportPDF(&buf, report); err != nil {
		respondError(c, fmt.Errorf("render menu report: %w", err))
		return
	}
	filename := fmt.Sprintf("menu-%d-%s.pdf", id, services.DateKey(report.Menu.MenuDate))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (s *Server) handleDailyReport(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	if date == nil {
		badRequest(c, "date is required")
		return
	}
	stats, err := services.GetDailyStats(c.Request.Context(), *date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
