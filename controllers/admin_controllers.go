package controllers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

type AdminController struct {
	Dashboard *services.DashboardService
	Orders    *services.OrderService
	Settings  *services.SettingsService
}

func NewAdminController(dashboard *services.DashboardService, orders *services.OrderService, settings *services.SettingsService) *AdminController {
	return &AdminController{Dashboard: dashboard, Orders: orders, Settings: settings}
}

// GetDashboardStats returns the aggregate statistics of the admin dashboard
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Dashboard.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, "load dashboard statistics", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard statistics", stats)
}

// DownloadReport renders the dashboard statistics as a PDF.
func (ac *AdminController) DownloadReport(c *gin.Context) {
	ctx := c.Request.Context()
	stats, err := ac.Dashboard.Stats(ctx)
	if err != nil {
		respondServiceError(c, "load dashboard statistics", err)
		return
	}
	settings, err := ac.Settings.Get(ctx)
	if err != nil {
		respondServiceError(c, "load store settings", err)
		return
	}

	var buf bytes.Buffer
	if err := services.RenderDashboardPDF(&buf, stats, settings); err != nil {
		respondServiceError(c, "generate the report", err)
		return
	}

	filename := "dashboard-" + stats.GeneratedAt.Format("20060102-1504") + ".pdf"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (ac *AdminController) ListReturns(c *gin.Context) {
	returns, err := ac.Orders.ListReturns(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondServiceError(c, "load return requests", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Return requests", returns)
}

func (ac *AdminController) ModerateReturn(c *gin.Context) {
	id, ok := paramID(c, "return_id")
	if !ok {
		return
	}
	var req struct {
		Status     string `json:"status" binding:"required"`
		AdminNotes string `json:"admin_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	request, err := ac.Orders.ModerateReturn(c.Request.Context(), id, req.Status, req.AdminNotes)
	if err != nil {
		respondServiceError(c, "update the return request", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Return request updated", request)
}

func (ac *AdminController) ListFeedback(c *gin.Context) {
	feedback, err := ac.Orders.ListFeedback(c.Request.Context())
	if err != nil {
		respondServiceError(c, "load feedback", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order feedback", feedback)
}
