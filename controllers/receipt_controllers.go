package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/middlewares"
	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

type ReceiptController struct {
	Orders   *services.OrderService
	Settings *services.SettingsService
}

func NewReceiptController(orders *services.OrderService, settings *services.SettingsService) *ReceiptController {
	return &ReceiptController{Orders: orders, Settings: settings}
}

// GenerateReceipt streams the PDF receipt of one of the caller's orders.
func (rc *ReceiptController) GenerateReceipt(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	order, err := rc.Orders.GetForUser(c.Request.Context(), middlewares.UserID(c), id)
	if err != nil {
		respondServiceError(c, "load the order", err)
		return
	}
	rc.send(c, order)
}

// AdminReceipt streams the receipt of any order.
func (rc *ReceiptController) AdminReceipt(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	order, err := rc.Orders.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, "load the order", err)
		return
	}
	rc.send(c, order)
}

func (rc *ReceiptController) send(c *gin.Context, order models.Order) {
	settings, err := rc.Settings.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, "load store settings", err)
		return
	}

	var buf bytes.Buffer
	if err := services.RenderOrderReceiptPDF(&buf, order, settings); err != nil {
		respondServiceError(c, "generate the receipt", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%d.pdf", order.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	utils.InfoLogger.Printf("Receipt generated for order %d", order.ID)
}
