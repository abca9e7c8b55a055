package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/middlewares"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

const dateLayout = "2006-01-02"

type OrderController struct {
	Orders  *services.OrderService
	History *services.HistoryService
}

func NewOrderController(orders *services.OrderService, history *services.HistoryService) *OrderController {
	return &OrderController{Orders: orders, History: history}
}

func (oc *OrderController) Checkout(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Checkout(c.Request.Context(), middlewares.UserID(c), req)
	if err != nil {
		respondServiceError(c, "place your order", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

func parseDay(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	day, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, &services.ValidationError{
			Field:   key,
			Message: "Dates must use the YYYY-MM-DD format",
		})
		return nil, false
	}
	return &day, true
}

// OrderHistory lists the caller's orders. Query parameters: status
// ("all" for every status), search, from, to (YYYY-MM-DD).
func (oc *OrderController) OrderHistory(c *gin.Context) {
	filter := services.OrderFilter{Status: c.Query("status"), Search: c.Query("search")}
	var ok bool
	if filter.From, ok = parseDay(c, "from"); !ok {
		return
	}
	if filter.To, ok = parseDay(c, "to"); !ok {
		return
	}

	history, err := oc.History.History(c.Request.Context(), middlewares.UserID(c), filter)
	if err != nil {
		respondServiceError(c, "load your orders", err)
		return
	}

	message := "Your orders"
	if len(history.Orders) == 0 {
		message = "No orders found"
	}
	utils.RespondJSON(c, http.StatusOK, message, history)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Orders.GetForUser(c.Request.Context(), middlewares.UserID(c), id)
	if err != nil {
		respondServiceError(c, "load the order", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order details", order)
}

func (oc *OrderController) RequestReturn(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	var req services.ReturnInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	request, err := oc.Orders.RequestReturn(c.Request.Context(), middlewares.UserID(c), id, req)
	if err != nil {
		respondServiceError(c, "submit the return request", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Return request submitted", request)
}

func (oc *OrderController) ReturnReasons(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Return reasons", services.ReturnReasons)
}

func (oc *OrderController) SubmitFeedback(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	var req services.FeedbackInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	feedback, err := oc.Orders.SubmitFeedback(c.Request.Context(), middlewares.UserID(c), id, req)
	if err != nil {
		respondServiceError(c, "submit your feedback", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Thank you for your feedback", feedback)
}

func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.Orders.AdminList(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondServiceError(c, "load orders", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) AdminGetOrder(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	order, err := oc.Orders.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, "load the order", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order details", order)
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, "update the order", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}
