package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/middlewares"
	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

type ReservationController struct {
	Reservations *services.ReservationService
}

func NewReservationController(reservations *services.ReservationService) *ReservationController {
	return &ReservationController{Reservations: reservations}
}

func (rc *ReservationController) GetSettings(c *gin.Context) {
	settings, err := rc.Reservations.GetSettings(c.Request.Context())
	if err != nil {
		respondServiceError(c, "load reservation settings", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation settings", settings)
}

func (rc *ReservationController) UpdateSettings(c *gin.Context) {
	var req models.ReservationSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	settings, err := rc.Reservations.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, "save reservation settings", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation settings saved", settings)
}

// Create books a table. Guests may book without an account.
func (rc *ReservationController) Create(c *gin.Context) {
	var req services.ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customerID *uint
	if id := middlewares.UserID(c); id != 0 {
		customerID = &id
	}

	reservation, err := rc.Reservations.Create(c.Request.Context(), req, customerID)
	if err != nil {
		respondServiceError(c, "book a table", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation received", reservation)
}

func (rc *ReservationController) ListMine(c *gin.Context) {
	reservations, err := rc.Reservations.ListForCustomer(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondServiceError(c, "load your reservations", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Your reservations", reservations)
}

func (rc *ReservationController) AdminList(c *gin.Context) {
	reservations, err := rc.Reservations.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondServiceError(c, "load reservations", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations", reservations)
}

func (rc *ReservationController) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "reservation_id")
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

	reservation, err := rc.Reservations.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, "update the reservation", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", reservation)
}
