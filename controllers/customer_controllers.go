package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/middlewares"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

type CustomerController struct {
	Auth *services.AuthService
}

func NewCustomerController(auth *services.AuthService) *CustomerController {
	return &CustomerController{Auth: auth}
}

func (cc *CustomerController) GetProfile(c *gin.Context) {
	customer, err := cc.Auth.Customer(c.Request.Context(), middlewares.UserID(c))
	if err != nil {
		respondServiceError(c, "load your profile", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile", customer)
}

func (cc *CustomerController) UpdateProfile(c *gin.Context) {
	var req services.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	customer, err := cc.Auth.UpdateProfile(c.Request.Context(), middlewares.UserID(c), req)
	if err != nil {
		respondServiceError(c, "update your profile", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile updated", customer)
}
