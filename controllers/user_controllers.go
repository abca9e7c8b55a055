package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/middlewares"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

type UserController struct {
	Auth *services.AuthService
}

func NewUserController(auth *services.AuthService) *UserController {
	return &UserController{Auth: auth}
}

// Register creates a customer account
func (uc *UserController) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	customer, err := uc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, "register", err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Account created", gin.H{
		"user_id": customer.ID,
	})
}

// Login returns a JWT
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	token, customer, err := uc.Auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondServiceError(c, "log in", err)
		return
	}

	utils.InfoLogger.Printf("User %d logged in", customer.ID)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":    token,
		"customer": customer,
	})
}

func (uc *UserController) Logout(c *gin.Context) {
	uc.Auth.Logout(c.GetString(middlewares.ContextToken))
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}
