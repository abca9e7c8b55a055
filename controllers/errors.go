package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/toggle"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrConflict), errors.Is(err, toggle.ErrSaving):
		return http.StatusConflict
	case errors.Is(err, services.ErrNotEligible):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrFeatureDisabled):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// respondServiceError logs unexpected failures and replies with the
// user-facing message.
func respondServiceError(c *gin.Context, action string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		utils.LogError(action, err, map[string]interface{}{"path": c.FullPath()})
		utils.RespondError(c, code, errors.New("Something went wrong while trying to "+action))
		return
	}
	utils.RespondError(c, code, err)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// respondToggle replies with the switch state after a flip. A failed save
// answers 502 with the rolled back state and the error message.
func respondToggle(c *gin.Context, state interface{}, status string, err error) {
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			code = http.StatusBadGateway
		}
		utils.RespondJSON(c, code, err.Error(), state)
		return
	}
	utils.RespondJSON(c, http.StatusOK, status, state)
}
