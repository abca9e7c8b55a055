package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

type SettingsController struct {
	Settings *services.SettingsService
}

func NewSettingsController(settings *services.SettingsService) *SettingsController {
	return &SettingsController{Settings: settings}
}

func (sc *SettingsController) GetSettings(c *gin.Context) {
	settings, err := sc.Settings.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, "load store settings", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Store settings", settings)
}

func (sc *SettingsController) UpdateSettings(c *gin.Context) {
	var req services.StoreSettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	settings, err := sc.Settings.Update(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, "save store settings", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Settings saved", settings)
}

func (sc *SettingsController) ListFlags(c *gin.Context) {
	flags, err := sc.Settings.Flags(c.Request.Context())
	if err != nil {
		respondServiceError(c, "load feature flags", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Feature flags", flags)
}

// ToggleFlag flips one flag. On failure the response carries the rolled
// back state together with the error.
func (sc *SettingsController) ToggleFlag(c *gin.Context) {
	state, err := sc.Settings.ToggleFlag(c.Request.Context(), c.Param("key"))
	respondToggle(c, state, state.Status, err)
}
