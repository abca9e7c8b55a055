package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

type SectionController struct {
	Sections *services.SectionService
}

func NewSectionController(sections *services.SectionService) *SectionController {
	return &SectionController{Sections: sections}
}

func (sc *SectionController) GetSections(c *gin.Context) {
	sections, err := sc.Sections.List(c.Request.Context(), true)
	if err != nil {
		respondServiceError(c, "load sections", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sections", sections)
}

func (sc *SectionController) AdminList(c *gin.Context) {
	sections, err := sc.Sections.AdminList(c.Request.Context())
	if err != nil {
		respondServiceError(c, "load sections", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sections", sections)
}

func (sc *SectionController) UpdateSection(c *gin.Context) {
	var req services.SectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	section, err := sc.Sections.Update(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		respondServiceError(c, "update the section", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Section updated", section)
}

func (sc *SectionController) ToggleVisibility(c *gin.Context) {
	state, err := sc.Sections.ToggleVisibility(c.Request.Context(), c.Param("key"))
	respondToggle(c, state, state.Status, err)
}
