package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

type MenuCategoryController struct {
	Menu *services.MenuService
}

func NewMenuCategoryController(menu *services.MenuService) *MenuCategoryController {
	return &MenuCategoryController{Menu: menu}
}

// GetCategories lists active categories for the storefront
func (mcc *MenuCategoryController) GetCategories(c *gin.Context) {
	categories, err := mcc.Menu.Categories(c.Request.Context(), true)
	if err != nil {
		respondServiceError(c, "load categories", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

func (mcc *MenuCategoryController) AdminList(c *gin.Context) {
	categories, err := mcc.Menu.Categories(c.Request.Context(), false)
	if err != nil {
		respondServiceError(c, "load categories", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

func (mcc *MenuCategoryController) CreateCategory(c *gin.Context) {
	var req services.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	category, err := mcc.Menu.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, "create the category", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Category created", category)
}

func (mcc *MenuCategoryController) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "category_id")
	if !ok {
		return
	}
	var req services.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	category, err := mcc.Menu.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, "update the category", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated", category)
}

func (mcc *MenuCategoryController) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "category_id")
	if !ok {
		return
	}
	if err := mcc.Menu.DeleteCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, "delete the category", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted", nil)
}
