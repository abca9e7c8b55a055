package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

type MenuController struct {
	Menu *services.MenuService
}

func NewMenuController(menu *services.MenuService) *MenuController {
	return &MenuController{Menu: menu}
}

// BrowseMenu serves the storefront menu page. Query parameters: search,
// category (slug) or category_id, tag (repeatable or comma separated),
// max_spice, featured, todays_menu, daily_special, new_dish,
// discount_combo, sort, page, page_size.
func (mc *MenuController) BrowseMenu(c *gin.Context) {
	var q services.MenuQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var tags []string
	for _, t := range q.DietaryTags {
		tags = append(tags, strings.Split(t, ",")...)
	}
	q.DietaryTags = tags

	page, err := mc.Menu.Browse(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, "load the menu", err)
		return
	}

	message := "List of menu items"
	if page.Empty {
		message = page.EmptyMessage
	}
	utils.RespondJSON(c, http.StatusOK, message, page)
}

func (mc *MenuController) GetMenuItem(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	item, err := mc.Menu.GetItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, "load the menu item", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item", item)
}

func (mc *MenuController) AdminList(c *gin.Context) {
	items, err := mc.Menu.ListItems(c.Request.Context())
	if err != nil {
		respondServiceError(c, "load menu items", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", items)
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req services.MenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := mc.Menu.CreateItem(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, "create the menu item", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	var req services.MenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item, err := mc.Menu.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, "update the menu item", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	if err := mc.Menu.DeleteItem(c.Request.Context(), id); err != nil {
		respondServiceError(c, "delete the menu item", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", nil)
}

func (mc *MenuController) ToggleAvailability(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}
	state, err := mc.Menu.ToggleAvailability(c.Request.Context(), id)
	respondToggle(c, state, state.Status, err)
}

// UploadImage takes a multipart "image" file, at most services.MaxImageSize.
func (mc *MenuController) UploadImage(c *gin.Context) {
	id, ok := paramID(c, "menu_id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxImageSize+1<<20)
	file, err := c.FormFile("image")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("image file is required"))
		return
	}
	if file.Size > services.MaxImageSize {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("Image must be %d MB or smaller", services.MaxImageSize>>20))
		return
	}

	f, err := file.Open()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	defer f.Close()

	item, err := mc.Menu.SetImage(c.Request.Context(), id, file.Filename, f)
	if err != nil {
		respondServiceError(c, "upload the image", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Image uploaded", item)
}
