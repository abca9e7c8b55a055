package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/realtime"
	"github.com/yeremiapane/restaurant-storefront/toggle"
)

func newMenuService(t *testing.T, env *testEnv) (*MenuService, string) {
	dir := t.TempDir()
	return NewMenuService(env.db, NewLocalImageStore(dir, "http://localhost:8080/"), env.board), dir
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hot-drinks", Slugify("  Hot Drinks!! "))
	assert.Equal(t, "cafe-au-lait", Slugify("Cafe au Lait"))
	assert.Equal(t, "category", Slugify("***"))
}

func TestCreateCategoryUniqueSlug(t *testing.T) {
	env := newEnv(t)
	svc, _ := newMenuService(t, env)
	ctx := context.Background()

	first, err := svc.CreateCategory(ctx, CategoryInput{Name: "Desserts"})
	require.NoError(t, err)
	second, err := svc.CreateCategory(ctx, CategoryInput{Name: "desserts"})
	require.NoError(t, err)
	assert.Equal(t, "desserts", first.Slug)
	assert.Equal(t, "desserts-2", second.Slug)

	inactive := false
	hidden, err := svc.CreateCategory(ctx, CategoryInput{Name: "Secret", IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, hidden.IsActive)
	var stored models.MenuCategory
	require.NoError(t, env.db.First(&stored, hidden.ID).Error)
	assert.False(t, stored.IsActive)
	cats, err := svc.Categories(ctx, true)
	require.NoError(t, err)
	for _, c := range cats {
		assert.NotEqual(t, hidden.ID, c.ID)
	}

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: " "})
	assert.EqualError(t, err, "Category name is required")
}

func TestDeleteCategoryWithItemsConflicts(t *testing.T) {
	env := newEnv(t)
	svc, _ := newMenuService(t, env)
	cat := env.category(t, "Mains")
	env.menuItem(t, cat.ID, "Curry", 12)

	err := svc.DeleteCategory(context.Background(), cat.ID)
	assert.ErrorIs(t, err, ErrConflict)

	empty := env.category(t, "Empty")
	assert.NoError(t, svc.DeleteCategory(context.Background(), empty.ID))
}

func TestCreateItemValidation(t *testing.T) {
	env := newEnv(t)
	svc, _ := newMenuService(t, env)
	cat := env.category(t, "Mains")
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, MenuItemInput{CategoryID: 99, Name: "Ghost", Price: 3})
	assert.EqualError(t, err, "Category does not exist")
	_, err = svc.CreateItem(ctx, MenuItemInput{CategoryID: cat.ID, Name: "Cheap", Price: -1})
	assert.EqualError(t, err, "Price cannot be negative")
	_, err = svc.CreateItem(ctx, MenuItemInput{CategoryID: cat.ID, Name: "Lava", Price: 9, SpiceLevel: 6})
	assert.EqualError(t, err, "Spice level must be between 0 and 5")

	unavailable := false
	item, err := svc.CreateItem(ctx, MenuItemInput{CategoryID: cat.ID, Name: "Soup", Price: 6.499, DietaryTags: []string{" Vegan ", ""}, IsAvailable: &unavailable})
	require.NoError(t, err)
	assert.Equal(t, 6.5, item.Price)
	assert.Equal(t, []string{"vegan"}, item.DietaryTags)
	assert.False(t, item.IsAvailable)
	assert.Equal(t, "Mains", item.Category.Name)
}

func TestBrowseHidesUnavailableAndInactive(t *testing.T) {
	env := newEnv(t)
	svc, _ := newMenuService(t, env)
	ctx := context.Background()

	mains := env.category(t, "Mains")
	closed := env.category(t, "Closed")
	require.NoError(t, env.db.Model(&closed).Update("is_active", false).Error)

	env.menuItem(t, mains.ID, "Curry", 12)
	gone := env.menuItem(t, mains.ID, "Sold Out", 10)
	require.NoError(t, env.db.Model(&gone).Update("is_available", false).Error)
	env.menuItem(t, closed.ID, "Hidden", 8)

	page, err := svc.Browse(ctx, MenuQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Curry"}, names(page.Items))
	assert.Equal(t, "mains", page.Items[0].Category.Slug)

	page, err = svc.Browse(ctx, MenuQuery{Search: "nothing like this"})
	require.NoError(t, err)
	assert.True(t, page.Empty)
}

func TestToggleAvailability(t *testing.T) {
	env := newEnv(t)
	svc, _ := newMenuService(t, env)
	cat := env.category(t, "Mains")
	item := env.menuItem(t, cat.ID, "Curry", 12)

	state, err := svc.ToggleAvailability(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, state.Value)
	assert.Equal(t, "Disabled", state.Status)

	got, err := svc.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)

	failUpdates(t, env.db, "menu_items")
	state, err = svc.ToggleAvailability(context.Background(), item.ID)
	require.Error(t, err)
	assert.False(t, state.Value, "failed flip restores the previous value")
	assert.NotEmpty(t, state.Error)

	sw, ok := env.board.Lookup(toggle.Key("menu_item", item.ID, "is_available"))
	require.True(t, ok)
	assert.False(t, sw.Value())
}

func TestSetImageReplacesOldFile(t *testing.T) {
	env := newEnv(t)
	svc, dir := newMenuService(t, env)
	cat := env.category(t, "Mains")
	item := env.menuItem(t, cat.ID, "Curry", 12)
	ctx := context.Background()

	first, err := svc.SetImage(ctx, item.ID, "curry.JPG", bytes.NewReader([]byte("jpeg bytes")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ImageURL, "http://localhost:8080/uploads/menu_images/"))
	assert.True(t, strings.HasSuffix(first.ImageURL, ".jpg"))
	oldPath := filepath.Join(dir, "menu_images", filepath.Base(first.ImageURL))
	assert.FileExists(t, oldPath)

	second, err := svc.SetImage(ctx, item.ID, "curry.png", bytes.NewReader([]byte("png bytes")))
	require.NoError(t, err)
	assert.NotEqual(t, first.ImageURL, second.ImageURL)
	assert.NoFileExists(t, oldPath)

	_, err = svc.SetImage(ctx, item.ID, "script.exe", bytes.NewReader([]byte("MZ")))
	assert.EqualError(t, err, "Only jpg, jpeg, png, gif and webp images are allowed")

	require.NoError(t, svc.DeleteItem(ctx, item.ID))
	entries, err := os.ReadDir(filepath.Join(dir, "menu_images"))
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = svc.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteItemInOrderConflicts(t *testing.T) {
	env := newEnv(t)
	svc, _ := newMenuService(t, env)
	cat := env.category(t, "Mains")
	item := env.menuItem(t, cat.ID, "Curry", 12)
	user := env.customer(t, "eater@example.com", false)
	env.order(t, user.ID, models.OrderStatusPending, time.Now(), item)

	assert.ErrorIs(t, svc.DeleteItem(context.Background(), item.ID), ErrConflict)
}

func TestDeleteItemPublishesDeleteEvent(t *testing.T) {
	env := newEnv(t)
	svc, _ := newMenuService(t, env)
	ctx := context.Background()
	cat := env.category(t, "Mains")
	item := env.menuItem(t, cat.ID, "Curry", 12)

	var events []realtime.Event
	cm := NewChangeMonitor(env.db, time.Second, realtime.SinkFunc(func(_ context.Context, ev realtime.Event) error {
		if ev.Table == "menu_items" {
			events = append(events, ev)
		}
		return nil
	}))
	_, err := cm.Poll(ctx)
	require.NoError(t, err)
	events = nil

	require.NoError(t, svc.DeleteItem(ctx, item.ID))

	_, err = cm.Poll(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.ActionDelete, events[0].Action)
	assert.Equal(t, int64(item.ID), events[0].RecordID)
}
