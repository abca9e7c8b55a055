package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	m.Run()
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenInMemory(t.Name())
	require.NoError(t, err)
	return db
}

func pendingChanges(t *testing.T, db *gorm.DB, table string) []models.DBChange {
	t.Helper()
	var changes []models.DBChange
	require.NoError(t, db.Where("table_name = ? AND processed = ?", table, false).Order("id").Find(&changes).Error)
	return changes
}

func TestSeedCreatesSettingsWithFlagsOn(t *testing.T) {
	db := openDB(t)

	var store models.StoreSettings
	require.NoError(t, db.First(&store).Error)
	assert.True(t, store.EnableOnlineOrdering)
	assert.True(t, store.EnableReturns)
	assert.False(t, store.MaintenanceMode)

	var sections int64
	db.Model(&models.SpecialSection{}).Count(&sections)
	assert.Equal(t, int64(len(DefaultSections)), sections)

	require.NoError(t, Seed(db), "seeding twice is a no-op")
	db.Model(&models.SpecialSection{}).Count(&sections)
	assert.Equal(t, int64(len(DefaultSections)), sections)
}

func TestChangefeedRecordsWrites(t *testing.T) {
	db := openDB(t)

	cat := models.MenuCategory{Name: "Mains", Slug: "mains"}
	require.NoError(t, db.Create(&cat).Error)
	require.NoError(t, db.Model(&models.MenuCategory{ID: cat.ID}).Update("name", "Main courses").Error)
	require.NoError(t, db.Delete(&models.MenuCategory{ID: cat.ID}).Error)

	changes := pendingChanges(t, db, "menu_categories")
	require.Len(t, changes, 3)
	assert.Equal(t, models.ActionInsert, changes[0].ActionType)
	assert.Equal(t, models.ActionUpdate, changes[1].ActionType)
	assert.Equal(t, models.ActionDelete, changes[2].ActionType)
	for _, c := range changes {
		assert.Equal(t, int64(cat.ID), c.RecordID)
	}
}

func TestChangefeedRecordsBatchInserts(t *testing.T) {
	db := openDB(t)

	cats := []models.MenuCategory{{Name: "A", Slug: "a"}, {Name: "B", Slug: "b"}}
	require.NoError(t, db.Create(&cats).Error)

	assert.Len(t, pendingChanges(t, db, "menu_categories"), 2)
}

func TestChangefeedRollsBackWithTransaction(t *testing.T) {
	db := openDB(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.MenuCategory{Name: "Temp", Slug: "temp"}).Error; err != nil {
			return err
		}
		return gorm.ErrInvalidData
	})
	require.Error(t, err)

	assert.Empty(t, pendingChanges(t, db, "menu_categories"))
}

func TestChangefeedRecordsDeletesByPrimaryKeyCondition(t *testing.T) {
	db := openDB(t)

	cats := []models.MenuCategory{{Name: "A", Slug: "a"}, {Name: "B", Slug: "b"}, {Name: "C", Slug: "c"}}
	require.NoError(t, db.Create(&cats).Error)
	require.NoError(t, db.Model(&models.DBChange{}).Where("1 = 1").Update("processed", true).Error)

	require.NoError(t, db.Delete(&models.MenuCategory{}, cats[0].ID).Error)
	require.NoError(t, db.Delete(&models.MenuCategory{}, []uint{cats[1].ID, cats[2].ID}).Error)

	changes := pendingChanges(t, db, "menu_categories")
	require.Len(t, changes, 3)
	for i, c := range changes {
		assert.Equal(t, models.ActionDelete, c.ActionType)
		assert.Equal(t, int64(cats[i].ID), c.RecordID)
	}
}
