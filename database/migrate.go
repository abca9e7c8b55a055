package database

import (
	"errors"

	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"gorm.io/gorm"
)

// AllModels lists every table of the storefront in migration order.
var AllModels = []interface{}{
	&models.Customer{},
	&models.StoreSettings{},
	&models.ReservationSettings{},
	&models.Reservation{},
	&models.MenuCategory{},
	&models.MenuItem{},
	&models.Order{},
	&models.OrderItem{},
	&models.ReturnRequest{},
	&models.OrderFeedback{},
	&models.SpecialSection{},
	&models.DBChange{},
}

// DefaultSections are created on first start.
var DefaultSections = []models.SpecialSection{
	{SectionKey: "featured", Title: "Featured dishes", DisplayOrder: 1},
	{SectionKey: "todays_menu", Title: "Today's menu", DisplayOrder: 2},
	{SectionKey: "daily_specials", Title: "Daily specials", DisplayOrder: 3},
	{SectionKey: "new_dishes", Title: "New on the menu", DisplayOrder: 4},
	{SectionKey: "discount_combos", Title: "Combo deals", DisplayOrder: 5},
}

// AutoMigrate creates the schema and seeds the single-row settings tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels...); err != nil {
		return err
	}
	if utils.InfoLogger != nil {
		utils.InfoLogger.Println("AutoMigrate completed.")
	}
	return Seed(db)
}

// Seed inserts the settings rows and default sections when they are missing.
func Seed(db *gorm.DB) error {
	var store models.StoreSettings
	err := db.First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		store = models.StoreSettings{StoreName: "My Restaurant"}
		if err := db.Create(&store).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	var reservation models.ReservationSettings
	err = db.First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		reservation = models.ReservationSettings{ClosedDays: []string{}}
		if err := db.Create(&reservation).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	for _, section := range DefaultSections {
		s := section
		if err := db.Where(models.SpecialSection{SectionKey: s.SectionKey}).FirstOrCreate(&s).Error; err != nil {
			return err
		}
	}
	return nil
}
