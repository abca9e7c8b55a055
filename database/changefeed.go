package database

import (
	"reflect"
	"time"

	"github.com/yeremiapane/restaurant-storefront/models"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WatchedTables are the tables whose writes are recorded in db_changes.
var WatchedTables = []string{
	"orders",
	"order_items",
	"return_requests",
	"order_feedback",
	"menu_items",
	"menu_categories",
	"special_sections",
	"store_settings",
	"reservation_settings",
	"reservations",
}

// RegisterChangefeed installs create/update/delete callbacks that append a
// db_changes row for every write to a watched table. The row is written on the
// same connection, so it commits or rolls back with the change itself.
//
// Rows are identified by the primary key of the statement's model, or by a
// primary-key condition such as Delete(&T{}, id). Writes filtered on other
// columns only (e.g. Where("slug = ?", s).Updates on &T{}) are not recorded.
func RegisterChangefeed(db *gorm.DB) error {
	watched := make(map[string]bool, len(WatchedTables))
	for _, t := range WatchedTables {
		watched[t] = true
	}

	record := func(action string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			if tx.Error != nil || tx.RowsAffected == 0 || tx.Statement.Schema == nil || !watched[tx.Statement.Table] {
				return
			}
			ids := primaryKeys(tx)
			if len(ids) == 0 {
				ids = primaryKeyConditions(tx)
			}
			if len(ids) == 0 {
				return
			}
			now := time.Now()
			changes := make([]models.DBChange, 0, len(ids))
			for _, id := range ids {
				changes = append(changes, models.DBChange{
					TableName:  tx.Statement.Table,
					RecordID:   id,
					ActionType: action,
					ChangedAt:  now,
				})
			}
			err := tx.Session(&gorm.Session{NewDB: true, SkipHooks: true}).Create(&changes).Error
			if err != nil {
				utils.ErrorLogger.Printf("Error recording %s on %s: %v", action, tx.Statement.Table, err)
			}
		}
	}

	const commit = "gorm:commit_or_rollback_transaction"
	if err := db.Callback().Create().Before(commit).After("gorm:create").Register("changefeed:create", record(models.ActionInsert)); err != nil {
		return err
	}
	if err := db.Callback().Update().Before(commit).After("gorm:update").Register("changefeed:update", record(models.ActionUpdate)); err != nil {
		return err
	}
	return db.Callback().Delete().Before(commit).After("gorm:delete").Register("changefeed:delete", record(models.ActionDelete))
}

func primaryKeys(tx *gorm.DB) []int64 {
	field := tx.Statement.Schema.PrioritizedPrimaryField
	if field == nil {
		return nil
	}

	var ids []int64
	collect := func(v reflect.Value) {
		v = reflect.Indirect(v)
		if v.Kind() != reflect.Struct {
			return
		}
		val, zero := field.ValueOf(tx.Statement.Context, v)
		if zero {
			return
		}
		rv := reflect.ValueOf(val)
		switch rv.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			ids = append(ids, int64(rv.Uint()))
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			ids = append(ids, rv.Int())
		}
	}

	rv := tx.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			collect(rv.Index(i))
		}
	default:
		collect(rv)
	}
	return ids
}

// primaryKeyConditions reads ids from WHERE expressions on the primary key,
// as built by Delete(&T{}, id) and First(&T{}, ids).
func primaryKeyConditions(tx *gorm.DB) []int64 {
	field := tx.Statement.Schema.PrioritizedPrimaryField
	c, ok := tx.Statement.Clauses["WHERE"]
	if field == nil || !ok {
		return nil
	}
	where, ok := c.Expression.(clause.Where)
	if !ok {
		return nil
	}

	isPrimary := func(col interface{}) bool {
		column, ok := col.(clause.Column)
		return ok && (column.Name == clause.PrimaryKey || column.Name == field.DBName)
	}

	var ids []int64
	for _, expr := range where.Exprs {
		switch e := expr.(type) {
		case clause.IN:
			if isPrimary(e.Column) {
				for _, v := range e.Values {
					ids = appendIDs(ids, reflect.ValueOf(v))
				}
			}
		case clause.Eq:
			if isPrimary(e.Column) {
				ids = appendIDs(ids, reflect.ValueOf(e.Value))
			}
		}
	}
	return ids
}

func appendIDs(ids []int64, v reflect.Value) []int64 {
	v = reflect.Indirect(v)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			ids = appendIDs(ids, v.Index(i))
		}
	case reflect.Interface:
		ids = appendIDs(ids, v.Elem())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		ids = append(ids, int64(v.Uint()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		ids = append(ids, v.Int())
	}
	return ids
}
