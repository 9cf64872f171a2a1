package dao

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/propline/bidboard/dao/model"
)

// Migrate applies the schema migrations. The initial migration creates
// the full marketplace table set; later schema changes get their own
// entry appended to the list.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20240101000000_init",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&model.User{},
					&model.Property{},
					&model.Project{},
					&model.Bid{},
					&model.Document{},
					&model.Message{},
					&model.Notification{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					"notifications", "messages", "documents",
					"bids", "projects", "properties", "users",
				)
			},
		},
	})
	return m.Migrate()
}
