package migration

import (
	"gorm.io/gorm"

	"github.com/beesaferoot/fritter/internal/models"
)

func init() {
	RegisterMigration(&Migration{
		Version: "20221101120000",
		Name:    "create_users",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&models.User{})
		},
		Down: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&models.User{})
		},
	})

	RegisterMigration(&Migration{
		Version: "20221101120100",
		Name:    "create_freets",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&models.Freet{})
		},
		Down: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&models.Freet{})
		},
	})

	RegisterMigration(&Migration{
		Version: "20221108090000",
		Name:    "create_ratings",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&models.Rating{})
		},
		Down: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&models.Rating{})
		},
	})

	// AutoMigrate also creates the table_users, table_mods and table_freets join tables
	RegisterMigration(&Migration{
		Version: "20221115140000",
		Name:    "create_tables",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&models.Table{})
		},
		Down: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable("table_users", "table_mods", "table_freets", &models.Table{})
		},
	})

	RegisterMigration(&Migration{
		Version: "20221122100000",
		Name:    "create_votes",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&models.Vote{})
		},
		Down: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&models.Vote{})
		},
	})
}

// Latest applies every registered migration to db.
func Latest(db *gorm.DB) error {
	_, err := NewMigrator(db).Up()
	return err
}
