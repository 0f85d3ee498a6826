package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/yieldvest/backend/internal/models"
)

// CreateCoreTables creates the users, products, holdings, transactions and
// bank tables.
func CreateCoreTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_core_tables",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&models.User{},
				&models.Product{},
				&models.Holding{},
				&models.Transaction{},
				&models.Bank{},
				&models.BankAccount{},
			)
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(
				"bank_accounts",
				"banks",
				"transactions",
				"user_products",
				"products",
				"users",
			)
		},
	}
}
