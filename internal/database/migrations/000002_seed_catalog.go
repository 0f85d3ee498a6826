package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/yieldvest/backend/internal/models"
	"github.com/yieldvest/backend/internal/utils"
)

// SeedCatalog seeds the default product catalog, payout bank list and root
// admin account on a fresh database.
func SeedCatalog() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_seed_catalog",
		Migrate: func(tx *gorm.DB) error {
			products := []models.Product{
				{Name: "Starter Plan", Price: 2000, ReturnRate: 0.12, CycleDays: 30, DailyIncome: 240, SortOrder: 1, IsActive: true},
				{Name: "Growth Plan", Price: 5000, ReturnRate: 0.12, CycleDays: 50, DailyIncome: 600, SortOrder: 2, IsActive: true},
				{Name: "Premium Plan", Price: 12000, ReturnRate: 0.13, CycleDays: 60, DailyIncome: 1560, SortOrder: 3, IsActive: true},
			}
			for i := range products {
				products[i].Slug = slug.Make(products[i].Name)
				products[i].TotalReturn = products[i].DailyIncome * float64(products[i].CycleDays)
				if err := tx.Create(&products[i]).Error; err != nil {
					return err
				}
			}

			banks := []models.Bank{
				{Name: "State Bank of India", Code: "SBIN", IsActive: true},
				{Name: "HDFC Bank", Code: "HDFC", IsActive: true},
				{Name: "ICICI Bank", Code: "ICIC", IsActive: true},
				{Name: "Punjab National Bank", Code: "PUNB", IsActive: true},
			}
			for i := range banks {
				if err := tx.Create(&banks[i]).Error; err != nil {
					return err
				}
			}

			hash, err := utils.HashPassword("change-me-on-first-login")
			if err != nil {
				return err
			}
			admin := models.User{
				Phone:        "0000000000",
				PasswordHash: hash,
				ReferralCode: utils.GenerateReferralCode(8),
				IsAdmin:      true,
			}
			return tx.Create(&admin).Error
		},
		Rollback: func(tx *gorm.DB) error {
			if err := tx.Exec("DELETE FROM users WHERE is_admin = true").Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM banks").Error; err != nil {
				return err
			}
			return tx.Exec("DELETE FROM products").Error
		},
	}
}
