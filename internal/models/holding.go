package models

import (
	"time"

	"gorm.io/gorm"
)

// Holding is a purchased instance of a Product. Price and DailyIncome are
// snapshots taken at purchase time. DaysRemaining counts down once per
// accrual day; the holding is deactivated when it reaches zero.
type Holding struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"index;not null" json:"user_id"`
	User          User           `gorm:"foreignKey:UserID" json:"-"`
	ProductID     uint           `gorm:"index;not null" json:"product_id"`
	ProductName   string         `gorm:"type:varchar(100);not null" json:"product_name"`
	Price         float64        `gorm:"type:decimal(15,2);not null" json:"price"`
	DailyIncome   float64        `gorm:"type:decimal(15,2);not null" json:"daily_income"`
	DaysRemaining int            `gorm:"not null" json:"days_remaining"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	PurchasedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"purchased_at"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName keeps the original table name for purchased products.
func (Holding) TableName() string {
	return "user_products"
}
