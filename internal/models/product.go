package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a catalog item users can purchase. Existing holdings carry
// a snapshot of these fields, so edits here never touch past purchases.
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string         `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Price       float64        `gorm:"type:decimal(15,2);not null" json:"price"`
	ReturnRate  float64        `gorm:"type:decimal(8,4);not null" json:"return_rate"`
	CycleDays   int            `gorm:"not null" json:"cycle_days"`
	DailyIncome float64        `gorm:"type:decimal(15,2);not null" json:"daily_income"`
	TotalReturn float64        `gorm:"type:decimal(15,2);not null" json:"total_return"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	CreatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
