package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a platform member and their financial state. Balance and
// the commission totals are only ever changed through the store's atomic
// relative updates, never by saving a loaded row.
type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Phone            string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	PasswordHash     string         `gorm:"type:varchar(255);not null" json:"-"`
	ReferralCode     string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"referral_code"`
	ReferredBy       *uint          `gorm:"index" json:"referred_by"`
	Balance          float64        `gorm:"type:decimal(15,2);default:0" json:"balance"`
	DailyIncome      float64        `gorm:"type:decimal(15,2);default:0" json:"daily_income"`
	Level1Commission float64        `gorm:"type:decimal(15,2);default:0" json:"level1_commission"`
	Level2Commission float64        `gorm:"type:decimal(15,2);default:0" json:"level2_commission"`
	Level3Commission float64        `gorm:"type:decimal(15,2);default:0" json:"level3_commission"`
	HasProduct       bool           `gorm:"default:false" json:"has_product"`
	HasDeposited     bool           `gorm:"default:false" json:"has_deposited"`
	IsAdmin          bool           `gorm:"default:false" json:"is_admin"`
	IsBlocked        bool           `gorm:"default:false" json:"is_blocked"`
	CreatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}
