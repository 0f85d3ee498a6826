package models

import (
	"time"

	"gorm.io/gorm"
)

// Bank is an admin-managed payout bank catalog entry
type Bank struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Code      string         `gorm:"type:varchar(20)" json:"code"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BankAccount holds a user's payout details, one per user. Withdrawal
// transactions snapshot these fields at request time.
type BankAccount struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	User          User           `gorm:"foreignKey:UserID" json:"-"`
	BankName      string         `gorm:"type:varchar(100);not null" json:"bank_name"`
	AccountNumber string         `gorm:"type:varchar(50);not null" json:"account_number"`
	AccountName   string         `gorm:"type:varchar(100);not null" json:"account_name"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
