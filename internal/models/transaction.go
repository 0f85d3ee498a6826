package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction types
const (
	TxTypeDeposit    = "deposit"
	TxTypeWithdrawal = "withdrawal"
	TxTypePurchase   = "purchase"
	TxTypeCommission = "commission"
	TxTypeIncome     = "income"
)

// Transaction statuses
const (
	TxStatusPending    = "pending"
	TxStatusProcessing = "processing"
	TxStatusCompleted  = "completed"
	TxStatusFailed     = "failed"
)

// Transaction is an append-only ledger entry. Amount and Type are immutable
// once created; only Status and ProcessedAt ever change. Debits carry a
// negative amount, credits a positive one.
type Transaction struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"index;not null" json:"user_id"`
	User          User           `gorm:"foreignKey:UserID" json:"-"`
	Type          string         `gorm:"type:varchar(20);not null;index" json:"type"`
	Amount        float64        `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status        string         `gorm:"type:varchar(20);not null;index" json:"status"`
	Reference     string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"reference"`
	Description   string         `gorm:"type:text" json:"description"`
	BankName      string         `gorm:"type:varchar(100)" json:"bank_name,omitempty"`
	AccountNumber string         `gorm:"type:varchar(50)" json:"account_number,omitempty"`
	AccountName   string         `gorm:"type:varchar(100)" json:"account_name,omitempty"`
	ProcessedAt   *time.Time     `json:"processed_at"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
