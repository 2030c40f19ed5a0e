package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet represents a user's wallet. The balance is only ever changed
// through ledger operations that append a WalletTransaction in the same
// database transaction.
type Wallet struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `json:"user_id" gorm:"uniqueIndex"`
	Balance   float64        `json:"balance" gorm:"default:0"`
	Status    string         `json:"status" gorm:"default:'active'"` // active, suspended
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// WalletTransaction is an append-only ledger entry. Rows are never
// updated after creation; a rejected debit is recorded as its own
// failed entry rather than editing anything.
type WalletTransaction struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	WalletID    uint           `json:"wallet_id"`
	Wallet      Wallet         `json:"-" gorm:"foreignKey:WalletID"`
	UserID      uint           `json:"user_id"`
	Amount      float64        `json:"amount"`
	Type        string         `json:"type"` // credit, debit
	Description string         `json:"description"`
	Reference   string         `json:"reference"` // correlation id; rollbacks reference the original entry
	Status      string         `json:"status"`    // success, pending, failed
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Wallet status constants
const (
	WalletStatusActive    = "active"
	WalletStatusSuspended = "suspended"
)

// TransactionType constants
const (
	TransactionTypeCredit = "credit"
	TransactionTypeDebit  = "debit"
)

// TransactionStatus constants
const (
	TransactionStatusSuccess = "success"
	TransactionStatusPending = "pending"
	TransactionStatusFailed  = "failed"
)
