package utils

import (
	"errors"

	"gorm.io/gorm"

	"github.com/learnsphere/learnsphere/models"
)

// GetOrCreateWallet retrieves or creates a wallet for a user
func GetOrCreateWallet(db *gorm.DB, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := db.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = models.Wallet{
		UserID:  userID,
		Balance: 0,
		Status:  models.WalletStatusActive,
	}
	if err := db.Create(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a concurrent first-touch race; the row exists now.
			if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
				return nil, err
			}
			return &wallet, nil
		}
		return nil, err
	}
	return &wallet, nil
}

// CreditWallet increases a wallet balance and appends the matching
// credit ledger entry. Balance update and ledger append run in one
// database transaction.
func CreditWallet(db *gorm.DB, userID uint, amount float64, description, reference string) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	var txn *models.WalletTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, userID)
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Wallet{}).Where("id = ?", wallet.ID).
			UpdateColumn("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return err
		}

		txn = &models.WalletTransaction{
			WalletID:    wallet.ID,
			UserID:      userID,
			Amount:      amount,
			Type:        models.TransactionTypeCredit,
			Description: description,
			Reference:   reference,
			Status:      models.TransactionStatusSuccess,
		}
		return tx.Create(txn).Error
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// DebitWallet decreases a wallet balance and appends the matching debit
// ledger entry. The balance check and decrement happen in a single
// conditional UPDATE so concurrent debits can never drive the balance
// negative. A rejected debit is recorded as its own failed entry.
func DebitWallet(db *gorm.DB, userID uint, amount float64, description, reference string) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	var txn *models.WalletTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, userID)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Wallet{}).
			Where("id = ? AND balance >= ?", wallet.ID, amount).
			UpdateColumn("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrInsufficientFunds
		}

		txn = &models.WalletTransaction{
			WalletID:    wallet.ID,
			UserID:      userID,
			Amount:      amount,
			Type:        models.TransactionTypeDebit,
			Description: description,
			Reference:   reference,
			Status:      models.TransactionStatusSuccess,
		}
		return tx.Create(txn).Error
	})
	if errors.Is(err, models.ErrInsufficientFunds) {
		recordFailedDebit(db, userID, amount, description, reference)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// lockWallet loads the wallet row and rejects suspended wallets.
func lockWallet(tx *gorm.DB, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrWalletNotFound
		}
		return nil, err
	}
	if wallet.Status == models.WalletStatusSuspended {
		return nil, models.ErrWalletSuspended
	}
	return &wallet, nil
}

// recordFailedDebit leaves an audit trail for a rejected debit attempt.
// Best effort: the rejection itself is already being returned to the
// caller, so a failure here is only logged.
func recordFailedDebit(db *gorm.DB, userID uint, amount float64, description, reference string) {
	var wallet models.Wallet
	if err := db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		LogError("Failed to record rejected debit for user ID: %d: %v", userID, err)
		return
	}
	entry := models.WalletTransaction{
		WalletID:    wallet.ID,
		UserID:      userID,
		Amount:      amount,
		Type:        models.TransactionTypeDebit,
		Description: description,
		Reference:   reference,
		Status:      models.TransactionStatusFailed,
	}
	if err := db.Create(&entry).Error; err != nil {
		LogError("Failed to record rejected debit for user ID: %d: %v", userID, err)
	}
}
