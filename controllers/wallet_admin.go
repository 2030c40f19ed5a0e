package controllers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/learnsphere/learnsphere/config"
	"github.com/learnsphere/learnsphere/models"
	"github.com/learnsphere/learnsphere/utils"
)

type walletAdjustmentRequest struct {
	UserID uint    `json:"user_id"`
	Type   string  `json:"type" binding:"required,oneof=credit debit"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Meta   string  `json:"meta"`
}

// POST /user/wallet and /admin/wallet
// Manual wallet adjustment (refunds, goodwill credits, corrections).
// Credits mint money and need admin; a user may debit their own wallet.
// Every adjustment lands in the same append-only ledger as settlement.
func AdjustWallet(c *gin.Context) {
	utils.LogInfo("AdjustWallet called")
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req walletAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid adjustment details", err.Error())
		return
	}
	if req.UserID == 0 {
		req.UserID = user.ID
	}
	if req.Type == models.TransactionTypeCredit && !user.IsAdmin {
		utils.Forbidden(c, "Wallet credits require admin access")
		return
	}
	if req.UserID != user.ID && !user.IsAdmin {
		utils.Forbidden(c, "You can only adjust your own wallet")
		return
	}

	var target models.User
	if err := config.DB.First(&target, req.UserID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if _, err := utils.GetOrCreateWallet(config.DB, req.UserID); err != nil {
		utils.LogError("Failed to load wallet for user ID: %d: %v", req.UserID, err)
		utils.InternalServerError(c, "Failed to adjust wallet", nil)
		return
	}

	description := req.Meta
	if description == "" {
		description = "Manual adjustment by admin"
	}
	reference := "ADJ-" + uuid.NewString()

	var txn *models.WalletTransaction
	var err error
	switch req.Type {
	case models.TransactionTypeCredit:
		txn, err = utils.CreditWallet(config.DB, req.UserID, req.Amount, description, reference)
	case models.TransactionTypeDebit:
		txn, err = utils.DebitWallet(config.DB, req.UserID, req.Amount, description, reference)
	}
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInsufficientFunds):
			utils.BadRequest(c, "Insufficient wallet balance for debit", nil)
		case errors.Is(err, models.ErrWalletSuspended):
			utils.Forbidden(c, "Wallet is suspended")
		case errors.Is(err, models.ErrInvalidAmount):
			utils.BadRequest(c, "Amount must be positive", nil)
		default:
			utils.LogError("Failed to adjust wallet for user ID: %d: %v", req.UserID, err)
			utils.InternalServerError(c, "Failed to adjust wallet", nil)
		}
		return
	}
	utils.LogInfo("Wallet adjusted for user ID: %d, %s %.2f by user ID: %d", req.UserID, req.Type, req.Amount, user.ID)

	utils.Success(c, "Wallet adjusted successfully", gin.H{
		"transaction_id": txn.ID,
		"user_id":        req.UserID,
		"type":           txn.Type,
		"amount":         fmt.Sprintf("%.2f", txn.Amount),
		"reference":      txn.Reference,
	})
}

// PUT /admin/wallet/:userId/status
// Suspending a wallet blocks debits and credits until reactivated.
func SetWalletStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,oneof=active suspended"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "status must be active or suspended", err.Error())
		return
	}

	userID, ok := paramUint(c, "userId")
	if !ok {
		return
	}

	wallet, err := utils.GetOrCreateWallet(config.DB, userID)
	if err != nil {
		utils.LogError("Failed to load wallet for user ID: %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to update wallet", nil)
		return
	}

	if err := config.DB.Model(wallet).Update("status", req.Status).Error; err != nil {
		utils.LogError("Failed to update wallet status for user ID: %d: %v", userID, err)
		utils.InternalServerError(c, "Failed to update wallet", nil)
		return
	}
	utils.LogInfo("Wallet for user ID: %d set to %s", userID, req.Status)

	utils.Success(c, "Wallet status updated", gin.H{
		"user_id": userID,
		"status":  req.Status,
	})
}
