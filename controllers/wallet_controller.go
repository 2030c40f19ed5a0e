package controllers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/learnsphere/learnsphere/config"
	"github.com/learnsphere/learnsphere/models"
	"github.com/learnsphere/learnsphere/utils"
)

// walletOwner resolves which user's wallet a request targets. Admins may
// pass ?user_id= to inspect any wallet; everyone else gets their own.
func walletOwner(c *gin.Context, user models.User) (uint, bool) {
	if raw := c.Query("user_id"); raw != "" {
		if !user.IsAdmin {
			utils.Forbidden(c, "You can only view your own wallet")
			return 0, false
		}
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.BadRequest(c, "Invalid user ID", nil)
			return 0, false
		}
		return uint(id), true
	}
	return user.ID, true
}

// GET /user/wallet
func GetWallet(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ownerID, ok := walletOwner(c, user)
	if !ok {
		return
	}

	wallet, err := utils.GetOrCreateWallet(config.DB, ownerID)
	if err != nil {
		utils.LogError("Failed to fetch wallet for user ID: %d: %v", ownerID, err)
		utils.InternalServerError(c, "Failed to fetch wallet", nil)
		return
	}

	data := gin.H{
		"balance": fmt.Sprintf("%.2f", wallet.Balance),
	}
	// Suspension status is an operational detail, admin eyes only.
	if user.IsAdmin {
		data["user_id"] = wallet.UserID
		data["status"] = wallet.Status
	}

	utils.Success(c, "Wallet fetched successfully", data)
}

// GET /user/wallet/transactions
func GetWalletTransactions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ownerID, ok := walletOwner(c, user)
	if !ok {
		return
	}

	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.WalletTransaction{}).Where("user_id = ?", ownerID)
	if txnType := c.Query("type"); txnType == models.TransactionTypeCredit || txnType == models.TransactionTypeDebit {
		query = query.Where("type = ?", txnType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count wallet transactions for user ID: %d: %v", ownerID, err)
		utils.InternalServerError(c, "Failed to fetch wallet transactions", nil)
		return
	}

	var transactions []models.WalletTransaction
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&transactions).Error; err != nil {
		utils.LogError("Failed to fetch wallet transactions for user ID: %d: %v", ownerID, err)
		utils.InternalServerError(c, "Failed to fetch wallet transactions", nil)
		return
	}

	entries := make([]gin.H, 0, len(transactions))
	for _, txn := range transactions {
		entries = append(entries, gin.H{
			"id":          txn.ID,
			"amount":      fmt.Sprintf("%.2f", txn.Amount),
			"type":        txn.Type,
			"status":      txn.Status,
			"description": txn.Description,
			"reference":   txn.Reference,
			"created_at":  txn.CreatedAt,
		})
	}

	utils.SuccessWithPagination(c, "Wallet transactions fetched successfully", entries, total, pagination.Page, pagination.Limit)
}
