package settlement

import (
	"github.com/learnsphere/learnsphere/models"
	"github.com/learnsphere/learnsphere/utils"
)

// compensation tracks the mutating steps already committed, so a later
// failure can approximately reverse them.
type compensation struct {
	userID    uint
	coupon    *models.Coupon
	walletTxn *models.WalletTransaction
}

// compensate best-effort reverses a committed wallet debit and coupon
// redemption. Each reversal is attempted independently; a reversal that
// itself fails is logged under a distinct alertable marker and never
// retried here, and it does not change the error already being returned
// to the caller.
func (o *Orchestrator) compensate(comp compensation) {
	if comp.walletTxn != nil {
		reference := "ROLLBACK-" + comp.walletTxn.Reference
		_, err := o.store.CreditWallet(comp.userID, comp.walletTxn.Amount, "Settlement rollback", reference)
		if err != nil {
			utils.LogError("COMPENSATION FAILURE: wallet credit of %.2f for user ID: %d (ref %s) failed: %v",
				comp.walletTxn.Amount, comp.userID, reference, err)
		} else {
			utils.LogInfo("Compensated wallet debit of %.2f for user ID: %d (ref %s)",
				comp.walletTxn.Amount, comp.userID, reference)
		}
	}

	if comp.coupon != nil {
		if err := o.store.ReleaseCouponUsage(comp.userID, comp.coupon.ID); err != nil {
			utils.LogError("COMPENSATION FAILURE: coupon release for user ID: %d, coupon: %s failed: %v",
				comp.userID, comp.coupon.Code, err)
		} else {
			utils.LogInfo("Compensated coupon usage for user ID: %d, coupon: %s", comp.userID, comp.coupon.Code)
		}
	}
}
