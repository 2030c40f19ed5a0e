package gateway

// Order is a gateway-side payment order. It is ephemeral and owned by
// the gateway; only the id and amount come back to us.
type Order struct {
	ID       string
	Amount   int64 // smallest currency unit (paise)
	Currency string
	Receipt  string
}

// PaymentInfo describes a payment fetched from the gateway.
type PaymentInfo struct {
	ID       string
	OrderID  string
	Amount   int64 // smallest currency unit (paise)
	Currency string
	Status   string
	Method   string
}

// Gateway is the payment gateway capability used by the settlement
// flow. Injecting it keeps the orchestrator testable without a live
// gateway account.
type Gateway interface {
	CreateOrder(amountPaise int64, currency, receipt string) (*Order, error)
	FetchPayment(paymentID string) (*PaymentInfo, error)
}
