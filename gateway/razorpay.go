package gateway

import (
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// razorpayGateway implements Gateway on top of the razorpay REST client.
type razorpayGateway struct {
	client *razorpay.Client
}

// NewRazorpay builds a Gateway backed by Razorpay.
func NewRazorpay(key, secret string) Gateway {
	return &razorpayGateway{client: razorpay.NewClient(key, secret)}
}

func (g *razorpayGateway) CreateOrder(amountPaise int64, currency, receipt string) (*Order, error) {
	orderData := map[string]interface{}{
		"amount":          amountPaise,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}
	rzOrder, err := g.client.Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}
	return &Order{
		ID:       toString(rzOrder["id"]),
		Amount:   toInt64(rzOrder["amount"]),
		Currency: toString(rzOrder["currency"]),
		Receipt:  toString(rzOrder["receipt"]),
	}, nil
}

func (g *razorpayGateway) FetchPayment(paymentID string) (*PaymentInfo, error) {
	payment, err := g.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay payment fetch: %w", err)
	}
	return &PaymentInfo{
		ID:       toString(payment["id"]),
		OrderID:  toString(payment["order_id"]),
		Amount:   toInt64(payment["amount"]),
		Currency: toString(payment["currency"]),
		Status:   toString(payment["status"]),
		Method:   toString(payment["method"]),
	}, nil
}

// The razorpay client returns loosely typed maps; amounts arrive as
// json float64 but int shows up in tests and fixtures.
func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
