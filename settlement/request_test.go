package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestValidate(t *testing.T) {
	valid := Request{
		UserID:    7,
		UseWallet: true,
		CourseID:  3,
		Amount:    499,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"missing user", func(r *Request) { r.UserID = 0 }},
		{"zero amount", func(r *Request) { r.Amount = 0 }},
		{"negative amount", func(r *Request) { r.Amount = -10 }},
		{"partial gateway fields", func(r *Request) { r.RazorpayPaymentID = "pay_1" }},
		{"signature without ids", func(r *Request) { r.RazorpaySignature = "sig" }},
		{"neither wallet nor gateway", func(r *Request) { r.UseWallet = false }},
		{"cart with explicit course", func(r *Request) { r.IsCart = true }},
		{"no course and no cart", func(r *Request) { r.CourseID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRequestValidateGatewayOnly(t *testing.T) {
	req := Request{
		UserID:            7,
		RazorpayOrderID:   "order_1",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig",
		CourseID:          3,
		Amount:            499,
	}
	assert.NoError(t, req.Validate())
	assert.True(t, req.UsesGateway())

	walletOnly := Request{UserID: 7, UseWallet: true, IsCart: true, Amount: 900}
	assert.NoError(t, walletOnly.Validate())
	assert.False(t, walletOnly.UsesGateway())
}
