package models

import "time"

// Plan is a paid subscription tier
type Plan struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AmountPaise int64  `json:"amountPaise"`
	Currency    string `json:"currency"`
}

// Plans is the catalog of subscription tiers. Amounts are in paise.
var Plans = map[string]Plan{
	"basic":      {ID: "basic", Name: "Basic", AmountPaise: 19900, Currency: "INR"},
	"premium":    {ID: "premium", Name: "Premium", AmountPaise: 49900, Currency: "INR"},
	"enterprise": {ID: "enterprise", Name: "Enterprise", AmountPaise: 99900, Currency: "INR"},
}

// PaymentOrderStatus tracks a gateway order
type PaymentOrderStatus string

const (
	PaymentOrderCreated PaymentOrderStatus = "created"
	PaymentOrderPaid    PaymentOrderStatus = "paid"
	PaymentOrderFailed  PaymentOrderStatus = "failed"
)

// PaymentOrder persists a gateway order and its verification outcome
type PaymentOrder struct {
	ID             string             `json:"id"`
	UserID         string             `json:"userId"`
	PlanID         string             `json:"planId"`
	GatewayOrderID string             `json:"gatewayOrderId"`
	AmountPaise    int64              `json:"amountPaise"`
	Currency       string             `json:"currency"`
	Status         PaymentOrderStatus `json:"status"`
	PaymentID      string             `json:"paymentId,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// CreateOrderRequest starts a checkout for a plan
type CreateOrderRequest struct {
	PlanID string `json:"planId" binding:"required,oneof=basic premium enterprise"`
}

// CreateOrderResponse carries what the checkout widget needs
type CreateOrderResponse struct {
	OrderID     string `json:"orderId"`
	AmountPaise int64  `json:"amountPaise"`
	Currency    string `json:"currency"`
	KeyID       string `json:"keyId"`
	PlanID      string `json:"planId"`
}

// VerifyPaymentRequest carries the gateway's post-checkout callback fields
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}
