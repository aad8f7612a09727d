package models

import "time"

// Donation amounts accepted by the checkout flow, in XOF.
var AllowedDonationAmounts = []int{500, 1000, 2000, 5000}

// PaymentRequest for creating a donation checkout.
type PaymentRequest struct {
	Amount int `json:"amount"`
}

// PaymentResponse returned to the client after a checkout is created.
type PaymentResponse struct {
	PaymentURL    string `json:"paymentUrl"`
	TransactionID string `json:"transactionId"`
}

// Transaction tracks a donation through the external payment provider.
type Transaction struct {
	ID        string    `json:"id"`
	Amount    int       `json:"amount"`
	Status    string    `json:"status"` // "pending", "completed", "failed"
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WebhookEvent is the payload the payment provider posts back to us.
// The raw body is authenticated with an HMAC signature before parsing.
type WebhookEvent struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Reference     string `json:"reference,omitempty"`
}
