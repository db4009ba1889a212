package domain

import (
	"time"
)

// Payment records a checkout session handed to a user. The session id is an
// opaque handle from the payment provider; no further lifecycle (completion,
// refund, webhook) is tracked.
type Payment struct {
	ID        string `json:"_id" gorm:"primaryKey;size:36"`
	UserID    string `json:"user_id" gorm:"size:36;index"`
	Amount    int64  `json:"amount"`
	SessionID string `json:"session_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentService creates checkout sessions with the external payment
// provider and records them.
type PaymentService interface {
	CreateCheckoutSession(userID, email string) (string, error)
	ByUser(userID string) ([]Payment, error)
}
