package payment

import (
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
)

// Session is the result of creating a hosted checkout session: the opaque
// provider handle and the amount it was created for.
type Session struct {
	ID     string
	Amount int64
}

// CheckoutClient creates hosted checkout sessions with the external payment
// provider.
type CheckoutClient interface {
	CreateSession(email string) (*Session, error)
}

// StripeClient creates Stripe Checkout sessions for a single fixed-price
// line item.
type StripeClient struct {
	successURL string
	cancelURL  string
	amount     int64
}

// NewStripeClient configures the global Stripe key and returns a client.
// amount is in the smallest currency unit (cents).
func NewStripeClient(secretKey, successURL, cancelURL string, amount int64) *StripeClient {
	stripe.Key = secretKey
	return &StripeClient{
		successURL: successURL,
		cancelURL:  cancelURL,
		amount:     amount,
	}
}

var _ CheckoutClient = &StripeClient{}

// CreateSession creates a payment-mode checkout session for the given
// customer email and returns its id.
func (sc *StripeClient) CreateSession(email string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("PostPulse premium"),
					},
					UnitAmount: stripe.Int64(sc.amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: stripe.String(email),
		SuccessURL:    stripe.String(sc.successURL),
		CancelURL:     stripe.String(sc.cancelURL),
	}

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("err creating stripe checkout session: %w", err)
	}
	return &Session{
		ID:     s.ID,
		Amount: sc.amount,
	}, nil
}
