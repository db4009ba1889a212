package crud

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"postpulse/domain"
	"postpulse/errs"
	"postpulse/payment"
)

// PaymentService creates hosted checkout sessions with the external payment
// provider and records them. It implements the domain.PaymentService
// interface. The provider itself sits behind payment.CheckoutClient so tests
// can substitute a double.
type PaymentService struct {
	paymentGorm
	checkout payment.CheckoutClient
}

// paymentGorm stores Payment records. It assumes the checkout session has
// already been created with the provider.
type paymentGorm struct {
	db *gorm.DB
}

// NewPaymentService returns an instance of PaymentService.
func NewPaymentService(db *gorm.DB, checkout payment.CheckoutClient) *PaymentService {
	return &PaymentService{
		paymentGorm: paymentGorm{
			db: db,
		},
		checkout: checkout,
	}
}

// Ensure the PaymentService struct properly implements the domain.PaymentService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.PaymentService = &PaymentService{}

// CreateCheckoutSession asks the provider for a single fixed-price checkout
// session, records it, and returns only the opaque session id. The session's
// completion is not tracked.
func (ps *PaymentService) CreateCheckoutSession(userID, email string) (string, error) {
	session, err := ps.checkout.CreateSession(email)
	if err != nil {
		return "", errs.Errorf(errs.EDEPENDENCY, "Error occurred while creating the checkout session")
	}

	record := &domain.Payment{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    session.Amount,
		SessionID: session.ID,
	}
	if err := ps.paymentGorm.Create(record); err != nil {
		return "", err
	}
	return session.ID, nil
}

// Create stores the data from the Payment object in a new database record.
func (pg *paymentGorm) Create(p *domain.Payment) error {
	return pg.db.Create(p).Error
}

// ByUser retrieves all payment records of the given user.
func (pg *paymentGorm) ByUser(userID string) ([]domain.Payment, error) {
	var payments []domain.Payment
	if err := pg.db.Where("user_id = ?", userID).Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
