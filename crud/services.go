package crud

import (
	"gorm.io/gorm"

	"postpulse/payment"
)

// A ServicesConfig is any function that takes in a pointer to a Services
// object and returns an error. It wraps the constructor of a crud service so
// that main.go can assemble the services it needs with functional options.
type ServicesConfig func(*Services) error

// Services is a container object holding pointers to all the crud services.
// The crud services all share the database connection provided by Services.
type Services struct {
	db      *gorm.DB
	User    *UserService
	Post    *PostService
	Comment *CommentService
	Payment *PaymentService
}

// NewServices returns a new Services object, containing any crud services
// it's told to create by one of the passed in ServicesConfig functions.
// It shares the passed in database connection with any crud service it creates.
func NewServices(db *gorm.DB, cfgs ...ServicesConfig) (*Services, error) {
	s := Services{
		db: db,
	}
	for _, cfg := range cfgs {
		if err := cfg(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// WithUser wraps the constructor of UserService, NewUserService.
func WithUser() ServicesConfig {
	return func(s *Services) error {
		s.User = NewUserService(s.db)
		return nil
	}
}

// WithPost wraps the constructor of PostService, NewPostService.
func WithPost() ServicesConfig {
	return func(s *Services) error {
		s.Post = NewPostService(s.db)
		return nil
	}
}

// WithComment wraps the constructor of CommentService, NewCommentService.
func WithComment() ServicesConfig {
	return func(s *Services) error {
		s.Comment = NewCommentService(s.db)
		return nil
	}
}

// WithPayment wraps the constructor of PaymentService, NewPaymentService.
func WithPayment(checkout payment.CheckoutClient) ServicesConfig {
	return func(s *Services) error {
		s.Payment = NewPaymentService(s.db, checkout)
		return nil
	}
}
