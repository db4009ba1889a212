package auth

import (
	"context"

	"google.golang.org/api/idtoken"

	"postpulse/errs"
)

// IdentityVerifier validates an externally issued credential and returns the
// decoded identity. The returned caller carries no store id; resolving the
// identity to an account is up to the caller.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*Caller, error)
}

// GoogleVerifier verifies Google-issued ID tokens against a configured
// OAuth client id (the token audience).
type GoogleVerifier struct {
	audience string
}

// NewGoogleVerifier returns a verifier for ID tokens minted for the given
// client id.
func NewGoogleVerifier(audience string) *GoogleVerifier {
	return &GoogleVerifier{audience: audience}
}

var _ IdentityVerifier = &GoogleVerifier{}

// Verify validates the ID token's signature, expiry and audience with
// Google's public keys and returns the identity embedded in its claims.
func (gv *GoogleVerifier) Verify(ctx context.Context, credential string) (*Caller, error) {
	payload, err := idtoken.Validate(ctx, credential, gv.audience)
	if err != nil {
		return nil, errs.Errorf(errs.EUNAUTHENTICATED, "Invalid Token")
	}
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if email == "" {
		return nil, errs.Errorf(errs.EUNAUTHENTICATED, "Invalid Token")
	}
	return &Caller{
		Username: name,
		Email:    email,
	}, nil
}
