package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"postpulse/errs"
)

// TokenIssuer mints and verifies the self-issued session tokens used by the
// password login and registration paths. Tokens are HMAC-signed JWTs that
// embed the caller's public profile fields under a "data" claim and expire
// after the configured duration.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

// sessionClaims is the signed token payload.
type sessionClaims struct {
	Data Caller `json:"data"`
	jwt.RegisteredClaims
}

// NewTokenIssuer returns a TokenIssuer signing with the given shared secret.
func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Sign produces a signed session token for the given caller.
func (ti *TokenIssuer) Sign(caller *Caller) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Data: *caller,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", errs.Errorf(errs.EINTERNAL, "Error occurred while signing the token")
	}
	return signed, nil
}

// Verify validates a session token's signature and expiry and returns the
// embedded caller identity. Any failure yields an authentication error.
func (ti *TokenIssuer) Verify(tokenString string) (*Caller, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.Errorf(errs.EUNAUTHENTICATED, "Invalid Token")
		}
		return ti.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errs.Errorf(errs.EUNAUTHENTICATED, "Invalid Token")
	}
	return &claims.Data, nil
}
