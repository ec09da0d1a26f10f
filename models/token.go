package models

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Token wraps a JWT with convenience accessors for device authentication.
//
// The "sub" claim carries the account id the device writes for.
type Token struct {
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	// SignedString is the compact JWS form sent in the Authorization header.
	SignedString string `json:"-"`

	// AccountID is a parsed copy of the "sub" claim.
	AccountID string `json:"-"`
}

// GetAccountID returns the account id stored in the subject claim.
func (t *Token) GetAccountID() (string, error) {
	sub, err := t.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error extracting AccountID from token: %w", err)
	}
	if sub == "" {
		return "", fmt.Errorf("error extracting AccountID from token: empty subject")
	}

	return sub, nil
}

// String returns the compact serialised token.
func (t *Token) String() string {
	return t.SignedString
}
