// Package utils provides general-purpose helpers shared by the client and the
// record server: context keys, HMAC hashing, HTTP response writing, HTTP
// client construction, JWT handling and id generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys so they never collide with
// keys defined by other packages.
type contextKey string

// String implements fmt.Stringer.
func (c contextKey) String() string {
	return string(c)
}

// AccountIDCtxKey stores the authenticated account id in a request context.
var AccountIDCtxKey = contextKey("accountID")

// WithAccountID returns a copy of ctx carrying accountID.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, AccountIDCtxKey, accountID)
}

// GetAccountIDFromContext returns the account id stored by the auth
// middleware. ok is false when the value is missing, empty or of another type.
func GetAccountIDFromContext(ctx context.Context) (string, bool) {
	accountID, ok := ctx.Value(AccountIDCtxKey).(string)
	if !ok || accountID == "" {
		return "", false
	}
	return accountID, true
}
