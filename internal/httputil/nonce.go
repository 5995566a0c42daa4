package httputil

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

type contextKey string

const nonceKey contextKey = "csp-nonce"

const nonceBytes = 16

var randRead = rand.Read

// GenerateNonce returns a fresh base64url CSP nonce. Pages must not be
// served without one, so an RNG failure is returned to the caller.
func GenerateNonce() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := randRead(b); err != nil {
		return "", fmt.Errorf("generate csp nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func ContextWithNonce(ctx context.Context, nonce string) context.Context {
	return context.WithValue(ctx, nonceKey, nonce)
}

// NonceFromContext returns the request's nonce, or "" outside the security
// middleware.
func NonceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(nonceKey).(string); ok {
		return v
	}
	return ""
}
