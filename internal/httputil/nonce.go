package httputil

import (
	"context"
	"crypto/rand"
)

type nonceKey struct{}

// GenerateNonce returns a fresh value for a CSP script-src/style-src nonce.
func GenerateNonce() string {
	return rand.Text()
}

func ContextWithNonce(ctx context.Context, nonce string) context.Context {
	return context.WithValue(ctx, nonceKey{}, nonce)
}

func NonceFromContext(ctx context.Context) string {
	nonce, _ := ctx.Value(nonceKey{}).(string)
	return nonce
}
