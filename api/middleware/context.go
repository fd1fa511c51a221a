package middleware

import (
	"context"

	"github.com/arjunmehta/desikart-backend/internal/cart"
)

type contextKey string

const ctxCartOwner contextKey = "cart_owner"

// OwnerFromContext returns the cart owner resolved by CartSession. The zero
// Owner is returned for requests that never passed through the middleware.
func OwnerFromContext(ctx context.Context) cart.Owner {
	if ctx == nil {
		return cart.Owner{}
	}
	if v, ok := ctx.Value(ctxCartOwner).(cart.Owner); ok {
		return v
	}
	return cart.Owner{}
}

// WithOwner injects the cart owner into the context for downstream handlers.
func WithOwner(ctx context.Context, owner cart.Owner) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartOwner, owner)
}
