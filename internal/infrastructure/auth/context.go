package auth

import (
	"context"

	"github.com/connectfood/core/internal/domain/entity"
)

type ctxKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *entity.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFromContext returns the principal installed for this request.
func PrincipalFromContext(ctx context.Context) (*entity.Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(*entity.Principal)
	return p, ok && p != nil
}
