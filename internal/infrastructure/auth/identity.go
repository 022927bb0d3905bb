package auth

import (
	"context"
	"fmt"

	"github.com/connectfood/core/internal/adapter/repository"
	"github.com/connectfood/core/internal/domain"
	"github.com/connectfood/core/internal/domain/entity"
)

// IdentityResolver turns a token subject into a Principal by loading the
// current user record.
type IdentityResolver struct {
	userRepo repository.UserRepository
}

func NewIdentityResolver(userRepo repository.UserRepository) *IdentityResolver {
	return &IdentityResolver{userRepo: userRepo}
}

// Resolve matches subject against both login and email. It returns
// domain.ErrUserNotFound when neither matches and domain.ErrTokenInvalid for
// an empty subject, which is what JWTService.Subject yields for a bad token.
func (r *IdentityResolver) Resolve(ctx context.Context, subject string) (*entity.Principal, error) {
	if subject == "" {
		return nil, domain.ErrTokenInvalid
	}
	user, err := r.userRepo.FindByLoginOrEmail(ctx, subject, subject)
	if err != nil {
		return nil, fmt.Errorf("resolving subject: %w", err)
	}
	return entity.NewPrincipal(user), nil
}
