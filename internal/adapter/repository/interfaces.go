package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectfood/core/internal/domain/entity"
	"github.com/connectfood/core/internal/pkg/pagination"
)

//go:generate mockgen -source=interfaces.go -destination=../../mocks/repository_mocks.go -package=mocks

// UserRepository persists users. Update and UpdatePassword are
// version-checked: they fail with domain.ErrVersionConflict when the stored
// version differs from user.Version, and bump user.Version on success.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, user *entity.User) error
	FindByUUID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByLoginOrEmail(ctx context.Context, login, email string) (*entity.User, error)
	FindAll(ctx context.Context, filter UserFilter, page pagination.Params) ([]entity.User, *pagination.Info, error)
	DeleteByUUID(ctx context.Context, id uuid.UUID) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// UserFilter narrows FindAll. Zero values match everything; Name is a
// case-insensitive substring match on the full name.
type UserFilter struct {
	Name string
	Role entity.Role
}
