package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectfood/core/internal/domain/entity"
	"github.com/connectfood/core/internal/pkg/pagination"
	"github.com/connectfood/core/internal/usecase/user"
)

//go:generate mockgen -source=interfaces.go -destination=../../mocks/handler_mocks.go -package=mocks

type UserService interface {
	Create(ctx context.Context, input user.CreateInput) (*entity.User, error)
	Update(ctx context.Context, id uuid.UUID, input user.UpdateInput) (*entity.User, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.User, error)
	List(ctx context.Context, input user.ListInput) ([]entity.User, *pagination.Info, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) error
}
