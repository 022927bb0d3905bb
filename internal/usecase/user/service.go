package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/connectfood/core/internal/adapter/repository"
	"github.com/connectfood/core/internal/domain"
	"github.com/connectfood/core/internal/domain/entity"
	"github.com/connectfood/core/internal/infrastructure/auth"
	"github.com/connectfood/core/internal/infrastructure/metrics"
	"github.com/connectfood/core/internal/pkg/pagination"
)

// Service enforces the user identity rules: unique email, hashed
// credentials and version-checked writes. Every error it returns is either
// a domain sentinel, a *domain.ValidationError, or an unexpected failure.
type Service struct {
	userRepo       repository.UserRepository
	passwordHasher *auth.PasswordHasher
}

func NewService(userRepo repository.UserRepository, passwordHasher *auth.PasswordHasher) *Service {
	return &Service{
		userRepo:       userRepo,
		passwordHasher: passwordHasher,
	}
}

type CreateInput struct {
	FullName string
	Email    string
	Login    string
	Password string
	Roles    []string
}

func (s *Service) Create(ctx context.Context, input CreateInput) (u *entity.User, err error) {
	defer observe("create", &err)

	if input.Password == "" {
		return nil, domain.NewValidationError(domain.FieldError{Field: "password", Message: "is required"})
	}

	roles, err := parseRoles(input.Roles)
	if err != nil {
		return nil, err
	}

	if err := s.ensureEmailAvailable(ctx, input.Email); err != nil {
		return nil, err
	}

	hash, err := s.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := entity.NewUser(input.FullName, input.Email, input.Login, hash, roles)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

// UpdateInput replaces the profile fields of a user. When Version is set it
// must equal the stored version, otherwise the update fails with
// domain.ErrVersionConflict without writing.
type UpdateInput struct {
	FullName string
	Email    string
	Login    string
	Roles    []string
	Version  *int64
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (u *entity.User, err error) {
	defer observe("update", &err)

	user, err := s.userRepo.FindByUUID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Version != nil && *input.Version != user.Version {
		return nil, domain.ErrVersionConflict
	}

	roles, err := parseRoles(input.Roles)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(input.Email, user.Email) {
		if err := s.ensureEmailAvailable(ctx, input.Email); err != nil {
			return nil, err
		}
	}

	if err := user.Update(input.FullName, input.Email, input.Login, roles); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return user, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (u *entity.User, err error) {
	defer observe("get", &err)

	return s.userRepo.FindByUUID(ctx, id)
}

type ListInput struct {
	Name string
	Role string
	Page int
	Size int
}

func (s *Service) List(ctx context.Context, input ListInput) (users []entity.User, info *pagination.Info, err error) {
	defer observe("list", &err)

	params, err := pagination.NewParams(input.Page, input.Size)
	if err != nil {
		return nil, nil, err
	}

	filter := repository.UserFilter{Name: strings.TrimSpace(input.Name)}
	if input.Role != "" {
		role, err := entity.ParseRole(input.Role)
		if err != nil {
			return nil, nil, domain.NewValidationError(domain.FieldError{Field: "role", Message: "unknown role"})
		}
		filter.Role = role
	}

	users, info, err = s.userRepo.FindAll(ctx, filter, params)
	if err != nil {
		return nil, nil, fmt.Errorf("listing users: %w", err)
	}

	return users, info, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer observe("delete", &err)

	return s.userRepo.DeleteByUUID(ctx, id)
}

// ChangePassword re-hashes and stores a new password. Email is not
// re-validated.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, newPassword string) (err error) {
	defer observe("change_password", &err)

	if newPassword == "" {
		return domain.NewValidationError(domain.FieldError{Field: "password", Message: "is required"})
	}

	user, err := s.userRepo.FindByUUID(ctx, id)
	if err != nil {
		return err
	}

	hash, err := s.passwordHasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	user.SetPasswordHash(hash)

	if err := s.userRepo.UpdatePassword(ctx, user); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	return nil
}

func (s *Service) ensureEmailAvailable(ctx context.Context, email string) error {
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return domain.ErrEmailAlreadyExists
	}
	return nil
}

func parseRoles(names []string) (entity.RoleSet, error) {
	roles, err := entity.NewRoleSet(names...)
	if err != nil {
		return entity.RoleSet{}, domain.NewValidationError(domain.FieldError{Field: "roles", Message: err.Error()})
	}
	return roles, nil
}

func observe(operation string, err *error) {
	metrics.UserOperationsTotal.WithLabelValues(operation, metrics.Result(*err)).Inc()
}
