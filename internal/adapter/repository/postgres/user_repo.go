package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/connectfood/core/internal/adapter/repository"
	"github.com/connectfood/core/internal/domain"
	"github.com/connectfood/core/internal/domain/entity"
	"github.com/connectfood/core/internal/pkg/pagination"
)

const userColumns = `id, uuid, full_name, email, login, password_hash, roles, created_at, updated_at, version`

// likeEscaper makes a name filter match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type UserRepo struct {
	pool PgxPool
}

func NewUserRepo(pool PgxPool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (uuid, full_name, email, login, password_hash, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, version
	`
	err := r.pool.QueryRow(ctx, query,
		user.UUID, user.FullName, user.Email, user.Login, user.PasswordHash,
		user.Roles.Strings(), user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID, &user.Version)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// Update writes the profile fields if the stored version still equals
// user.Version, then advances user.Version.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET full_name = $3, email = $4, login = $5, roles = $6, updated_at = $7, version = version + 1
		WHERE uuid = $1 AND version = $2
		RETURNING version
	`
	var version int64
	err := r.pool.QueryRow(ctx, query,
		user.UUID, user.Version, user.FullName, user.Email, user.Login,
		user.Roles.Strings(), user.UpdatedAt,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missOrConflict(ctx, user.UUID)
		}
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("updating user: %w", err)
	}
	user.Version = version
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET password_hash = $3, updated_at = $4, version = version + 1
		WHERE uuid = $1 AND version = $2
		RETURNING version
	`
	var version int64
	err := r.pool.QueryRow(ctx, query, user.UUID, user.Version, user.PasswordHash, user.UpdatedAt).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missOrConflict(ctx, user.UUID)
		}
		return fmt.Errorf("updating password: %w", err)
	}
	user.Version = version
	return nil
}

func (r *UserRepo) FindByUUID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uuid = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

// FindByLoginOrEmail matches case-insensitively. A login match wins over an
// email match when the two identify different users.
func (r *UserRepo) FindByLoginOrEmail(ctx context.Context, login, email string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE lower(login) = lower($1) OR lower(email) = lower($2)
		ORDER BY (lower(login) = lower($1)) DESC
		LIMIT 1
	`
	return r.scanUser(r.pool.QueryRow(ctx, query, login, email))
}

func (r *UserRepo) FindAll(ctx context.Context, filter repository.UserFilter, page pagination.Params) ([]entity.User, *pagination.Info, error) {
	var conditions []string
	var args []any
	argNum := 1

	if filter.Name != "" {
		conditions = append(conditions, fmt.Sprintf(`full_name ILIKE '%%' || $%d || '%%' ESCAPE '\'`, argNum))
		args = append(args, likeEscaper.Replace(filter.Name))
		argNum++
	}

	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(roles)", argNum))
		args = append(args, string(filter.Role))
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, nil, fmt.Errorf("counting users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		%s
		ORDER BY created_at, id
		LIMIT $%d OFFSET $%d
	`, userColumns, whereClause, argNum, argNum+1)
	args = append(args, page.Limit(), page.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	users := make([]entity.User, 0, page.Limit())
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating users: %w", err)
	}

	return users, pagination.NewInfo(page, total), nil
}

func (r *UserRepo) DeleteByUUID(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE uuid = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`
	var exists bool
	err := r.pool.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking email existence: %w", err)
	}
	return exists, nil
}

// missOrConflict explains why a version-checked write matched no row.
func (r *UserRepo) missOrConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE uuid = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking user existence: %w", err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	return domain.ErrVersionConflict
}

func (r *UserRepo) scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	var roles []string

	err := row.Scan(
		&user.ID, &user.UUID, &user.FullName, &user.Email, &user.Login, &user.PasswordHash,
		&roles, &user.CreatedAt, &user.UpdatedAt, &user.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}

	user.Roles, err = entity.NewRoleSet(roles...)
	if err != nil {
		return nil, fmt.Errorf("decoding roles of user %s: %w", user.UUID, err)
	}

	return &user, nil
}

func mapUniqueViolation(err error) error {
	switch uniqueConstraint(err) {
	case "users_email_key":
		return domain.ErrEmailAlreadyExists
	case "users_login_key":
		return domain.ErrLoginAlreadyExists
	default:
		return nil
	}
}
