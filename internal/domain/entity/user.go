package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/connectfood/core/internal/domain"
)

// User is the persisted identity record. ID is assigned by storage and is
// never exposed; UUID is the public address and never changes.
type User struct {
	ID           int64
	UUID         uuid.UUID
	FullName     string
	Email        string
	Login        string
	PasswordHash string
	Roles        RoleSet
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
}

// NewUser builds a user ready to be inserted. passwordHash must already be
// the output of the password hasher.
func NewUser(fullName, email, login, passwordHash string, roles RoleSet) (*User, error) {
	if roles.IsEmpty() {
		return nil, domain.ErrEmptyRoles
	}
	now := time.Now().UTC()
	return &User{
		UUID:         uuid.New(),
		FullName:     fullName,
		Email:        email,
		Login:        login,
		PasswordHash: passwordHash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Update replaces the mutable profile fields. UUID, password and CreatedAt
// are left untouched.
func (u *User) Update(fullName, email, login string, roles RoleSet) error {
	if roles.IsEmpty() {
		return domain.ErrEmptyRoles
	}
	u.FullName = fullName
	u.Email = email
	u.Login = login
	u.Roles = roles
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (u *User) SetPasswordHash(hash string) {
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
}
