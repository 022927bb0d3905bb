package entity

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// AuthorityPrefix is prepended to a role name to form its authority.
const AuthorityPrefix = "ROLE_"

const (
	AuthorityCustomer = AuthorityPrefix + string(RoleCustomer)
	AuthorityOwner    = AuthorityPrefix + string(RoleOwner)
	AuthorityAdmin    = AuthorityPrefix + string(RoleAdmin)
)

var authorityByRole = map[Role]string{
	RoleCustomer: AuthorityCustomer,
	RoleOwner:    AuthorityOwner,
	RoleAdmin:    AuthorityAdmin,
}

// AuthorityFor maps a role to its authority string.
func AuthorityFor(r Role) string {
	if a, ok := authorityByRole[r]; ok {
		return a
	}
	return AuthorityPrefix + string(r)
}

// Principal is the identity established for a single request. It is derived
// from the current User on every authentication and never persisted.
type Principal struct {
	UserUUID        string
	Username        string
	PasswordHash    string
	Authorities     mapset.Set[string]
	AccountLocked   bool
	AccountDisabled bool
}

// NewPrincipal derives a principal from a user. Account lock and disable
// flags are not backed by storage yet and are always false.
func NewPrincipal(u *User) *Principal {
	authorities := mapset.NewThreadUnsafeSet[string]()
	for _, r := range u.Roles.Slice() {
		authorities.Add(AuthorityFor(r))
	}
	return &Principal{
		UserUUID:        u.UUID.String(),
		Username:        u.Login,
		PasswordHash:    u.PasswordHash,
		Authorities:     authorities,
		AccountLocked:   false,
		AccountDisabled: false,
	}
}

func (p *Principal) HasAuthority(authority string) bool {
	return p != nil && p.Authorities != nil && p.Authorities.Contains(authority)
}

// HasAnyAuthority reports whether the principal holds at least one of the
// given authorities.
func (p *Principal) HasAnyAuthority(authorities ...string) bool {
	for _, a := range authorities {
		if p.HasAuthority(a) {
			return true
		}
	}
	return false
}

// Usable reports whether the account may act on protected routes.
func (p *Principal) Usable() bool {
	return p != nil && !p.AccountLocked && !p.AccountDisabled
}
