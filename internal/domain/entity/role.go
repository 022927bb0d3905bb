package entity

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/connectfood/core/internal/domain"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleOwner    Role = "OWNER"
	RoleAdmin    Role = "ADMIN"
)

var knownRoles = mapset.NewSet(RoleCustomer, RoleOwner, RoleAdmin)

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownRole, s)
	}
	return r, nil
}

func (r Role) IsValid() bool {
	return knownRoles.Contains(r)
}

// RoleSet is the non-empty set of roles granted to a user.
type RoleSet struct {
	set mapset.Set[Role]
}

// NewRoleSet parses names into a RoleSet. Duplicates collapse; an empty
// input or an unknown name is an error.
func NewRoleSet(names ...string) (RoleSet, error) {
	if len(names) == 0 {
		return RoleSet{}, domain.ErrEmptyRoles
	}
	set := mapset.NewThreadUnsafeSet[Role]()
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil {
			return RoleSet{}, err
		}
		set.Add(r)
	}
	return RoleSet{set: set}, nil
}

// MustRoleSet is NewRoleSet for literals known to be valid.
func MustRoleSet(roles ...Role) RoleSet {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	rs, err := NewRoleSet(names...)
	if err != nil {
		panic(err)
	}
	return rs
}

func (s RoleSet) Contains(r Role) bool {
	return s.set != nil && s.set.Contains(r)
}

func (s RoleSet) Len() int {
	if s.set == nil {
		return 0
	}
	return s.set.Cardinality()
}

func (s RoleSet) IsEmpty() bool {
	return s.Len() == 0
}

// Slice returns the roles in a stable, sorted order.
func (s RoleSet) Slice() []Role {
	if s.set == nil {
		return nil
	}
	roles := s.set.ToSlice()
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// Strings returns the sorted role names, as stored in the database.
func (s RoleSet) Strings() []string {
	roles := s.Slice()
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

func (s RoleSet) Equal(other RoleSet) bool {
	if s.set == nil || other.set == nil {
		return s.Len() == other.Len()
	}
	return s.set.Equal(other.set)
}
