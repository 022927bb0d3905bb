package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/connectfood/core/internal/domain/entity"
	"github.com/connectfood/core/internal/pkg/pagination"
)

// UserResponse is the public view of a user. The surrogate id and the
// password hash are never exposed.
type UserResponse struct {
	UUID      uuid.UUID `json:"uuid"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Login     string    `json:"login"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

type PaginationResponse struct {
	Page       int  `json:"page"`
	Size       int  `json:"size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

type UsersListResponse struct {
	Users      []UserResponse     `json:"users"`
	Pagination PaginationResponse `json:"pagination"`
}

func UserFromEntity(u *entity.User) UserResponse {
	return UserResponse{
		UUID:      u.UUID,
		FullName:  u.FullName,
		Email:     u.Email,
		Login:     u.Login,
		Roles:     u.Roles.Strings(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Version:   u.Version,
	}
}

func UsersFromEntities(users []entity.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, UserFromEntity(&users[i]))
	}
	return result
}

func PaginationFromInfo(info *pagination.Info) PaginationResponse {
	if info == nil {
		return PaginationResponse{}
	}
	return PaginationResponse{
		Page:       info.Page,
		Size:       info.Size,
		TotalItems: info.TotalItems,
		TotalPages: info.TotalPages,
		HasNext:    info.HasNext,
		HasPrev:    info.HasPrev,
	}
}
