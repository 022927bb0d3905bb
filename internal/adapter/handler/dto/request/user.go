package request

type CreateUserRequest struct {
	FullName string   `json:"full_name" binding:"required,max=255"`
	Email    string   `json:"email" binding:"required,email,max=255"`
	Login    string   `json:"login" binding:"required,max=100"`
	Password string   `json:"password" binding:"required,min=8,max=72"`
	Roles    []string `json:"roles" binding:"required,min=1,dive,role"`
}

type UpdateUserRequest struct {
	FullName string   `json:"full_name" binding:"required,max=255"`
	Email    string   `json:"email" binding:"required,email,max=255"`
	Login    string   `json:"login" binding:"required,max=100"`
	Roles    []string `json:"roles" binding:"required,min=1,dive,role"`
	Version  *int64   `json:"version" binding:"omitempty,min=0"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type ListUsersRequest struct {
	Name string `form:"name" binding:"max=255"`
	Role string `form:"role" binding:"omitempty,role"`
	Page int    `form:"page,default=0" binding:"min=0"`
	Size int    `form:"size,default=20" binding:"min=1,max=100"`
}
