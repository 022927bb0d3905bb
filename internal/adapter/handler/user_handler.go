package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/connectfood/core/internal/adapter/handler/dto/request"
	"github.com/connectfood/core/internal/adapter/handler/dto/response"
	"github.com/connectfood/core/internal/domain"
	"github.com/connectfood/core/internal/domain/entity"
	"github.com/connectfood/core/internal/pkg/apperror"
	"github.com/connectfood/core/internal/pkg/httputil"
	"github.com/connectfood/core/internal/usecase/user"
)

type UserHandler struct {
	userSvc UserService
}

func NewUserHandler(userSvc UserService) *UserHandler {
	registerValidators()
	return &UserHandler{userSvc: userSvc}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req request.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.ValidationError(c, bindingErrors(err))
		return
	}
	if !canGrant(c, req.Roles) {
		return
	}

	u, err := h.userSvc.Create(c.Request.Context(), user.CreateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Login:    req.Login,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/users/"+u.UUID.String())
	httputil.Created(c, response.UserFromEntity(u))
}

func (h *UserHandler) List(c *gin.Context) {
	var req request.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.ValidationError(c, bindingErrors(err))
		return
	}

	users, pageInfo, err := h.userSvc.List(c.Request.Context(), user.ListInput{
		Name: req.Name,
		Role: req.Role,
		Page: req.Page,
		Size: req.Size,
	})
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.OK(c, response.UsersListResponse{
		Users:      response.UsersFromEntities(users),
		Pagination: response.PaginationFromInfo(pageInfo),
	})
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	u, err := h.userSvc.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.OK(c, response.UserFromEntity(u))
}

func (h *UserHandler) Me(c *gin.Context) {
	principal, ok := httputil.GetPrincipal(c)
	if !ok {
		httputil.HandleError(c, domain.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(principal.UserUUID)
	if err != nil {
		httputil.InternalError(c)
		return
	}

	u, err := h.userSvc.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.OK(c, response.UserFromEntity(u))
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := userID(c)
	if !ok || !canModify(c, id) {
		return
	}

	var req request.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.ValidationError(c, bindingErrors(err))
		return
	}
	if !canGrant(c, req.Roles) {
		return
	}

	u, err := h.userSvc.Update(c.Request.Context(), id, user.UpdateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Login:    req.Login,
		Roles:    req.Roles,
		Version:  req.Version,
	})
	if err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.OK(c, response.UserFromEntity(u))
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := userID(c)
	if !ok || !canModify(c, id) {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), id); err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.NoContent(c)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := userID(c)
	if !ok || !canModify(c, id) {
		return
	}

	var req request.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.ValidationError(c, bindingErrors(err))
		return
	}

	if err := h.userSvc.ChangePassword(c.Request.Context(), id, req.Password); err != nil {
		httputil.HandleError(c, err)
		return
	}

	httputil.NoContent(c)
}

func userID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httputil.ErrorWithCode(c, http.StatusBadRequest, "INVALID_ID", "invalid user id")
		return uuid.Nil, false
	}
	return id, true
}

// canModify allows a principal to change its own record, and admins to
// change any record.
func canModify(c *gin.Context, id uuid.UUID) bool {
	principal, ok := httputil.GetPrincipal(c)
	if !ok {
		httputil.HandleError(c, domain.ErrUnauthorized)
		return false
	}
	if principal.UserUUID == id.String() || principal.HasAuthority(entity.AuthorityAdmin) {
		return true
	}
	httputil.HandleError(c, domain.ErrForbidden)
	return false
}

// canGrant rejects requests assigning the ADMIN role unless the caller
// already holds it.
func canGrant(c *gin.Context, roles []string) bool {
	for _, name := range roles {
		role, err := entity.ParseRole(name)
		if err != nil || role != entity.RoleAdmin {
			continue
		}
		principal, _ := httputil.GetPrincipal(c)
		if principal.HasAuthority(entity.AuthorityAdmin) {
			return true
		}
		httputil.HandleError(c, apperror.Forbidden("only administrators may grant the ADMIN role"))
		return false
	}
	return true
}
