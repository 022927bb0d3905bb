package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/connectfood/core/internal/adapter/handler"
	"github.com/connectfood/core/internal/domain"
	"github.com/connectfood/core/internal/domain/entity"
	"github.com/connectfood/core/internal/infrastructure/auth"
	"github.com/connectfood/core/internal/mocks"
	"github.com/connectfood/core/internal/pkg/pagination"
	"github.com/connectfood/core/internal/usecase/user"
)

func setupRouter(principal *entity.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if principal != nil {
		router.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))
			c.Next()
		})
	}
	return router
}

func sampleUser(roles ...entity.Role) *entity.User {
	now := time.Now().UTC()
	return &entity.User{
		ID:           7,
		UUID:         uuid.New(),
		FullName:     "Ana Lima",
		Email:        "a@x.com",
		Login:        "a",
		PasswordHash: "$2a$04$secret",
		Roles:        entity.MustRoleSet(roles...),
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      0,
	}
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestUserHandler_Create(t *testing.T) {
	t.Run("creates user successfully", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(nil)
		router.POST("/users", h.Create)

		created := sampleUser(entity.RoleCustomer)
		userSvc.EXPECT().Create(gomock.Any(), user.CreateInput{
			FullName: "Ana Lima",
			Email:    "a@x.com",
			Login:    "a",
			Password: "password1",
			Roles:    []string{"CUSTOMER"},
		}).Return(created, nil)

		body := `{"full_name":"Ana Lima","email":"a@x.com","login":"a","password":"password1","roles":["CUSTOMER"]}`
		w := do(router, http.MethodPost, "/users", body)

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decode(t, w)
		assert.Equal(t, created.UUID.String(), resp["uuid"])
		assert.Equal(t, []any{"CUSTOMER"}, resp["roles"])
		assert.NotContains(t, resp, "password_hash")
		assert.NotContains(t, resp, "id")
		assert.NotContains(t, w.Body.String(), "secret")
	})

	t.Run("returns conflict for existing email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(nil)
		router.POST("/users", h.Create)

		userSvc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, domain.ErrEmailAlreadyExists)

		body := `{"full_name":"Ana Lima","email":"a@x.com","login":"a","password":"password1","roles":["CUSTOMER"]}`
		w := do(router, http.MethodPost, "/users", body)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "EMAIL_EXISTS", decode(t, w)["code"])
	})

	t.Run("rejects unknown role with field detail", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(nil)
		router.POST("/users", h.Create)

		body := `{"full_name":"Ana Lima","email":"a@x.com","login":"a","password":"password1","roles":["GUEST"]}`
		w := do(router, http.MethodPost, "/users", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "VALIDATION_ERROR", resp["code"])
		details := resp["details"].([]any)
		require.Len(t, details, 1)
		assert.Equal(t, "roles[0]", details[0].(map[string]any)["field"])
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(nil)
		router.POST("/users", h.Create)

		w := do(router, http.MethodPost, "/users", `{"email":"not-an-email"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		details := decode(t, w)["details"].([]any)
		assert.GreaterOrEqual(t, len(details), 4)
	})

	t.Run("forbids anonymous admin sign-up", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(nil)
		router.POST("/users", h.Create)

		body := `{"full_name":"Eve","email":"eve@x.com","login":"eve","password":"password1","roles":["admin"]}`
		w := do(router, http.MethodPost, "/users", body)

		assert.Equal(t, http.StatusForbidden, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "FORBIDDEN", resp["code"])
		assert.Equal(t, "only administrators may grant the ADMIN role", resp["error"])
	})

	t.Run("admin may create admins", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(entity.NewPrincipal(sampleUser(entity.RoleAdmin)))
		router.POST("/users", h.Create)

		userSvc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sampleUser(entity.RoleAdmin), nil)

		body := `{"full_name":"Root","email":"root@x.com","login":"root","password":"password1","roles":["ADMIN"]}`
		w := do(router, http.MethodPost, "/users", body)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(nil)
		router.POST("/users", h.Create)

		w := do(router, http.MethodPost, "/users", `{"email":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_Get(t *testing.T) {
	t.Run("returns user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(nil)
		router.GET("/users/:uuid", h.Get)

		u := sampleUser(entity.RoleOwner)
		userSvc.EXPECT().Get(gomock.Any(), u.UUID).Return(u, nil)

		w := do(router, http.MethodGet, "/users/"+u.UUID.String(), "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "a@x.com", decode(t, w)["email"])
	})

	t.Run("returns not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(nil)
		router.GET("/users/:uuid", h.Get)

		id := uuid.New()
		userSvc.EXPECT().Get(gomock.Any(), id).Return(nil, domain.ErrUserNotFound)

		w := do(router, http.MethodGet, "/users/"+id.String(), "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", decode(t, w)["code"])
	})

	t.Run("rejects invalid uuid", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(nil)
		router.GET("/users/:uuid", h.Get)

		w := do(router, http.MethodGet, "/users/not-a-uuid", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_ID", decode(t, w)["code"])
	})
}

func TestUserHandler_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	userSvc := mocks.NewMockUserService(ctrl)
	h := handler.NewUserHandler(userSvc)

	u := sampleUser(entity.RoleCustomer)
	router := setupRouter(entity.NewPrincipal(u))
	router.GET("/users/me", h.Me)

	userSvc.EXPECT().Get(gomock.Any(), u.UUID).Return(u, nil)

	w := do(router, http.MethodGet, "/users/me", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a", decode(t, w)["login"])
}

func TestUserHandler_List(t *testing.T) {
	t.Run("applies defaults and filters", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(nil)
		router.GET("/users", h.List)

		users := []entity.User{*sampleUser(entity.RoleOwner)}
		params, _ := pagination.NewParams(0, 20)
		userSvc.EXPECT().List(gomock.Any(), user.ListInput{Name: "ana", Role: "OWNER", Page: 0, Size: 20}).
			Return(users, pagination.NewInfo(params, 1), nil)

		w := do(router, http.MethodGet, "/users?name=ana&role=OWNER", "")

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Len(t, resp["users"], 1)
		assert.Equal(t, float64(1), resp["pagination"].(map[string]any)["total_items"])
	})

	t.Run("rejects negative page", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(nil)
		router.GET("/users", h.List)

		w := do(router, http.MethodGet, "/users?page=-1", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_Update(t *testing.T) {
	body := `{"full_name":"Ana Souza","email":"a@x.com","login":"a","roles":["CUSTOMER"],"version":0}`

	t.Run("owner updates own record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		u := sampleUser(entity.RoleCustomer)
		router := setupRouter(entity.NewPrincipal(u))
		router.PUT("/users/:uuid", h.Update)

		version := int64(0)
		updated := *u
		updated.FullName = "Ana Souza"
		updated.Version = 1
		userSvc.EXPECT().Update(gomock.Any(), u.UUID, user.UpdateInput{
			FullName: "Ana Souza",
			Email:    "a@x.com",
			Login:    "a",
			Roles:    []string{"CUSTOMER"},
			Version:  &version,
		}).Return(&updated, nil)

		w := do(router, http.MethodPut, "/users/"+u.UUID.String(), body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode(t, w)["version"])
	})

	t.Run("maps version conflict", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		u := sampleUser(entity.RoleCustomer)
		router := setupRouter(entity.NewPrincipal(u))
		router.PUT("/users/:uuid", h.Update)

		userSvc.EXPECT().Update(gomock.Any(), u.UUID, gomock.Any()).Return(nil, domain.ErrVersionConflict)

		w := do(router, http.MethodPut, "/users/"+u.UUID.String(), body)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "VERSION_CONFLICT", decode(t, w)["code"])
	})

	t.Run("forbids other users", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(entity.NewPrincipal(sampleUser(entity.RoleCustomer)))
		router.PUT("/users/:uuid", h.Update)

		w := do(router, http.MethodPut, "/users/"+uuid.NewString(), body)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", decode(t, w)["code"])
	})

	t.Run("admin may update anyone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(entity.NewPrincipal(sampleUser(entity.RoleAdmin)))
		router.PUT("/users/:uuid", h.Update)

		target := sampleUser(entity.RoleCustomer)
		userSvc.EXPECT().Update(gomock.Any(), target.UUID, gomock.Any()).Return(target, nil)

		w := do(router, http.MethodPut, "/users/"+target.UUID.String(), body)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("customer cannot promote self", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		u := sampleUser(entity.RoleCustomer)
		router := setupRouter(entity.NewPrincipal(u))
		router.PUT("/users/:uuid", h.Update)

		promote := `{"full_name":"Ana","email":"a@x.com","login":"a","roles":["CUSTOMER","ADMIN"]}`
		w := do(router, http.MethodPut, "/users/"+u.UUID.String(), promote)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("requires principal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(nil)
		router.PUT("/users/:uuid", h.Update)

		w := do(router, http.MethodPut, "/users/"+uuid.NewString(), body)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decode(t, w)["code"])
	})
}

func TestUserHandler_Delete(t *testing.T) {
	t.Run("deletes own record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		u := sampleUser(entity.RoleCustomer)
		router := setupRouter(entity.NewPrincipal(u))
		router.DELETE("/users/:uuid", h.Delete)

		userSvc.EXPECT().Delete(gomock.Any(), u.UUID).Return(nil)

		w := do(router, http.MethodDelete, "/users/"+u.UUID.String(), "")

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("returns not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		router := setupRouter(entity.NewPrincipal(sampleUser(entity.RoleAdmin)))
		router.DELETE("/users/:uuid", h.Delete)

		id := uuid.New()
		userSvc.EXPECT().Delete(gomock.Any(), id).Return(domain.ErrUserNotFound)

		w := do(router, http.MethodDelete, "/users/"+id.String(), "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUserHandler_ChangePassword(t *testing.T) {
	t.Run("changes password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		u := sampleUser(entity.RoleCustomer)
		router := setupRouter(entity.NewPrincipal(u))
		router.PATCH("/users/:uuid/password", h.ChangePassword)

		userSvc.EXPECT().ChangePassword(gomock.Any(), u.UUID, "newPassword1").Return(nil)

		w := do(router, http.MethodPatch, "/users/"+u.UUID.String()+"/password", `{"password":"newPassword1"}`)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("rejects short password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		userSvc := mocks.NewMockUserService(ctrl)
		h := handler.NewUserHandler(userSvc)

		u := sampleUser(entity.RoleCustomer)
		router := setupRouter(entity.NewPrincipal(u))
		router.PATCH("/users/:uuid/password", h.ChangePassword)

		w := do(router, http.MethodPatch, "/users/"+u.UUID.String()+"/password", `{"password":"short"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		details := decode(t, w)["details"].([]any)
		assert.Equal(t, "password", details[0].(map[string]any)["field"])
	})
}
