package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/connectfood/core/internal/adapter/handler"
	pgRepo "github.com/connectfood/core/internal/adapter/repository/postgres"
	"github.com/connectfood/core/internal/domain/entity"
	"github.com/connectfood/core/internal/infrastructure/auth"
	"github.com/connectfood/core/internal/infrastructure/database"
	"github.com/connectfood/core/internal/infrastructure/middleware"
	"github.com/connectfood/core/internal/infrastructure/server"
	"github.com/connectfood/core/internal/usecase/user"
)

const (
	testDBUser     = "testuser"
	testDBPassword = "testpass"
	testDBName     = "testdb"
	testJWTSecret  = "test-secret-key-for-e2e-tests-0123456789"
	apiBasePath    = "/api/v1"
)

type TestApp struct {
	Server     *httptest.Server
	Pool       *pgxpool.Pool
	Container  testcontainers.Container
	BaseURL    string
	JWT        *auth.JWTService
	userRepo   *pgRepo.UserRepo
	hasher     *auth.PasswordHasher
	httpClient *http.Client
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping e2e test in short mode")
	}

	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase(testDBName),
		postgres.WithUsername(testDBUser),
		postgres.WithPassword(testDBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.RunMigrations(ctx, pool))

	userRepo := pgRepo.NewUserRepo(pool)

	jwtSvc := auth.NewJWTService(testJWTSecret, 15*time.Minute, "")
	passwordHasher := auth.NewPasswordHasher(4) // Lower cost for faster tests
	resolver := auth.NewIdentityResolver(userRepo)

	userSvc := user.NewService(userRepo, passwordHasher)
	userHandler := handler.NewUserHandler(userSvc)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, resolver, zap.NewNop())

	logger, _ := zap.NewDevelopment()
	router := server.NewRouter(server.RouterConfig{
		UserHandler:    userHandler,
		AuthMiddleware: authMiddleware,
		Logger:         logger,
		Environment:    "test",
	})

	ts := httptest.NewServer(router.Engine())

	return &TestApp{
		Server:    ts,
		Pool:      pool,
		Container: pgContainer,
		BaseURL:   ts.URL,
		JWT:       jwtSvc,
		userRepo:  userRepo,
		hasher:    passwordHasher,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (app *TestApp) cleanup(t *testing.T) {
	t.Helper()

	app.Server.Close()
	app.Pool.Close()

	ctx := context.Background()
	if err := app.Container.Terminate(ctx); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

// token issues a bearer token for subject; there is no login endpoint.
func (app *TestApp) token(t *testing.T, subject string) string {
	t.Helper()
	tok, _, err := app.JWT.GenerateAccessToken(subject)
	require.NoError(t, err)
	return tok
}

// seedAdmin stores an administrator directly, since sign-up cannot grant
// the ADMIN role to anonymous callers.
func (app *TestApp) seedAdmin(t *testing.T, login string) *entity.User {
	t.Helper()
	hash, err := app.hasher.Hash("adminPassword1")
	require.NoError(t, err)

	admin, err := entity.NewUser("Admin", login+"@connectfood.test", login, hash, entity.MustRoleSet(entity.RoleAdmin))
	require.NoError(t, err)
	require.NoError(t, app.userRepo.Create(context.Background(), admin))
	return admin
}

type apiResponse struct {
	Status int
	Header http.Header
	Body   map[string]any
	raw    []byte
}

func (r *apiResponse) String() string { return string(r.raw) }

// call sends a JSON request and decodes the JSON body, if any. Headers are
// given as alternating key/value pairs.
func (app *TestApp) call(t *testing.T, method, path string, body any, headers ...string) *apiResponse {
	t.Helper()

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(t.Context(), method, app.BaseURL+apiBasePath+path, payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	require.Zero(t, len(headers)%2, "headers must be key/value pairs")
	for i := 0; i < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := &apiResponse{Status: resp.StatusCode, Header: resp.Header, raw: raw}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.Body), "response body: %s", raw)
	}
	return out
}

// bearer returns the Authorization header pair for subject.
func (app *TestApp) bearer(t *testing.T, subject string) []string {
	t.Helper()
	return []string{"Authorization", "Bearer " + app.token(t, subject)}
}
