package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/connectfood/core/internal/domain"
	"github.com/connectfood/core/internal/domain/entity"
	"github.com/connectfood/core/internal/infrastructure/auth"
	"github.com/connectfood/core/internal/infrastructure/metrics"
	"github.com/connectfood/core/internal/pkg/httputil"
)

const BearerPrefix = "Bearer "

const (
	outcomeAuthenticated  = "authenticated"
	outcomeNoHeader       = "no_header"
	outcomeBadScheme      = "bad_scheme"
	outcomeInvalidToken   = "invalid_token"
	outcomeUnknownSubject = "unknown_subject"
	outcomeError          = "error"
)

type AuthMiddleware struct {
	jwtSvc   *auth.JWTService
	resolver *auth.IdentityResolver
	logger   *zap.Logger
}

func NewAuthMiddleware(jwtSvc *auth.JWTService, resolver *auth.IdentityResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSvc:   jwtSvc,
		resolver: resolver,
		logger:   logger,
	}
}

// Authenticate installs a principal on the request context when the request
// carries a valid bearer token for a known user. It never rejects a request;
// routes that need a principal chain RequireAuth after it.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, outcome := m.establish(c)
		metrics.AuthenticationsTotal.WithLabelValues(outcome).Inc()

		if principal != nil {
			c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))
		}

		c.Next()
	}
}

func (m *AuthMiddleware) establish(c *gin.Context) (*entity.Principal, string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, outcomeNoHeader
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return nil, outcomeBadScheme
	}

	token := strings.TrimPrefix(header, BearerPrefix)
	if !m.jwtSvc.Validate(token) {
		m.logger.Debug("bearer token rejected", zap.String("request_id", httputil.GetRequestID(c)))
		return nil, outcomeInvalidToken
	}

	principal, err := m.resolver.Resolve(c.Request.Context(), m.jwtSvc.Subject(token))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenInvalid):
			m.logger.Debug("bearer token expired before resolution", zap.String("request_id", httputil.GetRequestID(c)))
			return nil, outcomeInvalidToken
		case errors.Is(err, domain.ErrUserNotFound):
			m.logger.Debug("token subject not found", zap.String("request_id", httputil.GetRequestID(c)))
			return nil, outcomeUnknownSubject
		}
		m.logger.Warn("resolving token subject",
			zap.Error(err),
			zap.String("request_id", httputil.GetRequestID(c)),
		)
		return nil, outcomeError
	}

	return principal, outcomeAuthenticated
}

// RequireAuth aborts with 401 unless a usable principal was installed.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := httputil.GetPrincipal(c)
		if !ok || !principal.Usable() {
			httputil.HandleError(c, domain.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuthority aborts with 403 unless the principal holds at least one
// of the given authorities. A missing principal is still a 401.
func (m *AuthMiddleware) RequireAuthority(authorities ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := httputil.GetPrincipal(c)
		if !ok || !principal.Usable() {
			httputil.HandleError(c, domain.ErrUnauthorized)
			c.Abort()
			return
		}
		if !principal.HasAnyAuthority(authorities...) {
			httputil.HandleError(c, domain.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
