package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/connectfood/core/internal/domain"
	"github.com/connectfood/core/internal/domain/entity"
	"github.com/connectfood/core/internal/infrastructure/auth"
	"github.com/connectfood/core/internal/pkg/apperror"
)

const RequestIDKey = "request_id"

type ErrorResponse struct {
	Error     string              `json:"error"`
	Code      string              `json:"code,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
	Details   []domain.FieldError `json:"details,omitempty"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func ErrorWithCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: GetRequestID(c),
	})
}

func ValidationError(c *gin.Context, fields []domain.FieldError) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:     "validation failed",
		Code:      "VALIDATION_ERROR",
		RequestID: GetRequestID(c),
		Details:   fields,
	})
}

func InternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:     "internal server error",
		Code:      "INTERNAL_ERROR",
		RequestID: GetRequestID(c),
	})
}

// HandleError writes the client-facing form of err. Internal causes are
// recorded on the gin context for the request logger and never exposed.
func HandleError(c *gin.Context, err error) {
	appErr := apperror.FromDomain(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		_ = c.Error(err)
		InternalError(c)
		return
	}

	c.JSON(appErr.StatusCode, ErrorResponse{
		Error:     appErr.Message,
		Code:      appErr.Code,
		RequestID: GetRequestID(c),
		Details:   appErr.Details,
	})
}

// GetPrincipal returns the principal attached by the authentication
// middleware, if any.
func GetPrincipal(c *gin.Context) (*entity.Principal, bool) {
	return auth.PrincipalFromContext(c.Request.Context())
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
