package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"culturemap/internal/apperror"
	"culturemap/internal/auth"
	"culturemap/internal/models"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
	Field   string `json:"field,omitempty"`
}

// HandleError maps a service error to its status. Unknown errors become 500
// with a generic message; the cause is attached to the gin context so the
// request logger records it.
func HandleError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

func errorResponse(err error) (int, ErrorResponse) {
	var (
		verr    *apperror.ValidationError
		authErr *auth.AuthenticationError
		deny    *apperror.AuthorizationError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{Code: http.StatusBadRequest, Message: verr.Message, Field: verr.Field}
	case errors.Is(err, apperror.ErrUnauthenticated), errors.As(err, &authErr):
		return http.StatusUnauthorized, ErrorResponse{Code: http.StatusUnauthorized, Message: "authentication required"}
	case errors.As(err, &deny):
		return http.StatusForbidden, ErrorResponse{Code: http.StatusForbidden, Message: deny.Error()}
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Code: http.StatusNotFound, Message: "not found"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Code: http.StatusInternalServerError, Message: "internal error"}
	}
}

// bindJSON decodes the body, reporting decode failures as a bad request.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		HandleError(c, apperror.Invalid("body", "invalid json: "+err.Error()))
		return false
	}
	return true
}

func pathKind(c *gin.Context) (models.Kind, bool) {
	kind, err := models.ParseKind(c.Param("kind"))
	if err != nil {
		HandleError(c, err)
		return "", false
	}
	return kind, true
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		HandleError(c, apperror.Invalid("id", "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

// pathTarget reads /:kind/:id as an interaction target.
func pathTarget(c *gin.Context) (models.Target, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		HandleError(c, apperror.Invalid("targetId", "must be a positive integer"))
		return models.Target{}, false
	}
	t, err := models.NewTarget(c.Param("kind"), uint(id))
	if err != nil {
		HandleError(c, err)
		return models.Target{}, false
	}
	return t, true
}
