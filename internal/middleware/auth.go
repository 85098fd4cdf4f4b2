package middleware

import (
	"errors"
	"net/http"

	"culturemap/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const PrincipalKey = "principal"

// LoadPrincipal validates the bearer token, if any, and stores the principal
// in the context. Requests without a token continue as anonymous; a token
// that fails validation ends the request with 401.
func LoadPrincipal(v *auth.Validator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.ParseBearer(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		p, err := v.Validate(token)
		if err != nil {
			reason := auth.ReasonMalformed
			var authErr *auth.AuthenticationError
			if errors.As(err, &authErr) {
				reason = authErr.Reason
			}
			log.Debug("token rejected", zap.String("reason", string(reason)), zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":   http.StatusUnauthorized,
				"msg":    "invalid token",
				"reason": reason,
			})
			return
		}
		c.Set(PrincipalKey, p)
		c.Next()
	}
}

// AuthRequired ensures a principal was loaded
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentPrincipal(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": http.StatusUnauthorized,
				"msg":  "authentication required",
			})
			return
		}
		c.Next()
	}
}

// CurrentPrincipal returns the caller, or nil for anonymous requests.
func CurrentPrincipal(c *gin.Context) *auth.Principal {
	if v, exists := c.Get(PrincipalKey); exists {
		if p, ok := v.(*auth.Principal); ok {
			return p
		}
	}
	return nil
}
