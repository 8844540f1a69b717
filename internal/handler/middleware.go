package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Suryanshu-Nabheet/Zenith/internal/apperr"
	"github.com/Suryanshu-Nabheet/Zenith/internal/auth"
)

const identityKey = "identity"

// AuthMiddleware verifies the bearer token on every /api request and
// stores the resolved identity in the gin context.
func AuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := verifier.Verify(auth.TokenFromRequest(c.Request))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": apperr.MessageOf(err),
			})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func identityFrom(c *gin.Context) auth.Identity {
	v, _ := c.Get(identityKey)
	if identity, ok := v.(*auth.Identity); ok && identity != nil {
		return *identity
	}
	return auth.Identity{}
}

// httpStatus maps application error codes onto HTTP status codes.
func httpStatus(err error) int {
	switch apperr.CodeOf(err) {
	case apperr.CodeAuthentication:
		return http.StatusUnauthorized
	case apperr.CodeAuthorization:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeBadRequest:
		return http.StatusBadRequest
	case apperr.CodeInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(httpStatus(err), gin.H{
		"error": apperr.MessageOf(err),
	})
}
