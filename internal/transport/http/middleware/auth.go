package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"teambot/internal/pkg/jwtutil"
	"teambot/internal/transport/http/response"
)

const (
	ContextUserIDKey    = "user_id"
	ContextUserNameKey  = "user_name"
	ContextUserEmailKey = "user_email"
)

// AuthRequired accepts a signed JWT or, failing that, treats the bearer
// token itself as the user id. The fallback keeps local development and
// integration tests free of a token-minting step.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing or malformed authorization header")
			c.Abort()
			return
		}
		setIdentity(c, secret, token)
		c.Next()
	}
}

// AuthOptional resolves an identity when a bearer token is present but
// lets anonymous requests through.
func AuthOptional(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			setIdentity(c, secret, token)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

func setIdentity(c *gin.Context, secret, token string) {
	if claims, err := jwtutil.ParseToken(secret, token); err == nil {
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserNameKey, claims.Name)
		c.Set(ContextUserEmailKey, claims.Email)
		return
	}
	c.Set(ContextUserIDKey, token)
	c.Set(ContextUserNameKey, "User "+token)
	c.Set(ContextUserEmailKey, token+"@example.com")
}
