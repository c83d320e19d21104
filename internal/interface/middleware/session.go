package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-api/pkg/helpers"
	"github.com/oksasatya/go-social-api/pkg/response"
)

const CtxUserIDKey = "userID"

// TokenParser is satisfied by helpers.JWTManager.
type TokenParser interface {
	Parse(token string) (*helpers.Claims, error)
}

// Session reads the token cookie (or an Authorization bearer token), validates
// it and injects the user ID into the context. The user record is not loaded.
func Session(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "User not authenticated.", nil)
			return
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Invalid or expired session.", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Next()
	}
}

// UserID returns the session user set by Session.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

func sessionToken(c *gin.Context) string {
	if v, err := c.Cookie(helpers.SessionCookie); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
