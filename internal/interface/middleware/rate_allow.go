package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limiter for loopback and RFC 1918 clients
// (health checks, in-cluster callers).
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// AllowIf returns an AllowFunc when enabled and nil otherwise, so the
// bypass can be toggled from config.
func AllowIf(enabled bool, fn AllowFunc) AllowFunc {
	if !enabled {
		return nil
	}
	return fn
}
