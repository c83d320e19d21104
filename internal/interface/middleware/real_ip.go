package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// CtxRealIPKey holds the resolved client address, read by rate limiting and access logs.
	CtxRealIPKey = "real_ip"
	// CtxTrustProxyKey is true when forwarded headers may be honoured for this request.
	CtxTrustProxyKey = "trust_proxy"
)

var proxyHeaders = []string{"CF-Connecting-IP", "X-Real-IP"}

// RealIP resolves the client address once per request.
// With trustProxy set, CF-Connecting-IP, X-Real-IP and the left-most
// X-Forwarded-For entry are honoured in that order. Otherwise only the
// socket address reported by gin is used, so clients cannot pick their own
// rate-limit bucket.
func RealIP(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ""
		if trustProxy {
			ip = forwardedIP(c)
		}
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set(CtxRealIPKey, ip)
		c.Set(CtxTrustProxyKey, trustProxy)
		c.Next()
	}
}

// TrustsProxy reports whether RealIP ran with proxy headers trusted.
func TrustsProxy(c *gin.Context) bool {
	return c.GetBool(CtxTrustProxyKey)
}

func forwardedIP(c *gin.Context) string {
	for _, h := range proxyHeaders {
		if ip := net.ParseIP(strings.TrimSpace(c.GetHeader(h))); ip != nil {
			return ip.String()
		}
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
