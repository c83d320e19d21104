package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-social-api/internal/interface/http"
	"github.com/oksasatya/go-social-api/internal/interface/middleware"
)

// AuthModule serves the public account routes under /v1/user.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Redis   *redis.Client

	// AllowPrivate lets loopback and private-network clients skip the limiters.
	AllowPrivate bool
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Redis: rdb}
}

func (m *AuthModule) Name() string { return "auth" }

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// per IP: 10 logins and 5 registrations a minute
	allow := middleware.AllowIf(m.AllowPrivate, middleware.AllowPrivateIP())
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIP(), allow)
	registerLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), allow)

	g := rg.Group("/v1/user")
	g.POST("/register", registerLimiter, m.Handler.Register)
	g.POST("/login", loginLimiter, m.Handler.Login)
	g.GET("/logout", m.Handler.Logout)
}
