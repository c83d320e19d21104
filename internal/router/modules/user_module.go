package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-social-api/internal/interface/http"
	"github.com/oksasatya/go-social-api/internal/interface/middleware"
	"github.com/oksasatya/go-social-api/pkg/helpers"
)

// UserModule wires profile and social graph routes. All of them need a session.
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client

	AllowPrivate bool
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *UserModule) Name() string { return "user" }

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/v1/user")
	auth.Use(middleware.Session(m.JWT))
	allow := middleware.AllowIf(m.AllowPrivate, middleware.AllowPrivateIP())
	auth.Use(
		middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), allow),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), allow),
	)
	{
		auth.GET("/me", m.Handler.Me)
		auth.GET("/search", m.Handler.Search)
		auth.GET("/profile/:id", m.Handler.GetProfile)
		auth.PUT("/profile/:id", m.Handler.UpdateProfile)
		auth.PUT("/profile/:id/picture", m.Handler.UpdateProfilePicture)
		auth.GET("/otheruser/:id", m.Handler.OtherUsers)
		auth.POST("/follow/:id", m.Handler.Follow)
		auth.POST("/unfollow/:id", m.Handler.Unfollow)
	}
}
