package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-api/config"
	"github.com/oksasatya/go-social-api/internal/container"
	"github.com/oksasatya/go-social-api/internal/router/modules"
	"github.com/oksasatya/go-social-api/pkg/validation"
)

// InitModules registers the feature modules built from c.
// This function should be called once during application startup.
func InitModules(r *Registry, c *container.Container) {
	authMod := modules.NewAuthModule(c.AuthHandler, c.Redis)
	authMod.AllowPrivate = c.Config.RateLimitAllowPrivate
	r.Add(authMod)

	userMod := modules.NewUserModule(c.UserHandler, c.JWT, c.Redis)
	userMod.AllowPrivate = c.Config.RateLimitAllowPrivate
	r.Add(userMod)
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}

// New builds the engine routes: health check, local uploads and the /api modules.
// Global middleware is expected to be attached to engine already.
func New(engine *gin.Engine, c *container.Container) *Registry {
	validation.Init()

	engine.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if c.Config.UploadDriver == config.UploadDriverLocal {
		engine.Static("/uploads", c.Config.UploadDir)
	}

	reg := NewRegistry(engine)
	InitModules(reg, c)
	reg.RegisterAll()
	return reg
}
