package router

import "github.com/gin-gonic/gin"

// Module is a feature area mounted under /api.
// Name identifies the module in the registry; it must be unique.
type Module interface {
	Name() string
	Register(rg *gin.RouterGroup)
}
