package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/pkg/response"
)

// Recovery turns a panic into the standard 500 envelope and logs it.
func Recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(logrus.Fields{
					"request_id": c.GetString(response.RequestIDKey),
					"path":       c.Request.URL.Path,
					"panic":      fmt.Sprint(r),
				}).Error("panic recovered")
				response.Abort(c, http.StatusInternalServerError, "Server error", nil)
			}
		}()
		c.Next()
	}
}
