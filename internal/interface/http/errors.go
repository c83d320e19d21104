package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/interface/middleware"
	"github.com/oksasatya/go-social-api/pkg/apperror"
	"github.com/oksasatya/go-social-api/pkg/helpers"
	"github.com/oksasatya/go-social-api/pkg/response"
)

// respondError writes err as an envelope. Internal causes are logged, never rendered.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error) {
	status := apperror.HTTPStatus(err)
	if apperror.KindOf(err) == apperror.KindInternal {
		helpers.LogError(logger, "request failed", err, logrus.Fields{
			"request_id": c.GetString(response.RequestIDKey),
			"user_id":    middleware.UserID(c),
			"path":       c.FullPath(),
		})
	}
	response.Error(c, status, apperror.PublicMessage(err), nil)
}
