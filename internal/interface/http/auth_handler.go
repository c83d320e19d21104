package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/application"
	"github.com/oksasatya/go-social-api/pkg/helpers"
	"github.com/oksasatya/go-social-api/pkg/response"
	"github.com/oksasatya/go-social-api/pkg/validation"
)

type AuthHandler struct {
	Creds   *application.CredentialService
	Cookies *helpers.CookieManager
	Logger  logrus.FieldLogger
}

func NewAuthHandler(creds *application.CredentialService, cookies *helpers.CookieManager, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Creds: creds, Cookies: cookies, Logger: logger}
}

// Presence is checked by the service so every missing field yields the same message.
type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username" binding:"omitempty,username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload.", validation.ToDetails(err))
		return
	}
	if _, err := h.Creds.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusCreated, nil, "Account created successfully.", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload.", validation.ToDetails(err))
		return
	}
	res, err := h.Creds.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.Cookies.SetSession(c, res.Token, res.ExpiresAt)
	response.Success(c, http.StatusCreated, gin.H{
		"user":  toUserResponse(c, res.User),
		"token": res.Token,
	}, "Welcome back "+res.User.Name, gin.H{"expires_at": res.ExpiresAt})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, nil, "User logged out successfully.", nil)
}
