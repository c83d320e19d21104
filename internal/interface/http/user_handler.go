package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/application"
	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/internal/interface/middleware"
	"github.com/oksasatya/go-social-api/pkg/apperror"
	"github.com/oksasatya/go-social-api/pkg/response"
	"github.com/oksasatya/go-social-api/pkg/validation"
)

// PictureField is the multipart field carrying the profile picture.
const PictureField = "profilePicture"

type UserHandler struct {
	Profiles *application.ProfileService
	Graph    *application.GraphService
	Logger   logrus.FieldLogger
}

func NewUserHandler(profiles *application.ProfileService, graph *application.GraphService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{Profiles: profiles, Graph: graph, Logger: logger}
}

type updateProfileRequest struct {
	Name     *string `json:"name"`
	Username *string `json:"username" binding:"omitempty,username"`
	Bio      *string `json:"bio" binding:"omitempty,bio"`
}

// The actor always comes from the session; a body id is accepted only if it matches.
type followRequest struct {
	ID string `json:"id"`
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Profiles.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(c, u), "User profile fetched successfully", nil)
}

func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Profiles.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(c, u), "User profile fetched successfully", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	id, ok := h.ownID(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request payload.", validation.ToDetails(err))
		return
	}
	u, err := h.Profiles.UpdateProfile(c.Request.Context(), id, entity.ProfilePatch{
		Name:     req.Name,
		Username: req.Username,
		Bio:      req.Bio,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(c, u), "Profile updated successfully", nil)
}

func (h *UserHandler) OtherUsers(c *gin.Context) {
	users, err := h.Profiles.ListOthers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"other_users": toUserResponses(c, users)}, "", gin.H{"count": len(users)})
}

func (h *UserHandler) Follow(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	msg, err := h.Graph.Follow(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, msg, nil)
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	msg, err := h.Graph.Unfollow(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, msg, nil)
}

func (h *UserHandler) UpdateProfilePicture(c *gin.Context) {
	id, ok := h.ownID(c)
	if !ok {
		return
	}

	var up *application.Upload
	fh, err := c.FormFile(PictureField)
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			respondError(c, h.Logger, apperror.Internal(err))
			return
		}
		defer f.Close()
		up = &application.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		response.Error(c, http.StatusBadRequest, application.MsgNoFile, nil)
		return
	}

	u, err := h.Profiles.UpdateProfilePicture(c.Request.Context(), id, up)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	res := toUserResponse(c, u)
	response.Success(c, http.StatusOK, gin.H{
		"profile_picture": res.ProfilePicture,
		"user":            res,
	}, "Profile picture updated successfully", nil)
}

func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Profiles.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": toSummaries(c, hits)}, "", gin.H{"count": len(hits)})
}

// ownID returns :id when it is the session user and writes 403 otherwise.
func (h *UserHandler) ownID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id != middleware.UserID(c) {
		respondError(c, h.Logger, apperror.Forbidden("You can only modify your own profile."))
		return "", false
	}
	return id, true
}

func (h *UserHandler) actor(c *gin.Context) (string, bool) {
	uid := middleware.UserID(c)
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		var req followRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			response.Error(c, http.StatusBadRequest, "Invalid request payload.", validation.ToDetails(err))
			return "", false
		}
		if req.ID != "" && req.ID != uid {
			respondError(c, h.Logger, apperror.Forbidden("You can only act as yourself."))
			return "", false
		}
	}
	return uid, true
}

// absoluteURL turns a root-relative reference into <scheme>://<host>/path.
func absoluteURL(c *gin.Context, ref string) string {
	if !strings.HasPrefix(ref, "/") {
		return ref
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if middleware.TrustsProxy(c) {
		if p := strings.ToLower(c.GetHeader("X-Forwarded-Proto")); p == "http" || p == "https" {
			scheme = p
		}
	}
	return scheme + "://" + c.Request.Host + ref
}
