package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
)

type userResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Followers      []string  `json:"followers"`
	Following      []string  `json:"following"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// toUserResponse renders u; root-relative picture references are made absolute
// against the request host.
func toUserResponse(c *gin.Context, u *entity.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Name:           u.Name,
		Username:       u.Username,
		Email:          u.Email,
		Followers:      u.Followers.Slice(),
		Following:      u.Following.Slice(),
		Bio:            u.Bio,
		ProfilePicture: absoluteURL(c, u.ProfilePicture),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func toUserResponses(c *gin.Context, users []*entity.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(c, u))
	}
	return out
}

type userSummaryResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Username       string `json:"username"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`
	Followers      int    `json:"followers_count"`
	Following      int    `json:"following_count"`
}

func toSummaries(c *gin.Context, in []entity.UserSummary) []userSummaryResponse {
	out := make([]userSummaryResponse, 0, len(in))
	for _, s := range in {
		r := userSummaryResponse(s)
		r.ProfilePicture = absoluteURL(c, r.ProfilePicture)
		out = append(out, r)
	}
	return out
}
