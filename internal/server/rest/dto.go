package rest

import (
	"time"

	"github.com/dmitrijs2005/conduit/internal/server/models"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type registerRequest struct {
	User *struct {
		Username string  `json:"username"`
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Bio      *string `json:"bio"`
		Image    *string `json:"image"`
	} `json:"user"`
}

type loginRequest struct {
	User *struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	} `json:"user"`
}

// updateRequest fields left out or sent as null are not changed.
type updateRequest struct {
	User *struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Bio      *string `json:"bio"`
		Image    *string `json:"image"`
	} `json:"user"`
}

type todoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type userBody struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
	Token    string  `json:"token"`
}

type userResponse struct {
	User userBody `json:"user"`
}

type profileBody struct {
	Username  string  `json:"username"`
	Bio       *string `json:"bio"`
	Image     *string `json:"image"`
	Following bool    `json:"following"`
}

type profileResponse struct {
	Profile profileBody `json:"profile"`
}

type uploadBody struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ImageURL  string    `json:"image_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type uploadResponse struct {
	Upload uploadBody `json:"upload"`
}

type todoBody struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

func newUserResponse(u *models.User, token string) userResponse {
	return userResponse{User: userBody{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Bio:      u.Bio,
		Image:    u.Image,
		Token:    token,
	}}
}

func newProfileResponse(p *models.Profile) profileResponse {
	return profileResponse{Profile: profileBody{
		Username:  p.Username,
		Bio:       p.Bio,
		Image:     p.Image,
		Following: p.Following,
	}}
}

func newTodoBody(t *models.Todo) todoBody {
	return todoBody{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
	}
}
