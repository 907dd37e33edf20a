package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/service"
)

// UserHandler serves public profiles.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// publicUser is the profile shape exposed to anyone. Email and the GitHub
// account ID stay private — this endpoint needs no auth, so the full User
// struct must never be marshalled here.
type publicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"createdAt"`
}

// profileResponse bundles the user, one page of their posts, and pagination.
type profileResponse struct {
	User       publicUser       `json:"user"`
	Posts      []model.Post     `json:"posts"`
	Pagination model.Pagination `json:"pagination"`
}

// HandleGetProfile returns a user's public profile and their posts.
//
// HTTP: GET /api/users/{idOrUsername}?page=&limit=
// Auth: none
//
// The identifier is tried as a username first (case-insensitively), then as
// an internal ID. 404 when neither matches.
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	idOrUsername := r.PathValue("id")
	if idOrUsername == "" {
		http.Error(w, "User identifier is required", http.StatusBadRequest)
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 0)

	profile, err := h.users.GetProfile(r.Context(), idOrUsername, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		User: publicUser{
			ID:        profile.User.ID,
			Username:  profile.User.Username,
			Name:      profile.User.Name,
			AvatarURL: profile.User.AvatarURL,
			Bio:       profile.User.Bio,
			CreatedAt: profile.User.CreatedAt,
		},
		Posts:      profile.Posts,
		Pagination: profile.Pagination,
	})
}
