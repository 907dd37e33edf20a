package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/snippetshare/internal/auth"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/service"
)

// PostHandler manages the post feed and post CRUD.
//
// Each handler parses the request, calls the service, and translates the
// result to HTTP — nothing else. The service never sees HTTP types and the
// handler never sees SQL.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// listPostsResponse is the feed envelope: one page of posts plus pagination.
type listPostsResponse struct {
	Posts      []model.Post     `json:"posts"`
	Pagination model.Pagination `json:"pagination"`
}

// queryInt parses an integer query parameter, returning def when the
// parameter is absent or malformed. Malformed paging input falls back to the
// default rather than erroring — the feed is public and forgiving.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// HandleList returns one page of the feed.
//
// HTTP: GET /api/posts?language=&source=&page=&limit=
// Auth: none — the feed is visible to everyone.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 0) // 0 → service default (20)

	posts, pagination, err := h.posts.List(r.Context(), q.Get("language"), q.Get("source"), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listPostsResponse{
		Posts:      posts,
		Pagination: pagination,
	})
}

// createPostRequest is the POST /api/posts body.
type createPostRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Code        string           `json:"code"`
	Language    string           `json:"language"`
	Source      model.CodeSource `json:"source"`
}

// HandleCreate saves a new post for the signed-in user.
//
// HTTP: POST /api/posts
// Auth: required (RequireAuth middleware)
//
// 201 + the post on success; 400 for validation failures (empty title/code,
// missing language, unknown source); 404 when the token's user row is gone.
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized","message":"you must be signed in to create a post"}`, http.StatusUnauthorized)
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid post JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	post, err := h.posts.Create(r.Context(), userID, req.Title, req.Description, req.Code, req.Language, req.Source)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// HandleGetByID returns a single post with its author summary.
//
// HTTP: GET /api/posts/{id}
// Auth: none
func (h *PostHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Post ID is required", http.StatusBadRequest)
		return
	}

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// HandleDelete removes a post and its comments. Owner only.
//
// HTTP: DELETE /api/posts/{id}
// Auth: required; 403 when the caller isn't the post's author.
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized","message":"you must be signed in to delete a post"}`, http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		http.Error(w, "Post ID is required", http.StatusBadRequest)
		return
	}

	if err := h.posts.Delete(r.Context(), id, userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted successfully"})
}
