package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/snippetshare/internal/auth"
	"github.com/sakif/snippetshare/internal/service"
)

// CommentHandler manages a post's threaded discussion.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

// NewCommentHandler creates a CommentHandler.
func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// HandleListThreaded returns the post's comments as a two-level tree.
//
// HTTP: GET /api/posts/{id}/comments
// Auth: none
//
// Response: array of root comments, each with a "replies" array. Both levels
// are ordered oldest-first. 404 when the post doesn't exist.
func (h *CommentHandler) HandleListThreaded(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	if postID == "" {
		http.Error(w, "Post ID is required", http.StatusBadRequest)
		return
	}

	threaded, err := h.comments.ThreadComments(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, threaded)
}

// createCommentRequest is the POST /api/posts/{id}/comments body.
// lineReference and parentCommentId are optional; absent and null are
// equivalent.
type createCommentRequest struct {
	Content         string `json:"content"`
	LineReference   *int   `json:"lineReference"`
	ParentCommentID string `json:"parentCommentId"`
}

// HandleCreate adds a comment (or a reply) to a post.
//
// HTTP: POST /api/posts/{id}/comments
// Auth: required
//
// 201 + the comment on success; 400 for empty content or a line reference
// below 1; 404 when the post, the caller's user row, or the named parent
// comment doesn't exist.
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized","message":"you must be signed in to comment"}`, http.StatusUnauthorized)
		return
	}

	postID := r.PathValue("id")
	if postID == "" {
		http.Error(w, "Post ID is required", http.StatusBadRequest)
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid comment JSON", slog.String("error", err.Error()))
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	comment, err := h.comments.Create(r.Context(), postID, userID, req.Content, req.LineReference, req.ParentCommentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}
