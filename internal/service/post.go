// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services accept primitives and return domain errors, never HTTP types.
// Each service takes repository INTERFACES, not the concrete sqlite.DB —
// tests inject in-memory mocks, and the store is swappable in main.go.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/repository"
)

// Validation constants.
// Defining these as constants (not magic numbers in code) makes them easy to
// find, self-documenting, and referenceable in error messages.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxCodeLength        = 50000
	DefaultListLimit     = 20
	MaxListLimit         = 100
)

// normalizePaging clamps page/limit to sane values and returns them with the
// derived offset: skip = (page-1)*limit.
func normalizePaging(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return page, limit, (page - 1) * limit
}

// buildPagination fills the response envelope.
// totalPages = ceil(total/limit), computed with integer arithmetic.
func buildPagination(page, limit, total int) model.Pagination {
	return model.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}
}

// PostService handles business logic for posts: feed listing, creation, and
// compound deletion (post + its comments).
type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

// NewPostService creates a PostService. The comment repository is needed
// because deleting a post cascades to its comments.
func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		users:    users,
		logger:   logger,
	}
}

// List returns one page of the feed, newest first, with the pagination
// envelope. language and source are optional equality filters — empty means
// no constraint. The feed is public; there is no caller identity here.
func (s *PostService) List(ctx context.Context, language string, source string, page, limit int) ([]model.Post, model.Pagination, error) {
	page, limit, offset := normalizePaging(page, limit)

	posts, total, err := s.posts.ListPosts(ctx,
		repository.PostFilter{
			Language: language,
			Source:   model.CodeSource(source),
		},
		repository.ListOptions{Limit: limit, Offset: offset},
	)
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, model.Pagination{}, fmt.Errorf("listing posts: %w", err)
	}

	return posts, buildPagination(page, limit, total), nil
}

// Create validates and saves a new post for the given author.
//
// Validation mirrors the storage schema: title and code are required after
// trimming, language is required (and lowercased here, at write time, so
// feed filters are plain equality matches), source defaults to "other" when
// omitted and is rejected when unrecognised. Nothing is silently coerced —
// an empty-after-trim title is a validation error, not an empty post.
func (s *PostService) Create(ctx context.Context, authorID, title, description, code, language string, source model.CodeSource) (*model.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}

	description = strings.TrimSpace(description)
	if len(description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}

	if strings.TrimSpace(code) == "" {
		return nil, apperror.ValidationFailed("code", "code is required")
	}
	if len(code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}

	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return nil, apperror.ValidationFailed("language", "language is required")
	}

	if source == "" {
		source = model.SourceOther
	}
	if !source.Valid() {
		return nil, apperror.ValidationFailed("source",
			"source must be one of: ai, colleague, personal, other")
	}

	// The token's subject must still map to a user row. A valid session with
	// a missing profile surfaces as not-found, not as unauthenticated.
	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		AuthorID:    author.ID,
		Title:       title,
		Description: description,
		Code:        code,
		Language:    language,
		Source:      source,
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("authorID", authorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	post.Author = author.Summary()

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("authorID", post.AuthorID),
		slog.String("language", post.Language),
	)

	return post, nil
}

// GetByID retrieves a post with its author summary.
// Returns apperror.ErrNotFound if the post doesn't exist.
func (s *PostService) GetByID(ctx context.Context, id string) (*model.Post, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "post ID is required")
	}

	return s.posts.GetPostByID(ctx, id)
}

// Delete removes a post and all of its comments. Only the post's author may
// delete it — any other caller gets a forbidden error, never a silent no-op.
//
// ORDERING CONSTRAINT:
// Comments are deleted BEFORE the post. The two steps are not atomic; if the
// process dies between them, the surviving state is a post with no comments,
// which is safe. The reverse order could leave comments pointing at a post
// that no longer exists. A concurrent duplicate delete is harmless: its
// comment sweep matches zero rows and its post delete reports not-found.
func (s *PostService) Delete(ctx context.Context, id, callerID string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "post ID is required")
	}

	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return err
	}

	if post.AuthorID != callerID {
		return apperror.Forbidden("you can only delete your own posts")
	}

	deleted, err := s.comments.DeleteCommentsByPost(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete comments for post",
			slog.String("postID", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting comments for post %s: %w", id, err)
	}

	if err := s.posts.DeletePost(ctx, id); err != nil {
		return err
	}

	s.logger.Info("post deleted",
		slog.String("id", id),
		slog.String("callerID", callerID),
		slog.Int64("commentsDeleted", deleted),
	)

	return nil
}
