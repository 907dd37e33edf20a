package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/repository"
)

// UserService handles public profile resolution: a user plus a page of their
// posts.
type UserService struct {
	users  repository.UserRepository
	posts  repository.PostRepository
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, posts repository.PostRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		posts:  posts,
		logger: logger,
	}
}

// Profile bundles what the profile endpoint returns: the resolved user, one
// page of their posts (newest first), and the pagination envelope.
type Profile struct {
	User       *model.User
	Posts      []model.Post
	Pagination model.Pagination
}

// GetProfile resolves a user by the given identifier and returns their posts.
//
// RESOLUTION ORDER:
// Try the identifier as a (case-folded) username first, then as an internal
// ID. Profile URLs use usernames, but older clients link by ID — and a
// username can never collide with an xid since xids are machine-generated.
// Not found after both attempts is a terminal not-found.
//
// The posts page follows the same pagination contract as the feed, without
// language/source filters.
func (s *UserService) GetProfile(ctx context.Context, idOrUsername string, page, limit int) (*Profile, error) {
	idOrUsername = strings.TrimSpace(idOrUsername)
	if idOrUsername == "" {
		return nil, apperror.ValidationFailed("id", "user identifier is required")
	}

	user, err := s.users.GetUserByUsername(ctx, idOrUsername)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("resolving user %q: %w", idOrUsername, err)
		}
		// No username match — fall back to internal ID.
		user, err = s.users.GetUserByID(ctx, idOrUsername)
		if err != nil {
			return nil, err
		}
	}

	page, limit, offset := normalizePaging(page, limit)

	posts, total, err := s.posts.ListPosts(ctx,
		repository.PostFilter{AuthorID: user.ID},
		repository.ListOptions{Limit: limit, Offset: offset},
	)
	if err != nil {
		s.logger.Error("failed to list posts for profile",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing posts for user %s: %w", user.ID, err)
	}

	return &Profile{
		User:       user,
		Posts:      posts,
		Pagination: buildPagination(page, limit, total),
	}, nil
}
