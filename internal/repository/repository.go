// Package repository defines the storage interfaces the service layer depends
// on. The concrete document store lives behind these interfaces — the sqlite
// subpackage implements them today, and anything with unique-key enforcement,
// equality filters, and a stable timestamp sort could replace it.
package repository

import (
	"context"

	"github.com/sakif/snippetshare/internal/model"
)

// ListOptions carries LIMIT/OFFSET pagination.
// The service layer computes Offset = (page-1)*limit and clamps Limit.
type ListOptions struct {
	Limit  int
	Offset int
}

// PostFilter narrows a post listing. Zero values mean "no constraint":
// an empty Language matches every language, an empty AuthorID matches every
// author. Values are matched by equality — Language is already lowercased at
// write time, so no case folding happens here.
type PostFilter struct {
	Language string
	Source   model.CodeSource
	AuthorID string
}

// UserRepository stores user accounts keyed by our internal ID, with unique
// lookups by GitHub ID and by (case-folded) username.
type UserRepository interface {
	// Upsert creates the user on first sign-in and refreshes only Name and
	// AvatarURL on subsequent sign-ins. After the call user.ID holds the
	// internal ID (existing or newly generated).
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
}

// PostRepository stores posts. Reads return posts with the denormalized
// author summary populated (single joined query, no N+1 lookups).
type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	// ListPosts returns the filtered page ordered by creation time descending
	// plus the total number of matches (for the pagination envelope).
	ListPosts(ctx context.Context, filter PostFilter, opts ListOptions) ([]model.Post, int, error)
	DeletePost(ctx context.Context, id string) error
}

// CommentRepository stores comments. Comments have no update or single-delete
// operations — they are immutable and only removed when their post goes.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	// ListCommentsByPost returns every comment on the post ordered by
	// creation time ascending, author summaries populated.
	ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error)
	// DeleteCommentsByPost removes all comments on the post and returns how
	// many went. Matching zero comments is not an error.
	DeleteCommentsByPost(ctx context.Context, postID string) (int64, error)
}
