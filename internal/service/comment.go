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

// MaxCommentLength bounds comment content, matching the storage schema.
const MaxCommentLength = 5000

// CommentService handles comment creation and the threaded view of a post's
// discussion.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

// NewCommentService creates a CommentService.
func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		users:    users,
		logger:   logger,
	}
}

// ThreadComments returns the post's discussion as a two-level tree: root
// comments (no parent) in creation order, each carrying its direct replies in
// creation order.
//
// ALGORITHM:
// One flat fetch, already sorted ascending, then one partition pass:
//   - roots   = comments with no parent
//   - replies = comments with a parent, bucketed by parent ID
//
// Attaching preserves the fetch order on both levels, so no re-sorting
// happens here.
//
// KNOWN SHAPE LIMITATION:
// A reply whose parent is itself a reply is bucketed under that reply's ID —
// which is never a root ID — so it silently disappears from the rendered
// tree. Storage allows arbitrarily deep chains; the view renders exactly two
// levels and drops the rest. The UI never offers a reply box past depth two,
// so in practice such rows only appear via direct API calls.
func (s *CommentService) ThreadComments(ctx context.Context, postID string) ([]model.ThreadedComment, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, apperror.ValidationFailed("postId", "post ID is required")
	}

	// The post must exist — a missing post is a 404, not an empty thread.
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListCommentsByPost(ctx, postID)
	if err != nil {
		s.logger.Error("failed to list comments",
			slog.String("postID", postID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing comments for post %s: %w", postID, err)
	}

	repliesByParent := make(map[string][]model.Comment)
	roots := []model.Comment{}
	for _, c := range comments {
		if c.ParentCommentID == "" {
			roots = append(roots, c)
			continue
		}
		repliesByParent[c.ParentCommentID] = append(repliesByParent[c.ParentCommentID], c)
	}

	threaded := make([]model.ThreadedComment, 0, len(roots))
	for _, root := range roots {
		replies := repliesByParent[root.ID]
		if replies == nil {
			replies = []model.Comment{}
		}
		threaded = append(threaded, model.ThreadedComment{
			Comment: root,
			Replies: replies,
		})
	}

	return threaded, nil
}

// Create validates and saves a new comment on a post.
//
// Requirements, in the order they are checked:
//   - the post exists (404 otherwise)
//   - content is non-empty after trimming and within length
//   - lineReference, when supplied, is ≥ 1 — but it is stored as-is, never
//     bounds-checked against the post's actual line count
//   - the author's user row exists (404 — see PostService.Create)
//   - the parent comment, when supplied, exists (404)
//
// Comments are immutable once created: no edit, no individual delete.
func (s *CommentService) Create(ctx context.Context, postID, authorID, content string, lineReference *int, parentCommentID string) (*model.Comment, error) {
	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, apperror.ValidationFailed("postId", "post ID is required")
	}

	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}
	if len(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	if lineReference != nil && *lineReference < 1 {
		return nil, apperror.ValidationFailed("lineReference", "line reference must be 1 or greater")
	}

	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	parentCommentID = strings.TrimSpace(parentCommentID)
	if parentCommentID != "" {
		if _, err := s.comments.GetCommentByID(ctx, parentCommentID); err != nil {
			return nil, err
		}
	}

	comment := &model.Comment{
		PostID:          postID,
		AuthorID:        author.ID,
		Content:         content,
		LineReference:   lineReference,
		ParentCommentID: parentCommentID,
	}

	if err := s.comments.CreateComment(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("postID", postID),
			slog.String("authorID", authorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	comment.Author = author.Summary()

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("postID", postID),
		slog.Bool("isReply", parentCommentID != ""),
	)

	return comment, nil
}
