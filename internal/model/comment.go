package model

import "time"

// Comment is a discussion entry on a post. Comments are immutable after
// creation — there is no edit endpoint — and are only removed in bulk when
// their post is deleted.
//
// WHY LineReference *int (A POINTER)?
// The line reference is genuinely optional: "no line" is different from
// "line 0". A pointer gives us a real null — nil marshals to JSON null and
// maps cleanly onto the nullable column in storage. The value, when present,
// points at a line in the post's code but is never bounds-checked against it;
// the post can be edited out from under an old comment anyway.
//
// ParentCommentID is empty for root comments and holds the parent's ID for
// replies. Storage allows chains of any depth, but the threaded view only
// renders roots plus their direct replies (see service.ThreadComments).
type Comment struct {
	ID              string         `json:"id"              db:"id"`
	PostID          string         `json:"postId"          db:"post_id"`
	AuthorID        string         `json:"authorId"        db:"author_id"`
	Author          *AuthorSummary `json:"author,omitempty"`
	Content         string         `json:"content"         db:"content"` // required, trimmed, ≤5000 chars
	LineReference   *int           `json:"lineReference"   db:"line_reference"`
	ParentCommentID string         `json:"parentCommentId,omitempty" db:"parent_comment_id"`
	CreatedAt       time.Time      `json:"createdAt"       db:"created_at"`
	UpdatedAt       time.Time      `json:"updatedAt"       db:"updated_at"`
}

// ThreadedComment is a root comment carrying its direct replies, both levels
// ordered by creation time ascending. Replies is always non-nil so it
// marshals as [] rather than null.
type ThreadedComment struct {
	Comment
	Replies []Comment `json:"replies"`
}
