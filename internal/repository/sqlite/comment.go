package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/repository"
)

// compile-time check that *DB implements repository.CommentRepository
var _ repository.CommentRepository = (*DB)(nil)

// CreateComment inserts a new comment. Comments are immutable after this —
// there is no update method on the repository at all.
//
// LineReference and ParentCommentID are both optional; we store SQL NULL
// rather than zero values so "no line" and "root comment" are unambiguous in
// queries (the threading query filters on parent_comment_id IS NULL).
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	var lineRef any
	if comment.LineReference != nil {
		lineRef = *comment.LineReference
	}
	var parentID any
	if comment.ParentCommentID != "" {
		parentID = comment.ParentCommentID
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, author_id, content, line_reference, parent_comment_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.PostID,
		comment.AuthorID,
		comment.Content,
		lineRef,
		parentID,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	return nil
}

const commentColumns = `
	c.id, c.post_id, c.author_id, c.content, c.line_reference, c.parent_comment_id,
	c.created_at, c.updated_at,
	u.username, u.name, u.avatar_url`

// scanComment reads one joined comment row, translating the nullable columns
// back into the model's pointer/empty-string representations.
func scanComment(scan func(dest ...any) error) (*model.Comment, error) {
	var (
		c        model.Comment
		lineRef  sql.NullInt64
		parentID sql.NullString
		username sql.NullString
		name     sql.NullString
		avatar   sql.NullString
	)

	err := scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.Content, &lineRef, &parentID,
		&c.CreatedAt, &c.UpdatedAt,
		&username, &name, &avatar,
	)
	if err != nil {
		return nil, err
	}

	if lineRef.Valid {
		n := int(lineRef.Int64)
		c.LineReference = &n
	}
	if parentID.Valid {
		c.ParentCommentID = parentID.String
	}
	if username.Valid {
		c.Author = &model.AuthorSummary{
			ID:        c.AuthorID,
			Username:  username.String,
			Name:      name.String,
			AvatarURL: avatar.String,
		}
	}

	return &c, nil
}

// GetCommentByID retrieves a single comment. Used to verify a parent comment
// exists before a reply is created.
func (db *DB) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+commentColumns+`
		 FROM comments c
		 LEFT JOIN users u ON u.id = c.author_id
		 WHERE c.id = ?`,
		id,
	)

	c, err := scanComment(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	return c, nil
}

// ListCommentsByPost returns every comment on the post, oldest first, with
// author summaries attached. Threading happens in the service layer — this is
// deliberately a single flat fetch so the grouping logic is testable without
// a database.
func (db *DB) ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+commentColumns+`
		 FROM comments c
		 LEFT JOIN users u ON u.id = c.author_id
		 WHERE c.post_id = ?
		 ORDER BY c.created_at ASC, c.id ASC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %s: %w", postID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}

// DeleteCommentsByPost removes every comment on the post and reports how many
// went. Zero matches is a no-op, not an error — compound post deletion must be
// idempotent under concurrent requests.
func (db *DB) DeleteCommentsByPost(ctx context.Context, postID string) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM comments WHERE post_id = ?`, postID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting comments for post %s: %w", postID, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return deleted, nil
}
