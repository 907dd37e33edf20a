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

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` verifies at compile time that *Y implements X.
// If a method is missing, the compiler errors here instead of at some distant
// call site. This is a Go best practice for any interface implementation.
var _ repository.PostRepository = (*DB)(nil)

// CreatePost inserts a new post.
//
// ID GENERATION WITH xid:
// xid generates 20-char, URL-safe IDs that sort by creation time (they start
// with a timestamp). We take a pointer receiver argument so the caller's
// struct comes back with the generated ID and timestamps filled in.
//
// The ? placeholders are PARAMETERIZED QUERIES — never build SQL with
// fmt.Sprintf, that's how SQL injection happens. The driver escapes values.
func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, title, description, code, language, source, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.AuthorID,
		post.Title,
		post.Description,
		post.Code,
		post.Language,
		string(post.Source),
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// postColumns is the joined projection shared by GetPostByID and ListPosts.
// The LEFT JOIN carries the denormalized author summary in the same query —
// one round trip, no N+1 lookups per post.
const postColumns = `
	p.id, p.author_id, p.title, p.description, p.code, p.language, p.source,
	p.created_at, p.updated_at,
	u.username, u.name, u.avatar_url, u.bio`

// scanPost reads one joined post row into a model.Post with its author
// summary attached. Works for both sql.Row and sql.Rows via the scanner
// interface.
func scanPost(scan func(dest ...any) error) (*model.Post, error) {
	var (
		p      model.Post
		author model.AuthorSummary
	)
	// Author columns are nullable through the LEFT JOIN (a post whose user
	// row is gone still lists). NullString keeps Scan from erroring on NULL.
	var username, name, avatar, bio sql.NullString

	err := scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Description, &p.Code, &p.Language, &p.Source,
		&p.CreatedAt, &p.UpdatedAt,
		&username, &name, &avatar, &bio,
	)
	if err != nil {
		return nil, err
	}

	if username.Valid {
		author.ID = p.AuthorID
		author.Username = username.String
		author.Name = name.String
		author.AvatarURL = avatar.String
		author.Bio = bio.String
		p.Author = &author
	}

	return &p, nil
}

// GetPostByID retrieves a single post with its author summary (bio included —
// the post detail page shows it).
func (db *DB) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts p
		 LEFT JOIN users u ON u.id = p.author_id
		 WHERE p.id = ?`,
		id,
	)

	p, err := scanPost(row.Scan)
	if err != nil {
		// sql.ErrNoRows is a sentinel — "no matching row" is a domain
		// not-found, not a database failure.
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	return p, nil
}

// ListPosts returns one page of posts matching the filter, newest first, and
// the total count of matches.
//
// WHY TWO QUERIES (SELECT + COUNT)?
// The page only holds up to `limit` rows, but the pagination envelope needs
// the total across all pages. A window function could fold both into one
// query; two simple queries reading the same index are clearer and plenty
// fast at this scale.
func (db *DB) ListPosts(ctx context.Context, filter repository.PostFilter, opts repository.ListOptions) ([]model.Post, int, error) {
	// Build the WHERE clause from the supplied equality filters.
	// No filter supplied ⇒ no constraint.
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Language != "" {
		where += ` AND p.language = ?`
		args = append(args, filter.Language)
	}
	if filter.Source != "" {
		where += ` AND p.source = ?`
		args = append(args, string(filter.Source))
	}
	if filter.AuthorID != "" {
		where += ` AND p.author_id = ?`
		args = append(args, filter.AuthorID)
	}

	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts p`+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting posts: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts p
		 LEFT JOIN users u ON u.id = p.author_id`+where+`
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	// CRITICAL: always close rows — they hold a pool connection.
	defer rows.Close()

	posts := make([]model.Post, 0, limit)
	for rows.Next() {
		p, err := scanPost(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		// List responses carry the byline, not the bio.
		if p.Author != nil {
			p.Author.Bio = ""
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, total, nil
}

// DeletePost removes a post by ID.
// RowsAffected() == 0 means the WHERE matched nothing → not found.
// Ownership is checked in the service layer before this is called.
func (db *DB) DeletePost(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}
