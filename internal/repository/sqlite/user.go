package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Upsert inserts or updates a user based on their GitHub ID.
//
// FIRST SIGN-IN vs REPEAT SIGN-IN:
// On first sign-in we INSERT the full profile (username, email, avatar, bio).
// On every later sign-in we refresh ONLY name and avatar_url from GitHub.
// Username, email, and bio keep the values captured at creation — the user
// may have customised their bio here, and the username anchors profile URLs.
//
// WHY LOOK UP FIRST INSTEAD OF "INSERT OR REPLACE"?
// INSERT OR REPLACE would delete the old row and insert a new one, which
// would churn the internal ID and sever every post and comment pointing at
// it. Selecting the existing ID first keeps the identity stable.
func (db *DB) Upsert(ctx context.Context, user *model.User) error {
	var existingID string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID)

	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", user.GitHubID, err)
	}

	if existingID != "" {
		// Repeat sign-in — refresh display name and avatar, nothing else.
		user.ID = existingID
		user.UpdatedAt = time.Now()
		_, err = db.conn.ExecContext(ctx,
			`UPDATE users SET name = ?, avatar_url = ?, updated_at = ?
			 WHERE id = ?`,
			user.Name,
			user.AvatarURL,
			user.UpdatedAt,
			user.ID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}

		// Reload the preserved fields so the caller sees the canonical record,
		// not whatever GitHub sent this time.
		stored, err := db.GetUserByID(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("sqlite: reloading user %s after update: %w", user.ID, err)
		}
		*user = *stored
	} else {
		// First sign-in — generate an ID and INSERT the full profile.
		now := time.Now()
		user.ID = xid.New().String()
		user.Username = strings.ToLower(user.Username)
		user.CreatedAt = now
		user.UpdatedAt = now

		_, err = db.conn.ExecContext(ctx,
			`INSERT INTO users (id, github_id, username, name, email, avatar_url, bio, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID,
			user.GitHubID,
			user.Username,
			user.Name,
			user.Email,
			user.AvatarURL,
			user.Bio,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", user.GitHubID, err)
		}
	}

	return nil
}

const userColumns = `id, github_id, username, name, email, avatar_url, bio, created_at, updated_at`

// scanUser reads one user row. Shared by the three lookup methods so the
// column order lives in exactly one place.
func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.GitHubID,
		&u.Username,
		&u.Name,
		&u.Email,
		&u.AvatarURL,
		&u.Bio,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID retrieves a user by their internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by username, case-insensitively.
// Usernames are stored lowercased, so we fold the input rather than the column
// (folding the column would defeat the unique index).
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user by username %q: %w", username, err)
	}
	return u, nil
}

// GetUserByGitHubID retrieves a user by their external GitHub account ID.
func (db *DB) GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_id = ?`, githubID)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprintf("github:%d", githubID))
		}
		return nil, fmt.Errorf("sqlite: getting user by github_id %d: %w", githubID, err)
	}
	return u, nil
}
