// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// We use GitHub OAuth as the identity provider, so the primary external
// identifier is the GitHub user ID (an integer). We still generate our own
// internal string ID (xid) for consistency with Post and Comment and to avoid
// tying our primary keys to a third-party's numbering scheme.
//
// WHY GitHubID int64?
// GitHub user IDs are integers (e.g. 1234567). Using int64 avoids overflow
// for large GitHub account numbers. The UNIQUE constraint on github_id in the
// DB ensures one GitHub account maps to exactly one app account.
//
// WHY Username SEPARATE FROM Name?
// Username is the stable, lowercased GitHub login used in profile URLs
// (/api/users/alice). Name is the display name the user set on GitHub, which
// can be empty, contain spaces, and change between sign-ins. We only refresh
// Name and AvatarURL on repeat sign-ins — Username, Email, and Bio keep the
// values captured at account creation.
type User struct {
	ID        string    `json:"id"        db:"id"`
	GitHubID  int64     `json:"githubId"  db:"github_id"`  // GitHub's numeric user ID
	Username  string    `json:"username"  db:"username"`   // GitHub login, lowercased, unique
	Name      string    `json:"name"      db:"name"`       // Display name (may equal Username)
	Email     string    `json:"email"     db:"email"`      // Unique; synthesized if GitHub hides it
	AvatarURL string    `json:"avatar"    db:"avatar_url"` // Profile picture URL
	Bio       string    `json:"bio"       db:"bio"`        // Free text, at most 500 characters
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// AuthorSummary is the denormalized slice of a User attached to posts and
// comments. Responses carry this instead of a bare author ID so clients never
// need a second request to render a byline.
//
// Bio is only populated on post detail responses; list endpoints leave it
// empty to keep the feed payload small.
type AuthorSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar"`
	Bio       string `json:"bio,omitempty"`
}

// Summary converts a full User to the denormalized author shape.
func (u *User) Summary() *AuthorSummary {
	return &AuthorSummary{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}
