package model

import "time"

// CodeSource describes where the shared code came from.
//
// WHY A NAMED STRING TYPE?
// A plain string would work, but a named type documents intent and gives the
// valid values a home. The zero value ("") is not valid — callers that omit
// the source get SourceOther at validation time.
type CodeSource string

const (
	SourceAI        CodeSource = "ai"        // generated by an AI assistant
	SourceColleague CodeSource = "colleague" // received from a colleague
	SourcePersonal  CodeSource = "personal"  // the author's own code
	SourceOther     CodeSource = "other"     // default when unspecified
)

// Valid reports whether s is one of the four recognised source values.
func (s CodeSource) Valid() bool {
	switch s {
	case SourceAI, SourceColleague, SourcePersonal, SourceOther:
		return true
	}
	return false
}

// Post is a shared code snippet with its discussion metadata.
//
// Author is the denormalized summary used in responses; AuthorID is the raw
// reference used for ownership checks. Both come back from the repository —
// the list and get queries join the users table so handlers never do a second
// lookup per post.
type Post struct {
	ID          string         `json:"id"          db:"id"`
	AuthorID    string         `json:"authorId"    db:"author_id"`
	Author      *AuthorSummary `json:"author,omitempty"`
	Title       string         `json:"title"       db:"title"`       // required, trimmed, ≤200 chars
	Description string         `json:"description" db:"description"` // optional, ≤2000 chars
	Code        string         `json:"code"        db:"code"`        // required, ≤50000 chars
	Language    string         `json:"language"    db:"language"`    // lowercased at write time
	Source      CodeSource     `json:"source"      db:"source"`
	CreatedAt   time.Time      `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt"   db:"updated_at"`
}

// Pagination is the envelope returned alongside every paginated list.
// TotalPages = ceil(Total/Limit), computed in the service layer.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}
