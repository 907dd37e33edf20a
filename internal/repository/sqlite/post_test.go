package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/repository"
)

// createTestPost inserts a post owned by authorID and fails the test on error.
func createTestPost(t *testing.T, db *DB, authorID, title, language string, source model.CodeSource) *model.Post {
	t.Helper()
	p := &model.Post{
		AuthorID: authorID,
		Title:    title,
		Code:     "package main",
		Language: language,
		Source:   source,
	}
	if err := db.CreatePost(context.Background(), p); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return p
}

func TestCreatePost_SetsIDAndTimestamps(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, 1, "alice")

	p := createTestPost(t, db, author.ID, "binary search", "go", model.SourcePersonal)

	if p.ID == "" {
		t.Error("CreatePost() did not set post.ID")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("CreatePost() did not set timestamps")
	}
}

func TestGetPostByID_IncludesAuthorSummary(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, 1, "alice")
	author.Bio = "writes Go"
	// Bio comes in through the sign-in path; set it directly for this test.
	if _, err := db.conn.Exec(`UPDATE users SET bio = ? WHERE id = ?`, author.Bio, author.ID); err != nil {
		t.Fatalf("setting bio: %v", err)
	}

	created := createTestPost(t, db, author.ID, "binary search", "go", model.SourcePersonal)

	got, err := db.GetPostByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetPostByID() error = %v", err)
	}

	if got.Title != "binary search" {
		t.Errorf("Title = %q, want %q", got.Title, "binary search")
	}
	if got.Author == nil {
		t.Fatal("GetPostByID() Author = nil, want joined author summary")
	}
	if got.Author.Username != "alice" {
		t.Errorf("Author.Username = %q, want %q", got.Author.Username, "alice")
	}
	// The detail view carries the author's bio.
	if got.Author.Bio != "writes Go" {
		t.Errorf("Author.Bio = %q, want %q", got.Author.Bio, "writes Go")
	}
}

func TestGetPostByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetPostByID(context.Background(), "no-such-post")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetPostByID() error = %v, want ErrNotFound", err)
	}
}

func TestListPosts_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, 1, "alice")

	first := createTestPost(t, db, author.ID, "first", "go", model.SourcePersonal)
	second := createTestPost(t, db, author.ID, "second", "go", model.SourcePersonal)
	third := createTestPost(t, db, author.ID, "third", "go", model.SourcePersonal)

	posts, total, err := db.ListPosts(context.Background(), repository.PostFilter{}, repository.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}

	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(posts) != 3 {
		t.Fatalf("len(posts) = %d, want 3", len(posts))
	}
	wantOrder := []string{third.ID, second.ID, first.ID}
	for i, want := range wantOrder {
		if posts[i].ID != want {
			t.Errorf("posts[%d].ID = %q, want %q (newest first)", i, posts[i].ID, want)
		}
	}
	// List rows carry the byline without the bio.
	if posts[0].Author == nil {
		t.Fatal("posts[0].Author = nil, want author summary")
	}
	if posts[0].Author.Bio != "" {
		t.Errorf("posts[0].Author.Bio = %q, want empty in list view", posts[0].Author.Bio)
	}
}

func TestListPosts_Filters(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, 1, "alice")
	bob := createTestUser(t, db, 2, "bob")

	createTestPost(t, db, alice.ID, "go post", "go", model.SourcePersonal)
	createTestPost(t, db, alice.ID, "python post", "python", model.SourceAI)
	createTestPost(t, db, bob.ID, "another go post", "go", model.SourceAI)

	tests := []struct {
		name       string
		filter     repository.PostFilter
		wantTotal  int
		wantTitles []string
	}{
		{
			name:       "by language",
			filter:     repository.PostFilter{Language: "go"},
			wantTotal:  2,
			wantTitles: []string{"another go post", "go post"},
		},
		{
			name:       "by source",
			filter:     repository.PostFilter{Source: model.SourceAI},
			wantTotal:  2,
			wantTitles: []string{"another go post", "python post"},
		},
		{
			name:       "by author",
			filter:     repository.PostFilter{AuthorID: alice.ID},
			wantTotal:  2,
			wantTitles: []string{"python post", "go post"},
		},
		{
			name:       "combined language and author",
			filter:     repository.PostFilter{Language: "go", AuthorID: bob.ID},
			wantTotal:  1,
			wantTitles: []string{"another go post"},
		},
		{
			name:      "no matches",
			filter:    repository.PostFilter{Language: "rust"},
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, total, err := db.ListPosts(context.Background(), tt.filter, repository.ListOptions{Limit: 10})
			if err != nil {
				t.Fatalf("ListPosts() error = %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if len(posts) != len(tt.wantTitles) {
				t.Fatalf("len(posts) = %d, want %d", len(posts), len(tt.wantTitles))
			}
			for i, want := range tt.wantTitles {
				if posts[i].Title != want {
					t.Errorf("posts[%d].Title = %q, want %q", i, posts[i].Title, want)
				}
			}
		})
	}
}

func TestListPosts_Pagination(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, 1, "alice")

	for i := 0; i < 5; i++ {
		createTestPost(t, db, author.ID, "post", "go", model.SourceOther)
	}

	// Page of 2, skipping the first 4 — one row left over.
	posts, total, err := db.ListPosts(context.Background(), repository.PostFilter{}, repository.ListOptions{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5 (total counts all pages)", total)
	}
	if len(posts) != 1 {
		t.Errorf("len(posts) = %d, want 1", len(posts))
	}
}

func TestDeletePost(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, 1, "alice")
	p := createTestPost(t, db, author.ID, "to delete", "go", model.SourceOther)

	if err := db.DeletePost(context.Background(), p.ID); err != nil {
		t.Fatalf("DeletePost() error = %v", err)
	}

	_, err := db.GetPostByID(context.Background(), p.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetPostByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDeletePost_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.DeletePost(context.Background(), "no-such-post")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeletePost() error = %v, want ErrNotFound", err)
	}
}
