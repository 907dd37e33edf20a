package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sakif/snippetshare/internal/auth"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/repository/sqlite"
	"github.com/sakif/snippetshare/internal/service"
)

// testEnv wires real services over an in-memory SQLite database.
//
// Handler tests go through the full stack below the HTTP layer on purpose:
// the interesting failures here are wiring mistakes (wrong status code, wrong
// JSON shape, middleware not applied), and those only show up with the real
// pieces connected.
type testEnv struct {
	db       *sqlite.DB
	tokens   *auth.TokenService
	posts    *PostHandler
	comments *CommentHandler
	users    *UserHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	postSvc := service.NewPostService(db, db, db, logger)
	commentSvc := service.NewCommentService(db, db, db, logger)
	userSvc := service.NewUserService(db, db, logger)

	return &testEnv{
		db:       db,
		tokens:   tokens,
		posts:    NewPostHandler(postSvc, logger),
		comments: NewCommentHandler(commentSvc, logger),
		users:    NewUserHandler(userSvc, logger),
	}
}

// signIn creates a user and returns it with a valid session cookie.
func (e *testEnv) signIn(t *testing.T, githubID int64, login string) (*model.User, *http.Cookie) {
	t.Helper()

	u := &model.User{
		GitHubID:  githubID,
		Username:  login,
		Name:      login,
		Email:     login + "@example.com",
		AvatarURL: "https://avatars.example.com/" + login,
	}
	require.NoError(t, e.db.Upsert(context.Background(), u))

	token, err := e.tokens.Generate(u.ID)
	require.NoError(t, err)

	return u, &http.Cookie{Name: "token", Value: token}
}

// requireAuth wraps a handler func in the same auth middleware the server
// mounts on protected routes.
func (e *testEnv) requireAuth(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(e.tokens)(h)
}

// seedPost creates a post through the repository, bypassing HTTP.
func (e *testEnv) seedPost(t *testing.T, authorID, title string) *model.Post {
	t.Helper()
	p := &model.Post{
		AuthorID: authorID,
		Title:    title,
		Code:     "package main",
		Language: "go",
		Source:   model.SourceOther,
	}
	require.NoError(t, e.db.CreatePost(context.Background(), p))
	return p
}
