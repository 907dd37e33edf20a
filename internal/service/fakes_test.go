package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/repository"
)

// =========================================================================
// FAKES
// =========================================================================
//
// These are in-memory implementations of the repository interfaces.
// Using hand-written fakes (not a mock framework) keeps tests dependency-free
// and easy to read — you can see exactly what each fake does. They mirror the
// SQLite implementation's observable behavior: ID assignment, ordering, and
// the upsert's update-name-and-avatar-only rule.

// discardLogger silences service logging in tests.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo implements repository.UserRepository.
type fakeUserRepo struct {
	byID   map[string]*model.User
	byGHID map[int64]*model.User
	nextID int
	// set to a non-nil error to simulate a database failure
	upsertErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:   make(map[string]*model.User),
		byGHID: make(map[int64]*model.User),
		nextID: 1,
	}
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user *model.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if existing, ok := f.byGHID[user.GitHubID]; ok {
		// UPDATE path: refresh only name and avatar, keep everything else.
		existing.Name = user.Name
		existing.AvatarURL = user.AvatarURL
		existing.UpdatedAt = time.Now()
		*user = *existing
		return nil
	}
	// INSERT path: assign an ID, lowercase the username, store a copy.
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	user.Username = strings.ToLower(user.Username)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.byID[user.ID] = &copied
	f.byGHID[user.GitHubID] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	username = strings.ToLower(username)
	for _, u := range f.byID {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeUserRepo) GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byGHID[githubID]
	if !ok {
		return nil, apperror.NotFound("user", fmt.Sprintf("github:%d", githubID))
	}
	copied := *u
	return &copied, nil
}

// addUser seeds a user directly, bypassing the upsert path.
func (f *fakeUserRepo) addUser(u *model.User) *model.User {
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", f.nextID)
		f.nextID++
	}
	u.Username = strings.ToLower(u.Username)
	copied := *u
	f.byID[u.ID] = &copied
	if u.GitHubID != 0 {
		f.byGHID[u.GitHubID] = &copied
	}
	return u
}

// fakePostRepo implements repository.PostRepository.
// Posts are stored in insertion order; listings return newest first, matching
// the SQLite ORDER BY created_at DESC.
type fakePostRepo struct {
	posts  []*model.Post
	nextID int
	// error injection
	createErr error
	deleteErr error
	listErr   error
}

var _ repository.PostRepository = (*fakePostRepo)(nil)

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{nextID: 1}
}

func (f *fakePostRepo) CreatePost(ctx context.Context, post *model.Post) error {
	if f.createErr != nil {
		return f.createErr
	}
	post.ID = fmt.Sprintf("post-%d", f.nextID)
	f.nextID++
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	copied := *post
	f.posts = append(f.posts, &copied)
	return nil
}

func (f *fakePostRepo) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	for _, p := range f.posts {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("post", id)
}

func (f *fakePostRepo) ListPosts(ctx context.Context, filter repository.PostFilter, opts repository.ListOptions) ([]model.Post, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	matched := []model.Post{}
	// Walk backwards for newest-first.
	for i := len(f.posts) - 1; i >= 0; i-- {
		p := f.posts[i]
		if filter.Language != "" && p.Language != filter.Language {
			continue
		}
		if filter.Source != "" && p.Source != filter.Source {
			continue
		}
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		matched = append(matched, *p)
	}
	total := len(matched)

	offset := opts.Offset
	if offset > total {
		offset = total
	}
	end := offset + opts.Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (f *fakePostRepo) DeletePost(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, p := range f.posts {
		if p.ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("post", id)
}

// fakeCommentRepo implements repository.CommentRepository.
// Comments are stored in insertion order; listings return oldest first,
// matching the SQLite ORDER BY created_at ASC.
type fakeCommentRepo struct {
	comments []*model.Comment
	nextID   int
	// error injection
	createErr error
	deleteErr error
	// records the postID of the last bulk delete, for ordering assertions
	deletedPostID string
}

var _ repository.CommentRepository = (*fakeCommentRepo)(nil)

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{nextID: 1}
}

func (f *fakeCommentRepo) CreateComment(ctx context.Context, comment *model.Comment) error {
	if f.createErr != nil {
		return f.createErr
	}
	comment.ID = fmt.Sprintf("comment-%d", f.nextID)
	f.nextID++
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	copied := *comment
	f.comments = append(f.comments, &copied)
	return nil
}

func (f *fakeCommentRepo) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	for _, c := range f.comments {
		if c.ID == id {
			copied := *c
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("comment", id)
}

func (f *fakeCommentRepo) ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	out := []model.Comment{}
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) DeleteCommentsByPost(ctx context.Context, postID string) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	f.deletedPostID = postID
	kept := f.comments[:0]
	var deleted int64
	for _, c := range f.comments {
		if c.PostID == postID {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	f.comments = kept
	return deleted, nil
}
