// Package service — authentication business logic.
//
// AuthService is the business logic layer for authentication. It sits between
// the HTTP handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT)
//
// KEY RESPONSIBILITIES:
//   - Orchestrate the GitHub OAuth callback: upsert the user, issue tokens
//   - Encapsulate all auth rules in one place, away from HTTP concerns
//   - Be easily testable with mock dependencies
//
// NOTE ON PASSWORD AUTH:
// This app uses GitHub OAuth as its only identity provider — users never set
// a password directly. The PasswordService (auth/password.go) is included for
// completeness (e.g. if email/password auth is added later) but is not used
// in the main auth flow described here.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/snippetshare/internal/apperror"
	"github.com/sakif/snippetshare/internal/auth"
	"github.com/sakif/snippetshare/internal/model"
	"github.com/sakif/snippetshare/internal/repository"
)

// AuthService handles the authentication business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - tokens     *auth.TokenService         → generate/validate JWTs
//   - passwords  *auth.PasswordService      → bcrypt hashing (for future use)
//   - logger     *slog.Logger               → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go (or main.go) when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult is returned by authentication operations.
// It bundles the user record and the issued JWT together so the caller
// (the HTTP handler) can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback.
//
// After the handler exchanges the GitHub code for a GitHubUser profile, it
// calls this method to:
//
//  1. Upsert the user (create on first sign-in, refresh name/avatar after)
//  2. Generate a JWT access token for the authenticated user
//  3. Return both so the handler can set the HttpOnly cookie and redirect
//
// PROFILE MAPPING ON FIRST SIGN-IN:
//   - username = GitHub login, lowercased (anchors profile URLs)
//   - name     = GitHub display name, falling back to the login
//   - email    = GitHub primary email; GitHub lets users hide it, and a
//     hidden email must not block account creation, so we synthesize
//     "<login>@github.local" instead
//   - bio      = GitHub profile bio, or empty
//
// REPEAT SIGN-IN:
// Name and avatar refresh from GitHub only when GitHub actually sent a
// value. A user who clears their display name or whose avatar is missing
// from the profile response keeps the stored values — the login fallback
// applies at account creation, never on update.
//
// FAIL CLOSED:
// If the upsert fails, this returns an error and no token is issued. An
// identity that couldn't be synced to a local profile must not proceed with
// a stale or absent record.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	name := ghUser.Name
	avatar := ghUser.AvatarURL

	existing, err := s.users.GetUserByGitHubID(ctx, ghUser.ID)
	switch {
	case err == nil:
		// Known account — absent provider fields keep their stored values.
		if name == "" {
			name = existing.Name
		}
		if avatar == "" {
			avatar = existing.AvatarURL
		}
	case errors.Is(err, apperror.ErrNotFound):
		// First sign-in — a missing display name falls back to the login.
		if name == "" {
			name = ghUser.Login
		}
	default:
		return nil, fmt.Errorf("service/auth: looking up user (githubID=%d): %w", ghUser.ID, err)
	}

	email := ghUser.Email
	if email == "" {
		email = fmt.Sprintf("%s@github.local", strings.ToLower(ghUser.Login))
	}

	// The repository's Upsert fills in ID and timestamps, and on a repeat
	// sign-in replaces everything except name/avatar with the stored values.
	user := &model.User{
		GitHubID:  ghUser.ID,
		Username:  strings.ToLower(ghUser.Login),
		Name:      name,
		Email:     email,
		AvatarURL: avatar,
		Bio:       ghUser.Bio,
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	// Issue a JWT access token containing the user's internal ID.
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{
		User:  user,
		Token: token,
	}, nil
}

// GetUserByID returns the user for the given internal ID.
//
// Used by the /api/me handler to look up the full user record after the
// middleware validates the JWT and extracts the userID from the token's
// Subject claim. A missing row here does NOT invalidate the token — the
// session authenticated, it just lacks a local profile. Callers surface
// the not-found as-is.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ValidateToken validates a JWT string and returns the userID it encodes.
//
// This is a thin delegation to TokenService.Validate. Having it on
// AuthService means callers only need to import the service package, not
// the auth package directly.
//
// Returns an error if the token is expired, tampered, or otherwise invalid.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}
