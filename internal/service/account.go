// Package service holds the account and history operations shared by the
// local HTTP API and the CLI.
//
// Handlers and commands parse input and render output; everything that
// touches the credential store or the backend goes through here, so both
// front ends apply the same rules.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/leetpush/internal/apperror"
	"github.com/sakif/leetpush/internal/auth"
	"github.com/sakif/leetpush/internal/github"
	"github.com/sakif/leetpush/internal/model"
	"github.com/sakif/leetpush/internal/repository"
)

// AccountBackend is the part of the backend API used for account state.
type AccountBackend interface {
	LoginCallback(ctx context.Context, code string) (*model.LoginResult, error)
	Me(ctx context.Context, token string) (*model.Profile, error)
	Stats(ctx context.Context, token string) (*model.Stats, error)
	Streak(ctx context.Context, token string) (*model.Streak, error)
	SaveRepository(ctx context.Context, token, repo string) error
}

// RepoLister lists push target candidates.
type RepoLister interface {
	ListRepos(ctx context.Context, token, username string) ([]model.Repository, error)
}

// Session is the credential summary shown by status views. It never carries
// tokens.
type Session struct {
	LoggedIn           bool       `json:"loggedIn"`
	Expired            bool       `json:"expired"`
	Username           string     `json:"username,omitempty"`
	SelectedRepository string     `json:"selectedRepository,omitempty"`
	LastPushAt         *time.Time `json:"lastPushAt,omitempty"`
	LastLoginAt        *time.Time `json:"lastLoginAt,omitempty"`
}

// AccountService handles login, logout, repository selection and the
// read-only account queries.
type AccountService struct {
	backend AccountBackend
	repos   RepoLister
	creds   repository.CredentialRepository
	logger  *slog.Logger
	now     func() time.Time
}

func NewAccountService(
	backend AccountBackend,
	repos RepoLister,
	creds repository.CredentialRepository,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		backend: backend,
		repos:   repos,
		creds:   creds,
		logger:  logger,
		now:     time.Now,
	}
}

// Login exchanges an OAuth code through the backend and replaces the stored
// credential. The previously selected repository is recovered from the
// backend profile when it has one.
func (s *AccountService) Login(ctx context.Context, code string) (*Session, error) {
	res, err := s.backend.LoginCallback(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("service/account: login: %w", err)
	}

	cred := &model.Credential{
		BearerToken: res.Token,
		Username:    res.Username,
		TokenType:   "Bearer",
		LastPushAt:  res.LastPush.Ptr(),
		LastLoginAt: res.LastLogin.Ptr(),
	}
	if cred.LastLoginAt == nil {
		now := s.now()
		cred.LastLoginAt = &now
	}
	if err := s.creds.SaveLogin(ctx, cred); err != nil {
		return nil, fmt.Errorf("service/account: saving login: %w", err)
	}
	s.logger.Info("logged in", slog.String("username", res.Username))

	if profile, err := s.backend.Me(ctx, res.Token); err != nil {
		s.logger.Warn("profile refresh after login failed", slog.String("error", err.Error()))
	} else if err := s.creds.ApplyProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("service/account: applying profile: %w", err)
	}

	return s.session(ctx, false)
}

// Logout clears every stored credential.
func (s *AccountService) Logout(ctx context.Context) error {
	if err := s.creds.Clear(ctx); err != nil {
		return fmt.Errorf("service/account: logout: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}

// Session reports the stored session after reconciling it with GET /me.
// Backend values win where present. A rejected token marks the session as
// expired but keeps it stored until the user logs out or in again.
func (s *AccountService) Session(ctx context.Context) (*Session, error) {
	cred, err := s.creds.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/account: loading credentials: %w", err)
	}
	if !cred.Authenticated() {
		return &Session{}, nil
	}

	profile, err := s.backend.Me(ctx, cred.BearerToken)
	switch {
	case auth.IsAuthError(err):
		return s.session(ctx, true)
	case err != nil:
		s.logger.Warn("session refresh failed, showing stored state", slog.String("error", err.Error()))
	default:
		if err := s.creds.ApplyProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("service/account: applying profile: %w", err)
		}
	}
	return s.session(ctx, false)
}

func (s *AccountService) session(ctx context.Context, expired bool) (*Session, error) {
	cred, err := s.creds.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/account: loading credentials: %w", err)
	}
	return &Session{
		LoggedIn:           cred.Authenticated(),
		Expired:            expired,
		Username:           cred.Username,
		SelectedRepository: cred.SelectedRepository,
		LastPushAt:         cred.LastPushAt,
		LastLoginAt:        cred.LastLoginAt,
	}, nil
}

// SelectRepository confirms repo ("owner/name") with the backend and only
// then stores it locally.
func (s *AccountService) SelectRepository(ctx context.Context, repo string) error {
	repo = strings.TrimSpace(repo)
	if !github.ValidFullName(repo) {
		return apperror.ValidationFailed("repository", "repository must look like owner/name")
	}

	token, err := s.token(ctx)
	if err != nil {
		return err
	}
	if err := s.backend.SaveRepository(ctx, token, repo); err != nil {
		return fmt.Errorf("service/account: saving repository: %w", err)
	}
	if err := s.creds.SetSelectedRepository(ctx, repo); err != nil {
		return fmt.Errorf("service/account: storing repository: %w", err)
	}

	s.logger.Info("repository selected", slog.String("repository", repo))
	return nil
}

// SelectedRepositoryURL returns the web URL of the push target.
func (s *AccountService) SelectedRepositoryURL(ctx context.Context) (string, error) {
	cred, err := s.creds.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("service/account: loading credentials: %w", err)
	}
	if cred.SelectedRepository == "" {
		return "", apperror.NoRepositorySelected()
	}
	return github.RepositoryURL(cred.SelectedRepository), nil
}

// Repositories lists the user's GitHub repositories.
func (s *AccountService) Repositories(ctx context.Context) ([]model.Repository, error) {
	cred, err := s.creds.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/account: loading credentials: %w", err)
	}
	repos, err := s.repos.ListRepos(ctx, cred.GitHubToken, cred.Username)
	if err != nil {
		return nil, fmt.Errorf("service/account: listing repositories: %w", err)
	}
	return repos, nil
}

func (s *AccountService) Stats(ctx context.Context) (*model.Stats, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.backend.Stats(ctx, token)
}

func (s *AccountService) Streak(ctx context.Context) (*model.Streak, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	return s.backend.Streak(ctx, token)
}

func (s *AccountService) token(ctx context.Context) (string, error) {
	cred, err := s.creds.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("service/account: loading credentials: %w", err)
	}
	if err := auth.CheckToken(cred.BearerToken, s.now()); err != nil {
		return "", err
	}
	return cred.BearerToken, nil
}
