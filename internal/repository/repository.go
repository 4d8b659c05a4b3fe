package repository

import (
	"context"
	"time"

	"github.com/sakif/leetpush/internal/model"
)

// Persisted credential keys. The names match the extension's storage keys so
// an exported chrome.storage dump maps one to one.
const (
	KeyJWT          = "jwt"
	KeyUsername     = "username"
	KeyGitHubToken  = "github_token"
	KeyTokenType    = "token_type"
	KeySelectedRepo = "selected_repo"
	KeyLastPush     = "last_push"
	KeyLastLogin    = "last_login"
)

// CredentialKeys lists every key owned by the credential store.
var CredentialKeys = []string{
	KeyJWT, KeyUsername, KeyGitHubToken, KeyTokenType,
	KeySelectedRepo, KeyLastPush, KeyLastLogin,
}

type ListOptions struct {
	Limit  int
	Offset int
}

// CredentialRepository is the process-wide credential store. Each method is
// one atomic update; readers never observe a half-applied login.
type CredentialRepository interface {
	Load(ctx context.Context) (*model.Credential, error)
	// SaveLogin replaces the whole record after a successful authentication.
	SaveLogin(ctx context.Context, cred *model.Credential) error
	SetSelectedRepository(ctx context.Context, repo string) error
	SetLastPush(ctx context.Context, at time.Time) error
	// ApplyProfile copies the non-empty fields of a backend profile.
	ApplyProfile(ctx context.Context, p *model.Profile) error
	Clear(ctx context.Context) error
}

type HistoryRepository interface {
	Append(ctx context.Context, entry *model.HistoryEntry) error
	GetByID(ctx context.Context, id string) (*model.HistoryEntry, error)
	List(ctx context.Context, opts ListOptions) ([]model.HistoryEntry, error)
}
