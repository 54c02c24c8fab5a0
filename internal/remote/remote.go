// Package remote is the remote-sync collaborator: it receives rendered
// pathway documents and commits them to the configured repository.
package remote

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/pathways/internal/domain"
)

var (
	// ErrRemoteSync wraps every failure coming out of a Syncer.
	ErrRemoteSync = errors.New("remote sync failed")

	// ErrNotAuthenticated is returned by CommitFile without credentials.
	ErrNotAuthenticated = errors.New("remote not authenticated")
)

// Syncer commits files to a remote repository.
type Syncer interface {
	IsAuthenticated(ctx context.Context) bool
	GetGitHubConfig(ctx context.Context) (domain.GitHubConfig, error)
	CommitFile(ctx context.Context, content, message string) error
}

// ConfigSource supplies the stored remote configuration.
type ConfigSource interface {
	GetGitHubConfig(ctx context.Context) (domain.GitHubConfig, error)
}
