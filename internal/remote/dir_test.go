package remote

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/pathways/internal/domain"
	"github.com/MrSnakeDoc/pathways/internal/logger"
)

type staticConfig struct {
	cfg domain.GitHubConfig
	err error
}

func (s staticConfig) GetGitHubConfig(context.Context) (domain.GitHubConfig, error) {
	return s.cfg, s.err
}

func TestIsAuthenticated(t *testing.T) {
	tests := []struct {
		name string
		src  staticConfig
		want bool
	}{
		{name: "token and repo", src: staticConfig{cfg: domain.GitHubConfig{Token: "t", Repository: "me/r"}}, want: true},
		{name: "token only", src: staticConfig{cfg: domain.GitHubConfig{Token: "t"}}},
		{name: "repo only", src: staticConfig{cfg: domain.GitHubConfig{Repository: "me/r"}}},
		{name: "config error", src: staticConfig{err: errors.New("store down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDirCommitter(t.TempDir(), tt.src, logger.NewNop())
			assert.Equal(t, tt.want, d.IsAuthenticated(context.Background()))
		})
	}
}

func TestCommitFile(t *testing.T) {
	root := t.TempDir()
	src := staticConfig{cfg: domain.GitHubConfig{Token: "t", Repository: "me/notes", Path: "learning/pathways.yaml"}}
	d := NewDirCommitter(root, src, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, d.CommitFile(ctx, "version: 1\n", "first"))
	require.NoError(t, d.CommitFile(ctx, "version: 1\npathways: []\n", "second"))

	data, err := os.ReadFile(filepath.Join(root, "me", "notes", "learning", "pathways.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "version: 1\npathways: []\n", string(data))

	log, err := os.ReadFile(filepath.Join(root, "me", "notes", commitLog))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(log)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"message":"second"`)

	var entry commitEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	_, err = uuid.Parse(entry.ID)
	assert.NoError(t, err)
	assert.Equal(t, "learning/pathways.yaml", entry.Path)
}

func TestCommitFileDefaultPath(t *testing.T) {
	root := t.TempDir()
	d := NewDirCommitter(root, staticConfig{cfg: domain.GitHubConfig{Token: "t", Repository: "r"}}, logger.NewNop())

	require.NoError(t, d.CommitFile(context.Background(), "x", "m"))
	_, err := os.Stat(filepath.Join(root, "r", DefaultPath))
	assert.NoError(t, err)
}

func TestCommitFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     staticConfig
		wantErr error
	}{
		{name: "not authenticated", src: staticConfig{cfg: domain.GitHubConfig{Repository: "r"}}, wantErr: ErrNotAuthenticated},
		{name: "config failure", src: staticConfig{err: errors.New("boom")}, wantErr: ErrRemoteSync},
		{name: "repository escapes root", src: staticConfig{cfg: domain.GitHubConfig{Token: "t", Repository: "../outside"}}, wantErr: ErrRemoteSync},
		{name: "path escapes repository", src: staticConfig{cfg: domain.GitHubConfig{Token: "t", Repository: "r", Path: "../../x"}}, wantErr: ErrRemoteSync},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDirCommitter(t.TempDir(), tt.src, logger.NewNop())
			err := d.CommitFile(context.Background(), "x", "m")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrRemoteSync)
		})
	}
}
