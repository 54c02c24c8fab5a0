package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/pathways/internal/domain"
	"github.com/MrSnakeDoc/pathways/internal/logger"
	"github.com/MrSnakeDoc/pathways/internal/utils"
)

// DefaultPath is used when the config carries no path.
const DefaultPath = "pathways.yaml"

// commitLog lists every commit made into a repository directory.
const commitLog = ".pathways-commits.jsonl"

var _ Syncer = (*DirCommitter)(nil)

// DirCommitter treats <root>/<repository> as the repository checkout and
// writes each commit to <path> inside it.
type DirCommitter struct {
	root   string
	config ConfigSource
	log    logger.Logger
	now    func() time.Time
}

func NewDirCommitter(root string, config ConfigSource, log logger.Logger) *DirCommitter {
	return &DirCommitter{root: root, config: config, log: log.Named("remote"), now: time.Now}
}

// IsAuthenticated holds when the stored config has a token and a repository.
func (d *DirCommitter) IsAuthenticated(ctx context.Context) bool {
	cfg, err := d.config.GetGitHubConfig(ctx)
	if err != nil {
		d.log.Debug("config unavailable", logger.Error(err))
		return false
	}
	return cfg.Token != "" && cfg.Repository != ""
}

func (d *DirCommitter) GetGitHubConfig(ctx context.Context) (domain.GitHubConfig, error) {
	cfg, err := d.config.GetGitHubConfig(ctx)
	if err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrRemoteSync, err)
	}
	return cfg, nil
}

// CommitFile replaces the target file with content in one rename and
// appends message to the repository's commit log.
func (d *DirCommitter) CommitFile(ctx context.Context, content, message string) error {
	cfg, err := d.GetGitHubConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Token == "" || cfg.Repository == "" {
		return fmt.Errorf("%w: %w", ErrRemoteSync, ErrNotAuthenticated)
	}

	repoDir, err := d.within(d.root, cfg.Repository)
	if err != nil {
		return err
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	target, err := d.within(repoDir, path)
	if err != nil {
		return err
	}

	if err := writeAtomic(target, []byte(content)); err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteSync, err)
	}
	id, err := d.appendLog(repoDir, path, message, len(content))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRemoteSync, err)
	}

	d.log.Info("committed",
		logger.String("commit_id", id),
		logger.String("repository", cfg.Repository),
		logger.String("path", path),
		logger.Int("bytes", len(content)))
	return nil
}

// within joins rel under base and refuses anything that escapes it.
func (d *DirCommitter) within(base, rel string) (string, error) {
	joined := filepath.Join(base, filepath.FromSlash(rel))
	r, err := filepath.Rel(base, joined)
	if err != nil || r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes %s", ErrRemoteSync, rel, base)
	}
	return joined, nil
}

type commitEntry struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Path    string    `json:"path"`
	Message string    `json:"message"`
	Bytes   int       `json:"bytes"`
}

func (d *DirCommitter) appendLog(repoDir, path, message string, size int) (string, error) {
	entry := commitEntry{
		ID:      uuid.NewString(),
		Time:    d.now().UTC(),
		Path:    path,
		Message: message,
		Bytes:   size,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(filepath.Join(repoDir, commitLog), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open commit log: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		utils.Close(f)
		return "", fmt.Errorf("write commit log: %w", err)
	}
	return entry.ID, f.Close()
}

func writeAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		utils.Close(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		utils.Close(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
