package scheduler

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/pathways/internal/domain"
	"github.com/MrSnakeDoc/pathways/internal/export"
	"github.com/MrSnakeDoc/pathways/internal/logger"
	"github.com/MrSnakeDoc/pathways/internal/remote"
)

// PathwaySource yields the ordered pathway collection.
type PathwaySource interface {
	GetPathways(ctx context.Context) ([]domain.Pathway, error)
}

// CommitOutcome describes what one Commit call did.
type CommitOutcome string

const (
	CommitSkippedUnauthenticated CommitOutcome = "unauthenticated"
	CommitSkippedUnchanged       CommitOutcome = "unchanged"
	CommitDone                   CommitOutcome = "committed"
)

// AutoCommitter periodically pushes the pathway collection to the remote.
type AutoCommitter struct {
	source        PathwaySource
	remote        remote.Syncer
	notifier      Notifier
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	mu       sync.Mutex
	lastHash [sha256.Size]byte
	now      func() time.Time
}

// NewAutoCommitter creates a committer. A send on manualTrigger forces an
// immediate commit.
func NewAutoCommitter(
	source PathwaySource,
	syncer remote.Syncer,
	notifier Notifier,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *AutoCommitter {
	return &AutoCommitter{
		source:        source,
		remote:        syncer,
		notifier:      notifier,
		logger:        log.Named("autocommit"),
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		now:           time.Now,
	}
}

// Run commits on every tick until ctx is done or Stop is called.
func (ac *AutoCommitter) Run(ctx context.Context) error {
	ticker := time.NewTicker(ac.interval)
	defer ticker.Stop()

	ac.logger.Info("auto-commit started", logger.Duration("interval", ac.interval))

	for {
		select {
		case <-ticker.C:
			ac.tick(ctx)
		case <-ac.manualTrigger:
			ac.logger.Info("manual commit triggered")
			ac.tick(ctx)
		case <-ac.stopCh:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// Stop ends Run. Safe to call more than once.
func (ac *AutoCommitter) Stop() {
	ac.stopOnce.Do(func() { close(ac.stopCh) })
}

func (ac *AutoCommitter) tick(ctx context.Context) {
	if _, err := ac.Commit(ctx); err != nil {
		ac.logger.Error("auto-commit failed", logger.Error(err))
	}
}

// Commit renders the collection and commits it when it changed since the
// last successful commit. Remote failures are reported to the notifier and
// returned; they never touch storage.
func (ac *AutoCommitter) Commit(ctx context.Context) (CommitOutcome, error) {
	if !ac.remote.IsAuthenticated(ctx) {
		ac.logger.Debug("remote not authenticated, skipping")
		return CommitSkippedUnauthenticated, nil
	}

	pathways, err := ac.source.GetPathways(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read pathways: %w", err)
	}

	content, err := export.Encode(pathways)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(content)

	ac.mu.Lock()
	defer ac.mu.Unlock()

	if sum == ac.lastHash {
		return CommitSkippedUnchanged, nil
	}

	message := fmt.Sprintf("Update pathways (%d) at %s", len(pathways), ac.now().UTC().Format(time.RFC3339))
	if err := ac.remote.CommitFile(ctx, string(content), message); err != nil {
		if !errors.Is(err, remote.ErrRemoteSync) {
			err = fmt.Errorf("%w: %w", remote.ErrRemoteSync, err)
		}
		ac.notifier.Notify(Notice{
			Level:   "error",
			Source:  "autocommit",
			Message: "Auto-commit failed: " + err.Error(),
		})
		return "", err
	}

	ac.lastHash = sum
	ac.logger.Info("pathways committed", logger.Int("pathways", len(pathways)))
	return CommitDone, nil
}
