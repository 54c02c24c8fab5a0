package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/pathways/internal/domain"
	"github.com/MrSnakeDoc/pathways/internal/linkcheck"
	"github.com/MrSnakeDoc/pathways/internal/logger"
)

// PathwayStore reads and saves individual pathways.
type PathwayStore interface {
	GetPathways(ctx context.Context) ([]domain.Pathway, error)
	SavePathway(ctx context.Context, p domain.Pathway) error
}

// LinkChecker fills the audit fields of a bookmark.
type LinkChecker interface {
	Audit(ctx context.Context, b *domain.Bookmark) linkcheck.Result
}

// AuditReport summarises one audit pass.
type AuditReport struct {
	Pathways    int
	Bookmarks   int
	Unavailable int
}

// LinkAuditor periodically checks every bookmark and saves the results
// back through the storage manager. Ids and sort order are left alone.
type LinkAuditor struct {
	store    PathwayStore
	checker  LinkChecker
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewLinkAuditor(
	store PathwayStore,
	checker LinkChecker,
	log logger.Logger,
	interval time.Duration,
) *LinkAuditor {
	return &LinkAuditor{
		store:    store,
		checker:  checker,
		logger:   log.Named("linkaudit"),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Run audits once immediately, then on every tick.
func (la *LinkAuditor) Run(ctx context.Context) error {
	if _, err := la.Audit(ctx); err != nil {
		la.logger.Warn("initial link audit failed", logger.Error(err))
	}

	ticker := time.NewTicker(la.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := la.Audit(ctx); err != nil {
				la.logger.Error("link audit failed", logger.Error(err))
			}
		case <-la.stopCh:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func (la *LinkAuditor) Stop() {
	la.stopOnce.Do(func() { close(la.stopCh) })
}

// Audit checks every bookmark of every pathway. A pathway that fails to
// save is logged and the pass continues.
func (la *LinkAuditor) Audit(ctx context.Context) (AuditReport, error) {
	var report AuditReport

	pathways, err := la.store.GetPathways(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to read pathways: %w", err)
	}

	for _, p := range pathways {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		checked := 0
		for si := range p.Steps {
			for bi := range p.Steps[si].Bookmarks {
				b := &p.Steps[si].Bookmarks[bi]
				if b.URL == "" {
					continue
				}
				la.checker.Audit(ctx, b)
				checked++
				if b.Available != nil && !*b.Available {
					report.Unavailable++
				}
			}
		}
		if checked == 0 {
			continue
		}

		if err := la.store.SavePathway(ctx, p); err != nil {
			la.logger.Warn("failed to save audited pathway",
				logger.String("id", p.ID), logger.Error(err))
			continue
		}
		report.Pathways++
		report.Bookmarks += checked
	}

	la.logger.Info("link audit complete",
		logger.Int("pathways", report.Pathways),
		logger.Int("bookmarks", report.Bookmarks),
		logger.Int("unavailable", report.Unavailable))
	return report, nil
}
