package scheduler

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/pathways/internal/domain"
	"github.com/MrSnakeDoc/pathways/internal/export"
	"github.com/MrSnakeDoc/pathways/internal/logger"
)

// PathwayReplacer replaces the whole pathway collection.
type PathwayReplacer interface {
	ReplacePathways(ctx context.Context, pathways []domain.Pathway) error
}

// Seeder imports a YAML seed file on startup when no pathway is stored.
type Seeder struct {
	path     string
	source   PathwaySource
	replacer PathwayReplacer
	logger   logger.Logger
}

func NewSeeder(path string, source PathwaySource, replacer PathwayReplacer, log logger.Logger) *Seeder {
	return &Seeder{
		path:     path,
		source:   source,
		replacer: replacer,
		logger:   log.Named("seed"),
	}
}

// Seed returns the number of imported pathways, 0 when the store already
// had data.
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	existing, err := s.source.GetPathways(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read pathways: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info("store already has pathways, skipping seed",
			logger.Int("count", len(existing)))
		return 0, nil
	}

	pathways, err := export.Load(s.path)
	if err != nil {
		return 0, err
	}
	if len(pathways) == 0 {
		s.logger.Info("seed file is empty", logger.String("path", s.path))
		return 0, nil
	}

	if err := s.replacer.ReplacePathways(ctx, pathways); err != nil {
		return 0, fmt.Errorf("failed to import seed: %w", err)
	}

	s.logger.Info("seeded pathways",
		logger.String("path", s.path),
		logger.Int("count", len(pathways)))
	return len(pathways), nil
}
