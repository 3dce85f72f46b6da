package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/savemoney/brochures/app/database"
)

// Sweeper retires brochures past their retention window, across all
// retailers. The pass is a single conditional bulk update: running it
// twice has no additional effect, and a failed run is simply retried on
// the next scheduled invocation.
type Sweeper struct {
	repo database.BrochureRepository
}

func NewSweeper(repo database.BrochureRepository) *Sweeper {
	return &Sweeper{repo: repo}
}

func (s *Sweeper) Run(ctx context.Context, now time.Time) (SweepResult, error) {
	if err := ctx.Err(); err != nil {
		return SweepResult{}, err
	}

	ids, err := s.repo.ArchiveExpired(now)
	if err != nil {
		return SweepResult{}, fmt.Errorf("expiration sweep failed: %w", err)
	}

	result := SweepResult{Count: len(ids), IDs: ids}
	if result.IDs == nil {
		result.IDs = []string{}
	}

	slog.Info("Expiration sweep completed", "archived", result.Count)

	return result, nil
}
