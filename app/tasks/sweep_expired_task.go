package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/savemoney/brochures/app/ingest"
)

type SweepExpiredTask struct {
	Task
	sweeper *ingest.Sweeper
}

func NewSweepExpiredTask(sweeper *ingest.Sweeper) *SweepExpiredTask {
	return &SweepExpiredTask{
		Task:    NewTask(TaskTypeSweepExpired, ""),
		sweeper: sweeper,
	}
}

func (t *SweepExpiredTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.sweeper.Run(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("expiration sweep failed: %w", err)
	}

	slog.Info("Task completed",
		"type", "SweepExpired",
		"duration", t.GetDuration(),
		"archived", result.Count)

	return nil
}
