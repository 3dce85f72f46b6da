package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/savemoney/brochures/app/config"
	"github.com/savemoney/brochures/app/ingest"
	"github.com/savemoney/brochures/app/scrape"
)

type IngestStoreTask struct {
	Task
	StoreConfig *config.Store
	ingester    *ingest.Ingester
}

func NewIngestStoreTask(storeConfig *config.Store, ingester *ingest.Ingester) *IngestStoreTask {
	return &IngestStoreTask{
		Task:        NewTask(TaskTypeIngestStore, storeConfig.Name),
		StoreConfig: storeConfig,
		ingester:    ingester,
	}
}

func (t *IngestStoreTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.StoreConfig.Settings.Enabled {
		slog.Debug("Store disabled, skipping", "store", t.StoreName)
		return nil
	}

	adapter, err := scrape.New(t.StoreConfig)
	if err != nil {
		return fmt.Errorf("failed to build adapter: %w", err)
	}

	summary, err := t.ingester.Run(ctx, adapter, t.StoreConfig)
	if err != nil {
		return fmt.Errorf("ingestion run failed: %w", err)
	}

	slog.Info("Task completed",
		"type", "IngestStore",
		"store", t.StoreName,
		"duration", t.GetDuration(),
		"discovered", summary.Discovered,
		"new", summary.New,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"archived", summary.Archived)

	return nil
}
