package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/savemoney/brochures/app/config"
)

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypeIngestStore, "Lidl")

	if task.GetID() == "" {
		t.Error("Task ID should not be empty")
	}
	if task.GetType() != TaskTypeIngestStore {
		t.Errorf("Expected type '%s', got '%s'", TaskTypeIngestStore, task.GetType())
	}
	if task.GetStoreName() != "Lidl" {
		t.Errorf("Expected store 'Lidl', got '%s'", task.GetStoreName())
	}
	if task.GetRetryCount() != 0 {
		t.Errorf("Expected retry count 0, got %d", task.GetRetryCount())
	}
}

func TestTask_NoSameCycleRetry(t *testing.T) {
	task := NewTask(TaskTypeIngestStore, "Lidl")

	// A failed retailer run waits for the next scheduled trigger
	if task.CanRetry() {
		t.Error("Ingestion tasks must not retry within a cycle")
	}
}

func TestTask_Duration(t *testing.T) {
	task := NewTask(TaskTypeSweepExpired, "")

	if task.GetDuration() != 0 {
		t.Error("Duration should be 0 before the task starts")
	}

	task.Start()
	time.Sleep(10 * time.Millisecond)

	if task.GetDuration() <= 0 {
		t.Error("Duration should be positive after the task starts")
	}
}

func TestNewTask_UniqueIDs(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		task := NewTask(TaskTypeIngestStore, "Lidl")
		if _, ok := seen[task.GetID()]; ok {
			t.Fatalf("Duplicate task ID: %s", task.GetID())
		}
		seen[task.GetID()] = struct{}{}
	}
}

func TestIngestStoreTask_SkipsDisabledStore(t *testing.T) {
	store := &config.Store{
		Name:    "Lidl",
		Adapter: "lidl",
		URL:     "https://www.lidl.bg/c/broshura/s10020060",
		Settings: config.StoreSettings{
			Enabled: false,
		},
	}

	task := NewIngestStoreTask(store, nil)

	if err := task.Execute(context.Background()); err != nil {
		t.Errorf("Disabled store should be skipped without error, got: %v", err)
	}
}

func TestIngestStoreTask_CancelledContext(t *testing.T) {
	store := &config.Store{
		Name:     "Lidl",
		Adapter:  "lidl",
		URL:      "https://www.lidl.bg/c/broshura/s10020060",
		Settings: config.StoreSettings{Enabled: true},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := NewIngestStoreTask(store, nil)
	if err := task.Execute(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
