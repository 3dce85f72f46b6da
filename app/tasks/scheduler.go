package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/savemoney/brochures/app/cfg"
	"github.com/savemoney/brochures/app/config"
	"github.com/savemoney/brochures/app/ingest"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler drives the daily scrape cycle. It runs exactly one worker:
// headless-browser sessions are heavyweight, and retailer runs must not
// overlap, so all tasks execute sequentially in enqueue order.
type Scheduler struct {
	storeCache *config.Cache
	ingester   *ingest.Ingester
	sweeper    *ingest.Sweeper
	interval   time.Duration
	scrapeHour int
	lastRunDay string
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	taskQueue  chan TaskInterface
}

func NewScheduler(storeCache *config.Cache, ingester *ingest.Ingester, sweeper *ingest.Sweeper) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		storeCache: storeCache,
		ingester:   ingester,
		sweeper:    sweeper,
		interval:   time.Duration(cfg.SchedulerInterval) * time.Second,
		scrapeHour: cfg.ScrapeHour,
		ctx:        ctx,
		cancel:     cancel,
		taskQueue:  make(chan TaskInterface, 100),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueDailyTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// enqueueDailyTasks fires the scrape cycle once per day, during the
// configured hour in the configured timezone. Only the ticker goroutine
// touches lastRunDay.
func (s *Scheduler) enqueueDailyTasks() {
	now := time.Now().In(time.Local)
	if now.Hour() != s.scrapeHour {
		return
	}

	day := now.Format("2006-01-02")
	if s.lastRunDay == day {
		return
	}
	s.lastRunDay = day

	stores := s.storeCache.GetEnabledStores()
	if len(stores) == 0 {
		slog.Debug("No enabled store configurations found")
		return
	}

	slog.Info("Starting daily scrape cycle", "stores", len(stores), "day", day)

	for _, store := range stores {
		task := NewIngestStoreTask(store, s.ingester)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue IngestStoreTask", "store", store.Name, "error", err)
		}
	}

	sweepTask := NewSweepExpiredTask(s.sweeper)
	if err := s.EnqueueTask(sweepTask); err != nil {
		slog.Warn("Failed to enqueue SweepExpiredTask", "error", err)
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 15*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "store", task.GetStoreName(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "store", task.GetStoreName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		}
	}
}
