package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arquibot/arquibot/app/cfg"
	"github.com/arquibot/arquibot/app/database"
	"github.com/arquibot/arquibot/app/repair"
)

var _ TaskRunnerInterface = (*Runner)(nil)

// Runner drains a queue of page tasks with a worker pool. One call to Run
// is one pass: it returns when every queued task reached a terminal state,
// either success or exhausted retries.
type Runner struct {
	source      repair.PageSource
	sink        repair.PageSink
	repairer    PageRepairer
	articleRepo database.ArticleRepository
	actionRepo  database.ActionLogRepository
	workerCount int
	taskQueue   chan TaskInterface
	pending     sync.WaitGroup
}

func NewRunner(source repair.PageSource, sink repair.PageSink, repairer PageRepairer,
	articleRepo database.ArticleRepository, actionRepo database.ActionLogRepository) TaskRunnerInterface {
	cfg := cfg.Get()

	return &Runner{
		source:      source,
		sink:        sink,
		repairer:    repairer,
		articleRepo: articleRepo,
		actionRepo:  actionRepo,
		workerCount: cfg.WorkerCount,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (r *Runner) Run(ctx context.Context, titles []string) {
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var workers sync.WaitGroup
	for i := 0; i < r.workerCount; i++ {
		workers.Add(1)
		go r.worker(workerCtx, i, &workers)
	}

	for _, title := range titles {
		task := NewProcessPageTask(title, r.source, r.sink, r.repairer, r.articleRepo, r.actionRepo)
		r.pending.Add(1)
		if err := r.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue ProcessPageTask", "title", title, "error", err)
			r.pending.Done()
		}
	}

	done := make(chan struct{})
	go func() {
		r.pending.Wait()
		close(done)
	}()

	// Cancellation trumps completion: a shutdown signal must not wait for
	// tasks stranded in the queue.
	select {
	case <-done:
	case <-ctx.Done():
	}

	cancel()
	workers.Wait()
}

func (r *Runner) EnqueueTask(task TaskInterface) error {
	select {
	case r.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (r *Runner) worker(ctx context.Context, id int, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case task, ok := <-r.taskQueue:
			if !ok {
				return
			}
			r.executeTask(ctx, id, task)

		case <-ctx.Done():
			return
		}
	}
}

func (r *Runner) executeTask(ctx context.Context, workerID int, task TaskInterface) {
	task.Start()

	err := task.Execute(ctx)
	if err == nil {
		r.pending.Done()
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "title", task.GetTitle(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "title", task.GetTitle(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		r.pending.Done()
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "title", task.GetTitle(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		time.Sleep(retryDelay)
		select {
		case <-ctx.Done():
			slog.Debug("Run cancelled, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			r.pending.Done()
		case r.taskQueue <- task:
		}
	}()
}
