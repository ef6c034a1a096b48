package tasks

import (
	"context"

	"github.com/arquibot/arquibot/app/repair"
)

// TaskRunnerInterface defines the interface for one-pass task execution.
// Used by the main application to run a repair pass over a set of page
// titles: tasks are queued, executed by a worker pool with bounded retry,
// and Run returns once every task reached a terminal state.
type TaskRunnerInterface interface {
	Run(ctx context.Context, titles []string)
	EnqueueTask(task TaskInterface) error
}

// PageRepairer runs one repair pass over page text.
type PageRepairer interface {
	Run(ctx context.Context, text string) repair.Result
}
