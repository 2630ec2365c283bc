package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/rss-digest/app/pipeline"
)

type RunPipelineTask struct {
	Task
	runner    PipelineRunner
	onSuccess func(result pipeline.Result)
}

// NewRunPipelineTask wraps one pipeline run. onSuccess, when set, receives the
// result of a successful run.
func NewRunPipelineTask(runner PipelineRunner, onSuccess func(result pipeline.Result)) *RunPipelineTask {
	return &RunPipelineTask{
		Task:      NewTask(TaskTypeRunPipeline),
		runner:    runner,
		onSuccess: onSuccess,
	}
}

func (t *RunPipelineTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result := t.runner.Run(ctx)
	if !result.OK() {
		return fmt.Errorf("pipeline run %s failed: %s", result.RunID, result.Message)
	}

	slog.Info("Task completed",
		"type", string(t.Type),
		"run_id", result.RunID,
		"articles", result.Articles,
		"added", result.Added,
		"duration", t.GetDuration())

	if t.onSuccess != nil {
		t.onSuccess(result)
	}

	return nil
}
