package tasks

import (
	"context"

	"github.com/lysyi3m/rss-digest/app/graph"
	"github.com/lysyi3m/rss-digest/app/pipeline"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to run the pipeline in the background.
// Example usage:
//
//	scheduler := NewScheduler(runner, export, interval)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewRunPipelineTask(runner, nil))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

type PipelineRunner interface {
	Run(ctx context.Context) pipeline.Result
}

type RelationshipExtractor interface {
	ExtractRelationships(text string, scope graph.Scope) ([]graph.Triple, error)
}
