package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/rss-digest/app/digest"
	"github.com/lysyi3m/rss-digest/app/pipeline"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	taskTimeout   = 30 * time.Minute
	maxRetryDelay = 30 * time.Second
)

type Scheduler struct {
	runner      PipelineRunner
	export      *GraphExport
	interval    time.Duration
	workerCount int
	retryBase   time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

// NewScheduler runs the pipeline every interval and, when export is non-nil,
// pushes each successful run's digest to the graph store. A non-positive
// interval disables the ticker; enqueued tasks still run.
func NewScheduler(runner PipelineRunner, export *GraphExport, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:      runner,
		export:      export,
		interval:    interval,
		workerCount: 1,
		retryBase:   time.Second,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 16),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	if s.interval <= 0 {
		slog.Debug("Scheduler interval disabled, only enqueued tasks will run")
		return
	}

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
				s.enqueueTasks()
			}
		}
	}()

	slog.Info("Scheduler started", "interval", s.interval.String(), "graph_export", s.export != nil)
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// NewPipelineTask builds a run task that chains a graph export on success.
func (s *Scheduler) NewPipelineTask() *RunPipelineTask {
	return NewRunPipelineTask(s.runner, s.afterRun)
}

func (s *Scheduler) enqueueTasks() {
	if err := s.EnqueueTask(s.NewPipelineTask()); err != nil {
		slog.Warn("Failed to enqueue RunPipelineTask", "error", err)
	}
}

func (s *Scheduler) afterRun(result pipeline.Result) {
	if s.export == nil {
		return
	}

	date, err := time.ParseInLocation(digest.DateLayout, result.Date, time.Local)
	if err != nil {
		slog.Warn("Skipping graph export, run has no digest date", "run_id", result.RunID, "error", err)
		return
	}

	if err := s.EnqueueTask(NewExportGraphTask(date, *s.export)); err != nil {
		slog.Warn("Failed to enqueue ExportGraphTask", "run_id", result.RunID, "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

// taskContext bounds every task except pipeline runs, which only Stop
// interrupts.
func (s *Scheduler) taskContext(task TaskInterface) (context.Context, context.CancelFunc) {
	if task.GetType() == TaskTypeRunPipeline {
		return context.WithCancel(s.ctx)
	}
	return context.WithTimeout(s.ctx, taskTimeout)
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := s.taskContext(task)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := s.retryBase * time.Duration(1<<uint(task.GetRetryCount()-1))
	if retryDelay > maxRetryDelay {
		retryDelay = maxRetryDelay
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-time.After(retryDelay):
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}
