package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dvdk01/loadsim/internal/config"
	"github.com/dvdk01/loadsim/internal/schema"
)

type Selector interface {
	Select() schema.Endpoint
}

type Executor interface {
	Execute(ctx context.Context, endpoint schema.Endpoint) schema.ResponseRecord
}

type Progress interface {
	Progress(done, total int)
}

type Scheduler struct {
	cfg      config.Config
	selector Selector
	executor Executor
	recorder schema.Recorder
	progress Progress

	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg config.Config, selector Selector, executor Executor, recorder schema.Recorder, progress Progress) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		selector: selector,
		executor: executor,
		recorder: recorder,
		progress: progress,
		sleep:    sleep,
	}
}

// batchSize is the size of the batch starting after done requests: the
// configured concurrency, or whatever is left of the budget when less.
func batchSize(done, total, concurrency int) int {
	return min(max(concurrency, 1), total-done)
}

// Run drives every batch to completion. Batches run strictly one after
// another; requests inside a batch run concurrently. When ctx is cancelled
// the batch in flight still completes and the remaining ones are skipped.
func (s *Scheduler) Run(ctx context.Context) schema.Summary {
	var summary schema.Summary
	total := s.cfg.TotalRequests

	start := time.Now()
	for summary.Completed < total {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		size := batchSize(summary.Completed, total, s.cfg.BatchConcurrency)
		s.runBatch(ctx, size)
		summary.Batches++
		summary.Completed += size

		var err error
		if summary.Completed < total {
			err = s.sleep(ctx, s.cfg.InterBatchDelay())
		}
		s.reportProgress(summary.Completed)
		if err != nil {
			summary.Interrupted = true
			break
		}
	}
	summary.Duration = time.Since(start)

	return summary
}

func (s *Scheduler) runBatch(ctx context.Context, size int) {
	var wg sync.WaitGroup

	for i := 0; i < size; i++ {
		endpoint := s.selector.Select()
		wg.Add(1)
		go func(endpoint schema.Endpoint) {
			defer wg.Done()
			s.recorder.Record(s.executor.Execute(ctx, endpoint))
		}(endpoint)
	}

	wg.Wait()
}

func (s *Scheduler) reportProgress(done int) {
	if s.progress != nil {
		s.progress.Progress(done, s.cfg.TotalRequests)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
