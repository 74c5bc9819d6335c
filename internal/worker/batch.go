package worker

import (
	"context"

	"github.com/opengreens/verdant/internal/model"
	"github.com/opengreens/verdant/internal/source"
)

// SourceProcessor runs one data source end to end and reports the outcome.
// The pipeline implements it; defining the interface here keeps this package
// free of a pipeline dependency.
type SourceProcessor interface {
	ProcessSource(ctx context.Context, src source.Source) *model.SourceReport
}

// SourceJob processes one source on the pool.
type SourceJob struct {
	Source    source.Source
	Processor SourceProcessor
}

// Execute runs the source job.
func (j *SourceJob) Execute(ctx context.Context) Result {
	return &SourceResult{
		Source: j.Source.Name(),
		Report: j.Processor.ProcessSource(ctx, j.Source),
	}
}

// SourceResult is the outcome of one source job. Source-level failures land
// inside the report, not in Err; Err is reserved for pool-level aborts.
type SourceResult struct {
	Source string
	Report *model.SourceReport
	Err    error
}

// GetError returns the job error, if any.
func (r *SourceResult) GetError() error {
	return r.Err
}

// BatchProcessor runs multiple sources concurrently on a worker pool.
type BatchProcessor struct {
	processor   SourceProcessor
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(processor SourceProcessor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessSources runs all sources and returns their results. Order follows
// completion, not submission; callers reorder by source name if needed.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []source.Source) []*SourceResult {
	if len(sources) == 0 {
		return []*SourceResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Propagate caller cancelation into the pool's own context.
	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		<-watchCtx.Done()
		pool.Shutdown()
	}()

	for _, src := range sources {
		pool.Submit(&SourceJob{
			Source:    src,
			Processor: b.processor,
		})
	}

	results := pool.Wait()

	sourceResults := make([]*SourceResult, 0, len(results))
	for _, result := range results {
		sourceResults = append(sourceResults, result.(*SourceResult))
	}

	return sourceResults
}
