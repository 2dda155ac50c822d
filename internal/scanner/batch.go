package scanner

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/phishscan/internal/config"
)

// Runner scans one URL. *Service implements it.
type Runner interface {
	Run(ctx context.Context, rawURL string) (*ScanJob, error)
}

// BatchResult is the result of one URL in a batch.
type BatchResult struct {
	// Index is the position of the URL in the input.
	Index int

	// Job is the finished scan; nil if the scan never started.
	Job *ScanJob

	// Err is the scan error, if any.
	Err error
}

// URL returns the scanned URL.
func (r BatchResult) URL() string {
	if r.Job == nil {
		return ""
	}
	return r.Job.URL
}

// BatchProcessor scans many URLs concurrently.
type BatchProcessor struct {
	runner      Runner
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent scans.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor around runner.
func NewBatchProcessor(runner Runner, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		runner:      runner,
		concurrency: config.DefaultBatchSize,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch scans urls and returns one result per URL in input order.
// A failing URL does not stop the others. The returned error is the context
// error if the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]BatchResult, error) {
	results := make([]BatchResult, len(urls))

	// Each goroutine writes only its own index.
	err := bp.ProcessBatchWithCallback(ctx, urls, func(r BatchResult) {
		results[r.Index] = r
	})

	return results, err
}

// ProcessBatchWithCallback scans urls and calls callback once per URL as soon
// as its scan finishes. The callback runs on the scanning goroutine and must
// be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(ctx context.Context, urls []string, callback func(BatchResult)) error {
	bp.logger.Debug("starting batch",
		"total_urls", len(urls),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, rawURL := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				callback(BatchResult{Index: i, Job: NewScanJob(rawURL), Err: err})
				return nil
			}

			job, err := bp.runner.Run(gctx, rawURL)
			if err != nil {
				bp.logger.Debug("scan failed", "url", rawURL, "error", err)
			}
			callback(BatchResult{Index: i, Job: job, Err: err})
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines report errors through results

	bp.logger.Debug("batch complete",
		"total_urls", len(urls),
		"elapsed", time.Since(startTime),
	)

	return ctx.Err()
}
