package engine

import (
	"context"
	"sync"

	dragparser "github.com/FirinKinuo/drag-parser"
	"github.com/FirinKinuo/drag-parser/bloom"
	"golang.org/x/sync/errgroup"
)

// Batch dedup filter sizing.
const (
	batchExpectedDocs      = 10000
	batchFalsePositiveRate = 0.01
)

// ExtractAll runs the pipeline over many documents concurrently.
// Each document is fully owned by one worker; failures are reported
// through progress and skipped, never aborting the whole batch.
// Documents whose content fingerprint was already produced by the
// batch are deduplicated, keeping the first occurrence in input order.
// The only terminal error is context cancellation.
func (e *Engine) ExtractAll(ctx context.Context, docs []*dragparser.Document, concurrency int, progress dragparser.ProgressFunc) ([]*dragparser.ExtractedDocument, error) {
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]*dragparser.ExtractedDocument, len(docs))

	var mu sync.Mutex
	completed := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			extracted, err := e.Extract(ctx, doc)
			if err == nil {
				results[i] = extracted
			}

			mu.Lock()
			completed++
			done := completed
			mu.Unlock()

			if progress != nil {
				progress(dragparser.Progress{
					Index:     i,
					Completed: done,
					Total:     len(docs),
					Err:       err,
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Dedup in input order so output is deterministic regardless of
	// which worker finished first.
	seen := bloom.NewFilter(batchExpectedDocs, batchFalsePositiveRate)
	out := make([]*dragparser.ExtractedDocument, 0, len(docs))
	for _, res := range results {
		if res == nil {
			continue
		}
		if seen.TestAndAdd(res.ID) {
			continue
		}
		out = append(out, res)
	}
	return out, nil
}
