package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/fiscal-extract/internal/audit"
	"github.com/joseph-ayodele/fiscal-extract/internal/common"
)

// BatchItem is the outcome of one file in a batch. Exactly one of Result
// and Err is set.
type BatchItem struct {
	Path   string
	Result *Result
	Err    error
}

type BatchStats struct {
	Total        int
	Succeeded    int
	Failed       int
	Cached       int
	Inconsistent int // reconciliation reported an error finding
}

// ProcessBatch processes paths concurrently, at most p.workers at a time.
// A failing document does not stop the others; items come back in input
// order. Only context cancellation is returned as an error.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string) ([]BatchItem, error) {
	items := make([]BatchItem, len(paths))
	p.logger.Info("pipeline.batch.start", "files", len(paths), "workers", p.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range paths {
		items[i].Path = path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			res, err := p.ProcessFile(gctx, path)
			items[i].Result, items[i].Err = res, err
			return nil
		})
	}
	_ = g.Wait()

	stats := Summarize(items)
	p.logger.Info("pipeline.batch.done",
		"total", stats.Total,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"cached", stats.Cached,
		"inconsistent", stats.Inconsistent,
	)
	if err := ctx.Err(); err != nil {
		return items, err
	}
	return items, nil
}

// Summarize counts batch outcomes.
func Summarize(items []BatchItem) BatchStats {
	s := BatchStats{Total: len(items)}
	for _, it := range items {
		if it.Err != nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		if it.Result.Cached {
			s.Cached++
		}
		if audit.HasErrors(it.Result.Findings) {
			s.Inconsistent++
		}
	}
	return s
}

// FailuresByCode groups failed items by AppError code.
func FailuresByCode(items []BatchItem) map[string]int {
	out := map[string]int{}
	for _, it := range items {
		if it.Err == nil {
			continue
		}
		code := common.ErrorCode(it.Err)
		if code == "" {
			code = "UNKNOWN"
		}
		out[code]++
	}
	return out
}
