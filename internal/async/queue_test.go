package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/fiscal-extract/internal/pipeline"
)

type fakeProcessor struct{}

func (fakeProcessor) ProcessFile(_ context.Context, path string) (*pipeline.Result, error) {
	if path == "bad.xml" {
		return nil, errors.New("boom")
	}
	return &pipeline.Result{File: path}, nil
}

func TestProcessorQueue(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[string]error{}
	)
	q := NewProcessorQueue(fakeProcessor{}, nil,
		WithWorkers(2),
		WithQueueSize(1),
		WithHandler(func(job Job, res *pipeline.Result, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				assert.Equal(t, job.Path, res.File)
			}
			assert.NotEmpty(t, job.TraceID)
			seen[job.Path] = err
		}),
	)

	ctx := context.Background()
	for _, p := range []string{"a.xml", "bad.xml", "c.pdf"} {
		require.NoError(t, q.Enqueue(ctx, Job{Path: p}))
	}

	sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	q.Shutdown(sctx)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.NoError(t, seen["a.xml"])
	assert.Error(t, seen["bad.xml"])

	assert.ErrorIs(t, q.Enqueue(ctx, Job{Path: "late.xml"}), ErrQueueClosed)
	q.Shutdown(ctx)
}
