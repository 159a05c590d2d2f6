package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/custodia-labs/rfqx/internal/core/ports/driving"
	"github.com/custodia-labs/rfqx/internal/logger"
)

// DefaultSettleDelay is how long a path must stay quiet before it is
// processed. Copies and editors often write a file in several steps.
const DefaultSettleDelay = 500 * time.Millisecond

// Inbox processes files as they arrive, with a bounded worker pool.
// It is fed paths by a watcher adapter and has no control API of its own.
type Inbox struct {
	docs    driving.DocumentService
	workers int
	settle  time.Duration
	onDone  func(driving.ProcessOutcome)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	wg      sync.WaitGroup
}

// InboxOption configures an Inbox.
type InboxOption func(*Inbox)

// WithSettleDelay sets the quiet period before a path is processed.
func WithSettleDelay(d time.Duration) InboxOption {
	return func(i *Inbox) {
		if d > 0 {
			i.settle = d
		}
	}
}

// WithOutcomeHandler registers a callback for every processed file.
// It is called from worker goroutines.
func WithOutcomeHandler(fn func(driving.ProcessOutcome)) InboxOption {
	return func(i *Inbox) {
		i.onDone = fn
	}
}

// NewInbox creates an inbox that runs at most workers cascades at once.
func NewInbox(docs driving.DocumentService, workers int, opts ...InboxOption) *Inbox {
	if workers <= 0 {
		workers = 1
	}
	i := &Inbox{
		docs:    docs,
		workers: workers,
		settle:  DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Start consumes paths until Stop is called, ctx is done or paths is
// closed. It blocks, and waits for in-flight files before returning.
func (i *Inbox) Start(ctx context.Context, paths <-chan string) error {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return nil // Already running
	}
	i.running = true
	i.stopCh = make(chan struct{})
	i.doneCh = make(chan struct{})
	stopCh, doneCh := i.stopCh, i.doneCh
	i.mu.Unlock()

	defer func() {
		i.wg.Wait()
		i.mu.Lock()
		i.running = false
		i.mu.Unlock()
		close(doneCh)
	}()

	sem := semaphore.NewWeighted(int64(i.workers))
	pending := make(map[string]time.Time)

	ticker := time.NewTicker(max(i.settle/2, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case path, ok := <-paths:
			if !ok {
				i.flush(ctx, sem, pending, time.Time{})
				return nil
			}
			pending[path] = time.Now()
		case now := <-ticker.C:
			i.flush(ctx, sem, pending, now.Add(-i.settle))
		}
	}
}

// Stop gracefully shuts down the inbox and waits for running files.
func (i *Inbox) Stop() error {
	i.mu.Lock()
	if !i.running {
		i.mu.Unlock()
		return nil
	}
	select {
	case <-i.stopCh:
	default:
		close(i.stopCh)
	}
	doneCh := i.doneCh
	i.mu.Unlock()

	<-doneCh
	return nil
}

// flush dispatches every pending path last seen before cutoff. A zero
// cutoff dispatches everything.
func (i *Inbox) flush(ctx context.Context, sem *semaphore.Weighted, pending map[string]time.Time, cutoff time.Time) {
	for path, seen := range pending {
		if !cutoff.IsZero() && seen.After(cutoff) {
			continue
		}
		delete(pending, path)

		if err := sem.Acquire(ctx, 1); err != nil {
			return
		}
		i.wg.Add(1)
		go func() {
			defer i.wg.Done()
			defer sem.Release(1)
			i.process(ctx, path)
		}()
	}
}

func (i *Inbox) process(ctx context.Context, path string) {
	logger.Info("inbox file", "path", path)
	out, err := i.docs.Process(ctx, path)
	if out == nil {
		out = &driving.ProcessOutcome{Path: path, Err: err}
	}
	if IsHardFailure(err) {
		logger.Warn("inbox file failed", "path", path, "error", err)
	}
	if i.onDone != nil {
		i.onDone(*out)
	}
}
