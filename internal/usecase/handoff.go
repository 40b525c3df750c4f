package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vitos/fib_bracket/internal/domain"
)

var (
	ErrHandoffTimeout   = errors.New("timed out waiting for levels")
	ErrAlreadyPublished = errors.New("levels already published")
)

const DefaultHandoffTimeout = 120 * time.Second

type handoffResult struct {
	levels domain.LevelSet
	err    error
}

// LevelHandoff passes one level set from the chart side to the terminal side.
// It accepts a single Publish or Fail and serves a single Await.
type LevelHandoff struct {
	ch   chan handoffResult
	mu   sync.Mutex
	sent bool
}

func NewLevelHandoff() *LevelHandoff {
	return &LevelHandoff{ch: make(chan handoffResult, 1)}
}

// Publish hands over the levels. The set is copied, so the caller may keep
// using its own value.
func (h *LevelHandoff) Publish(levels domain.LevelSet) error {
	return h.send(handoffResult{levels: levels})
}

// Fail releases the consumer with the producer's error instead of levels.
func (h *LevelHandoff) Fail(err error) error {
	if err == nil {
		err = domain.ErrNoPrices
	}
	return h.send(handoffResult{err: err})
}

func (h *LevelHandoff) send(r handoffResult) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sent {
		return ErrAlreadyPublished
	}
	h.sent = true
	h.ch <- r
	return nil
}

// Await blocks until levels arrive, the producer fails, timeout elapses or ctx
// is done.
func (h *LevelHandoff) Await(ctx context.Context, timeout time.Duration) (domain.LevelSet, error) {
	if timeout <= 0 {
		timeout = DefaultHandoffTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-h.ch:
		if r.err != nil {
			return domain.LevelSet{}, fmt.Errorf("level producer failed: %w", r.err)
		}
		return r.levels, nil
	case <-timer.C:
		return domain.LevelSet{}, fmt.Errorf("%w after %s", ErrHandoffTimeout, timeout)
	case <-ctx.Done():
		return domain.LevelSet{}, ctx.Err()
	}
}
