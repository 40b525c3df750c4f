// Package terminal holds the IntentRunner implementations that stand in for
// the browser driver of the web trading terminal.
package terminal

import (
	"context"
	"strings"
	"sync"

	"github.com/vitos/fib_bracket/internal/domain"
	"go.uber.org/zap"
)

const redacted = "********"

// LogRunner is a dry-run driver: it logs every intent and reports success.
type LogRunner struct {
	logger *zap.Logger
}

func NewLogRunner(logger *zap.Logger) *LogRunner {
	return &LogRunner{logger: logger}
}

func (r *LogRunner) Run(ctx context.Context, intents []domain.Intent) error {
	for _, in := range intents {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.logger.Info("Terminal intent",
			zap.String("kind", string(in.Kind)),
			zap.String("target", in.Target),
			zap.String("value", maskValue(in)))
	}
	return nil
}

// maskValue hides anything typed into a password field.
func maskValue(in domain.Intent) string {
	if in.Kind == domain.IntentFill && strings.Contains(in.Target, "password") && in.Value != "" {
		return redacted
	}
	return in.Value
}

// RecordingRunner keeps every batch it receives. FailOn makes the batch fail
// whenever it contains an intent whose target matches, which lets callers
// exercise retries.
type RecordingRunner struct {
	mu      sync.Mutex
	batches [][]domain.Intent
	FailOn  func(domain.Intent) error
}

func NewRecordingRunner() *RecordingRunner {
	return &RecordingRunner{}
}

func (r *RecordingRunner) Run(ctx context.Context, intents []domain.Intent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := make([]domain.Intent, len(intents))
	copy(batch, intents)
	r.batches = append(r.batches, batch)

	if r.FailOn != nil {
		for _, in := range intents {
			if err := r.FailOn(in); err != nil {
				return err
			}
		}
	}
	return nil
}

// Batches returns a copy of the recorded batches.
func (r *RecordingRunner) Batches() [][]domain.Intent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]domain.Intent, len(r.batches))
	copy(out, r.batches)
	return out
}

// Intents flattens all recorded batches.
func (r *RecordingRunner) Intents() []domain.Intent {
	var out []domain.Intent
	for _, b := range r.Batches() {
		out = append(out, b...)
	}
	return out
}
