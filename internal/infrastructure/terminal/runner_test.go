package terminal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/fib_bracket/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogRunner_MasksPassword(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := NewLogRunner(zap.New(core))

	err := r.Run(context.Background(), []domain.Intent{
		{Kind: domain.IntentFill, Target: `input[name="login"]`, Value: "309693342"},
		{Kind: domain.IntentFill, Target: `input[name="password"]`, Value: "secret"},
	})
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "309693342", entries[0].ContextMap()["value"])
	assert.Equal(t, redacted, entries[1].ContextMap()["value"])
}

func TestLogRunner_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewLogRunner(zap.NewNop()).Run(ctx, []domain.Intent{{Kind: domain.IntentPress, Value: "F9"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordingRunner(t *testing.T) {
	r := NewRecordingRunner()
	boom := errors.New("not found")
	r.FailOn = func(in domain.Intent) error {
		if in.Target == "missing" {
			return boom
		}
		return nil
	}

	require.NoError(t, r.Run(context.Background(), []domain.Intent{{Kind: domain.IntentClick, Target: "ok"}}))
	assert.ErrorIs(t, r.Run(context.Background(), []domain.Intent{{Kind: domain.IntentClick, Target: "missing"}}), boom)

	assert.Len(t, r.Batches(), 2)
	assert.Equal(t, []string{"ok", "missing"}, []string{r.Intents()[0].Target, r.Intents()[1].Target})
}
