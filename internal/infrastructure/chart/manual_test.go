package chart

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/fib_bracket/internal/domain"
)

func TestManualInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  domain.PricePair
	}{
		{"Valid values", "2,761.40\n2755.10\n", domain.PricePair{High: 2761.40, Low: 2755.10}},
		{"No trailing newline", "2761.4\n2755.1", domain.PricePair{High: 2761.4, Low: 2755.1}},
		{"Garbage falls back", "abc\n2755\n", domain.PricePair{High: DefaultManualHigh, Low: DefaultManualLow}},
		{"EOF falls back", "", domain.PricePair{High: DefaultManualHigh, Low: DefaultManualLow}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := NewManualInput(strings.NewReader(tt.input), &out).ReadPrices(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Enter HIGH price")
		})
	}
}

func TestManualInput_StopsWhenContextDone(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	m := NewManualInput(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := m.ReadPrices(ctx)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("ReadPrices kept waiting for input after the context was cancelled")
	}
}

func TestManualInput_AlreadyCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewManualInput(pr, &out).ReadPrices(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestManualInput_DeadlineWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	m := NewManualInput(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	// The high is typed, the low never is.
	go func() { _, _ = pw.Write([]byte("2750\n")) }()
	_, err := m.ReadPrices(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
