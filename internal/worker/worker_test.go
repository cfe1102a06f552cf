package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSweeper struct {
	calls   atomic.Int32
	deleted int64
	err     error
}

func (m *mockSweeper) DeleteExpired(ctx context.Context) (int64, error) {
	m.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("sweep called without a deadline")
	}
	return m.deleted, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWorker_Defaults(t *testing.T) {
	w := NewWorker(&mockSweeper{}, Config{}, nil)

	assert.Equal(t, time.Hour, w.config.Interval)
	assert.Equal(t, 30*time.Second, w.config.Timeout)
	assert.Contains(t, w.config.WorkerID, "sweeper-")
}

func TestWorker_Sweep(t *testing.T) {
	t.Run("returns deleted count", func(t *testing.T) {
		w := NewWorker(&mockSweeper{deleted: 3}, Config{}, discardLogger())
		assert.Equal(t, int64(3), w.Sweep(context.Background()))
	})

	t.Run("swallows errors", func(t *testing.T) {
		w := NewWorker(&mockSweeper{err: errors.New("db down")}, Config{}, discardLogger())
		assert.Zero(t, w.Sweep(context.Background()))
	})
}

func TestWorker_StartStopsOnCancel(t *testing.T) {
	sweeper := &mockSweeper{}
	w := NewWorker(sweeper, Config{Interval: 5 * time.Millisecond}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
