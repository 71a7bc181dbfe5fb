package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type loopWorker struct {
	*BaseWorker
	failWith error
	ticks    chan struct{}
}

func (w *loopWorker) Start(ctx context.Context) error {
	if w.failWith != nil {
		return w.failWith
	}
	for w.Sleep(ctx, time.Millisecond) {
		select {
		case w.ticks <- struct{}{}:
		default:
		}
	}
	return nil
}

func TestWorkerManager_StartStop(t *testing.T) {
	m := NewWorkerManager(zap.NewNop())
	assert.Error(t, m.Start(context.Background()), "nothing registered")

	w := &loopWorker{BaseWorker: NewBaseWorker("loop", "group", zap.NewNop()), ticks: make(chan struct{}, 1)}
	m.Register(w)
	require.NoError(t, m.Start(context.Background()))

	select {
	case <-w.ticks:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never ran")
	}

	require.NoError(t, m.Stop())
	assert.True(t, w.IsStopped())
	assert.NoError(t, w.Stop(), "second stop is a no-op")
}

func TestWorkerManager_CollectsFailures(t *testing.T) {
	m := NewWorkerManager(zap.NewNop())
	m.SetShutdownTimeout(time.Second)
	boom := errors.New("group missing")
	m.Register(&loopWorker{BaseWorker: NewBaseWorker("broken", "group", zap.NewNop()), failWith: boom})

	require.NoError(t, m.Start(context.Background()))
	err := m.Stop()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
}

func TestBaseWorker_SleepStopsEarly(t *testing.T) {
	w := NewBaseWorker("sleepy", "group", zap.NewNop())
	assert.Equal(t, "group", w.ConsumerGroup())
	assert.NotEmpty(t, w.ConsumerName())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, w.Sleep(ctx, time.Hour))

	require.NoError(t, w.Stop())
	assert.False(t, w.Sleep(context.Background(), time.Hour))
	assert.True(t, NewBaseWorker("x", "g", zap.NewNop()).Sleep(context.Background(), time.Millisecond))
}
