package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeDeleter struct {
	mu      sync.Mutex
	calls   int
	removed int64
	err     error
}

func (f *fakeDeleter) DeleteExpired(context.Context, time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.removed, f.err
}

func (f *fakeDeleter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestSweepLogsRemovals(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sweeper := NewSessionSweeper(&fakeDeleter{removed: 3}, time.Minute, zap.New(core))

	assert.EqualValues(t, 3, sweeper.Sweep(context.Background()))
	entries := logs.FilterMessage("expired sessions removed").All()
	if assert.Len(t, entries, 1) {
		assert.EqualValues(t, 3, entries[0].ContextMap()["count"])
	}
}

func TestSweepFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	sweeper := NewSessionSweeper(&fakeDeleter{err: errors.New("db down")}, time.Minute, zap.New(core))

	assert.Zero(t, sweeper.Sweep(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("session sweep failed").Len())
}

func TestRunSweepsUntilCancelled(t *testing.T) {
	deleter := &fakeDeleter{}
	sweeper := NewSessionSweeper(deleter, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	assert.Eventually(t, func() bool { return deleter.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
