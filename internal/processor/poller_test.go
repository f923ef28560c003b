package processor_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xaenox/chat-profiler/internal/processor"
)

type countingRunner struct {
	passes atomic.Int32
	err    error
}

func (r *countingRunner) RunPass(context.Context) (processor.PassStats, error) {
	r.passes.Add(1)
	return processor.PassStats{}, r.err
}

// slowRunner records when each pass starts and ends.
type slowRunner struct {
	duration time.Duration

	mu     sync.Mutex
	starts []time.Time
	ends   []time.Time
}

func (r *slowRunner) RunPass(context.Context) (processor.PassStats, error) {
	r.mu.Lock()
	r.starts = append(r.starts, time.Now())
	r.mu.Unlock()

	time.Sleep(r.duration)

	r.mu.Lock()
	r.ends = append(r.ends, time.Now())
	r.mu.Unlock()
	return processor.PassStats{}, nil
}

func (r *slowRunner) passes() ([]time.Time, []time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Time(nil), r.starts...), append([]time.Time(nil), r.ends...)
}

func TestPoller_WaitsFullIntervalAfterSlowPass(t *testing.T) {
	interval := 40 * time.Millisecond
	runner := &slowRunner{duration: 3 * interval}
	p := processor.NewPoller(runner, interval, zap.NewNop())

	require.NoError(t, p.Start(context.Background()))
	assert.Eventually(t, func() bool {
		starts, _ := runner.passes()
		return len(starts) >= 3
	}, 5*time.Second, 5*time.Millisecond)
	p.Stop()

	starts, ends := runner.passes()
	for i := 1; i < len(starts) && i-1 < len(ends); i++ {
		assert.GreaterOrEqual(t, starts[i].Sub(ends[i-1]), interval, "pause before pass %d", i+1)
	}
}

func TestPoller_RunsImmediatelyThenOnInterval(t *testing.T) {
	runner := &countingRunner{}
	p := processor.NewPoller(runner, 10*time.Millisecond, zap.NewNop())

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	assert.Eventually(t, func() bool { return runner.passes.Load() >= 1 }, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return runner.passes.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestPoller_StartTwice(t *testing.T) {
	p := processor.NewPoller(&countingRunner{}, time.Hour, zap.NewNop())

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	assert.Error(t, p.Start(context.Background()))
}

func TestPoller_RunStopsOnCancel(t *testing.T) {
	runner := &countingRunner{}
	p := processor.NewPoller(runner, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	assert.Eventually(t, func() bool { return runner.passes.Load() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}

	// a stopped poller can be started again
	require.NoError(t, p.Start(context.Background()))
	p.Stop()
}

func TestPoller_RunReturnsNilAfterStop(t *testing.T) {
	p := processor.NewPoller(&countingRunner{}, time.Hour, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	assert.Eventually(t, func() bool {
		p.Stop()
		select {
		case err := <-done:
			return err == nil
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestPoller_LogsPassErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	runner := &countingRunner{err: errors.New("store unavailable")}
	p := processor.NewPoller(runner, time.Hour, zap.New(core))

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("Failed to run batch pass").Len() == 1
	}, time.Second, time.Millisecond)
}

func TestNewPoller_DefaultInterval(t *testing.T) {
	assert.Equal(t, 60*time.Second, processor.DefaultPollInterval)
	assert.NotNil(t, processor.NewPoller(&countingRunner{}, 0, zap.NewNop()))
}
