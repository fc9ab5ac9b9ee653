package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLocker struct {
	held  bool
	calls []string
}

func (l *stubLocker) WithLock(ctx context.Context, name string, _ time.Duration, fn func(context.Context) error) (bool, error) {
	l.calls = append(l.calls, name)
	if l.held {
		return false, nil
	}
	return true, fn(ctx)
}

type stubMonitor struct {
	deactivated, warned int
	errDeactivate       error
	warnCalled          bool
}

func (m *stubMonitor) DeactivateExpired(context.Context) (int, error) {
	return m.deactivated, m.errDeactivate
}

func (m *stubMonitor) WarnLowBudget(context.Context) (int, error) {
	m.warnCalled = true
	return m.warned, nil
}

func TestSchedulerRunNowUsesLock(t *testing.T) {
	locker := &stubLocker{}
	s := New(locker, time.Minute, nil, zerolog.Nop())

	runs := 0
	require.NoError(t, s.Add("count", "@every 1h", func(context.Context) error {
		runs++
		return nil
	}))

	require.NoError(t, s.RunNow(context.Background(), "count"))
	assert.Equal(t, 1, runs)
	assert.Equal(t, []string{"job:count"}, locker.calls)

	locker.held = true
	require.NoError(t, s.RunNow(context.Background(), "count"))
	assert.Equal(t, 1, runs, "job must not run while another instance holds the lock")
}

func TestSchedulerRejectsBadRegistrations(t *testing.T) {
	s := New(nil, time.Minute, nil, zerolog.Nop())
	noop := func(context.Context) error { return nil }

	assert.Error(t, s.Add("bad", "every now and then", noop))
	require.NoError(t, s.Add("ok", "@every 5m", noop))
	assert.Error(t, s.Add("ok", "@every 5m", noop))
	assert.Error(t, s.RunNow(context.Background(), "missing"))
}

func TestSchedulerReportsJobError(t *testing.T) {
	s := New(nil, time.Minute, nil, zerolog.Nop())
	boom := errors.New("boom")
	require.NoError(t, s.Add("failing", "@every 1h", func(context.Context) error { return boom }))

	assert.ErrorIs(t, s.RunNow(context.Background(), "failing"), boom)
}

func TestBudgetScanRunsBothPasses(t *testing.T) {
	monitor := &stubMonitor{deactivated: 2, warned: 1, errDeactivate: errors.New("db down")}

	err := BudgetScan(monitor, zerolog.Nop())(context.Background())

	assert.Error(t, err)
	assert.True(t, monitor.warnCalled, "warning pass runs even when deactivation failed")
}

func TestSchedulerStartStop(t *testing.T) {
	s := New(nil, time.Minute, nil, zerolog.Nop())
	require.NoError(t, s.Add(JobBudgetScan, "@every 1h", BudgetScan(&stubMonitor{}, zerolog.Nop())))

	s.Start(context.Background())
	s.Stop()
}
