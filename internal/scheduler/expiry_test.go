package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/senyabanana/gig-service/internal/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type firedCall struct {
	requestId string
	epoch     int
}

type fakeExpirer struct {
	mu     sync.Mutex
	fired  []firedCall
	sweeps int
}

func (f *fakeExpirer) ExpireIfSearching(_ context.Context, requestId string, epoch int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fired = append(f.fired, firedCall{requestId: requestId, epoch: epoch})
	return true, nil
}

func (f *fakeExpirer) ExpireOverdue(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps++
	return 0, nil
}

func (f *fakeExpirer) firedCalls() []firedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]firedCall{}, f.fired...)
}

func (f *fakeExpirer) sweepCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sweeps
}

func TestArmFiresAfterDeadline(t *testing.T) {
	expirer := &fakeExpirer{}
	sched := scheduler.NewExpiryScheduler(expirer, zap.NewNop().Sugar(), time.Minute)

	sched.Arm("req-1", 1, time.Now().Add(20*time.Millisecond))

	require.Eventually(t, func() bool {
		return len(expirer.firedCalls()) == 1
	}, time.Second, 5*time.Millisecond)

	calls := expirer.firedCalls()
	assert.Equal(t, "req-1", calls[0].requestId)
	assert.Equal(t, 1, calls[0].epoch)
}

func TestArmReplacesExistingTimer(t *testing.T) {
	expirer := &fakeExpirer{}
	sched := scheduler.NewExpiryScheduler(expirer, zap.NewNop().Sugar(), time.Minute)

	// Перевзвод заменяет старый таймер: срабатывает только эпоха 2.
	sched.Arm("req-1", 1, time.Now().Add(50*time.Millisecond))
	sched.Arm("req-1", 2, time.Now().Add(10*time.Millisecond))

	require.Eventually(t, func() bool {
		return len(expirer.firedCalls()) == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	calls := expirer.firedCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 2, calls[0].epoch)
}

func TestArmWithPastDeadlineFiresImmediately(t *testing.T) {
	expirer := &fakeExpirer{}
	sched := scheduler.NewExpiryScheduler(expirer, zap.NewNop().Sugar(), time.Minute)

	sched.Arm("req-1", 1, time.Now().Add(-time.Minute))

	require.Eventually(t, func() bool {
		return len(expirer.firedCalls()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestRunSweepsPeriodically(t *testing.T) {
	expirer := &fakeExpirer{}
	sched := scheduler.NewExpiryScheduler(expirer, zap.NewNop().Sugar(), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return expirer.sweepCount() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
