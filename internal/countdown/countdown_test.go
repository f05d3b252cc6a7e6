package countdown

import (
	"sync/atomic"
	"testing"
	"time"
)

const testInterval = 2 * time.Millisecond

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}

func TestExpiresExactlyOnce(t *testing.T) {
	var fired atomic.Int32
	timer := New(5, func() { fired.Add(1) }, WithInterval(testInterval))

	timer.Start()
	waitFor(t, func() bool { return fired.Load() > 0 }, "timer never expired")

	// Give stale ticks a chance to misfire.
	time.Sleep(20 * testInterval)
	if got := fired.Load(); got != 1 {
		t.Errorf("expire fired %d times, want 1", got)
	}
}

func TestStartSetsFullValue(t *testing.T) {
	timer := New(5, nil, WithInterval(time.Hour))
	timer.Start()
	defer timer.Stop()

	if got := timer.Remaining(); got != 5 {
		t.Errorf("Remaining = %d, want 5", got)
	}
}

func TestResetRestartsCycle(t *testing.T) {
	var fired atomic.Int32
	timer := New(3, func() { fired.Add(1) }, WithInterval(testInterval))

	timer.Start()
	waitFor(t, func() bool { return timer.Remaining() < 3 }, "timer never ticked")

	timer.Reset()
	if got := timer.Remaining(); got != 3 {
		t.Errorf("Remaining after Reset = %d, want 3", got)
	}

	waitFor(t, func() bool { return fired.Load() == 1 }, "reset cycle never expired")
	time.Sleep(20 * testInterval)
	if got := fired.Load(); got != 1 {
		t.Errorf("expire fired %d times after reset, want 1", got)
	}
}

func TestStopPreventsExpiry(t *testing.T) {
	var fired atomic.Int32
	timer := New(2, func() { fired.Add(1) }, WithInterval(10*time.Millisecond))

	timer.Start()
	timer.Stop()

	time.Sleep(50 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("expire fired %d times after Stop, want 0", got)
	}
	if got := timer.Remaining(); got != 2 {
		t.Errorf("Remaining after Stop = %d, want full value 2", got)
	}
}

func TestStopIdempotent(t *testing.T) {
	timer := New(2, nil, WithInterval(time.Hour))
	timer.Stop()
	timer.Start()
	timer.Stop()
	timer.Stop()
}

func TestOnTickReportsRemaining(t *testing.T) {
	var last atomic.Int32
	var fired atomic.Int32
	timer := New(3,
		func() { fired.Add(1) },
		WithInterval(testInterval),
		WithOnTick(func(remaining int) { last.Store(int32(remaining)) }),
	)

	timer.Start()
	waitFor(t, func() bool { return fired.Load() == 1 }, "timer never expired")

	if got := last.Load(); got != 0 {
		t.Errorf("final tick reported remaining = %d, want 0", got)
	}
}
