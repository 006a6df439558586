package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFired(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case name := <-ch:
		return name
	case <-time.After(time.Second):
		t.Fatal("task did not fire")
		return ""
	}
}

func assertNotFired(t *testing.T, ch <-chan string) {
	t.Helper()
	select {
	case name := <-ch:
		t.Fatalf("unexpected fire of %q", name)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestArmFires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock)
	fired := make(chan string, 1)

	s.Arm("expiration", time.Minute, func() { fired <- "expiration" })
	assert.True(t, s.Armed("expiration"))

	clock.Advance(59 * time.Second)
	assertNotFired(t, fired)

	clock.Advance(time.Second)
	assert.Equal(t, "expiration", waitFired(t, fired))
	assert.False(t, s.Armed("expiration"))
}

func TestArmReplacesSameName(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock)
	fired := make(chan string, 2)

	s.Arm("inactivity", time.Minute, func() { fired <- "first" })
	clock.Advance(30 * time.Second)
	s.Arm("inactivity", time.Minute, func() { fired <- "second" })
	assert.Equal(t, 1, s.Len())

	clock.Advance(30 * time.Second)
	assertNotFired(t, fired)

	clock.Advance(30 * time.Second)
	assert.Equal(t, "second", waitFired(t, fired))
	assertNotFired(t, fired)
}

func TestCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock)
	fired := make(chan string, 1)

	s.Arm("countdown", time.Second, func() { fired <- "countdown" })
	assert.True(t, s.Cancel("countdown"))
	assert.False(t, s.Cancel("countdown"))

	clock.Advance(time.Minute)
	assertNotFired(t, fired)
}

func TestCancelAllAndClose(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock)
	var count atomic.Int32

	for _, name := range []string{"a", "b", "c"} {
		s.Arm(name, time.Second, func() { count.Add(1) })
	}
	s.CancelAll()
	assert.Zero(t, s.Len())

	s.Close()
	s.Arm("late", time.Second, func() { count.Add(1) })
	assert.False(t, s.Armed("late"))

	clock.Advance(time.Minute)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, count.Load())
}

func TestStaleFireIsDropped(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock)
	fired := make(chan string, 1)

	s.Arm("expiration", time.Second, func() { fired <- "old" })
	s.mu.Lock()
	id := s.tasks["expiration"].id
	s.mu.Unlock()

	// 底层定时器已触发但任务在执行前被替换
	s.Arm("expiration", time.Hour, func() { fired <- "new" })
	s.fire("expiration", id, func() { fired <- "old" })
	assertNotFired(t, fired)
	assert.True(t, s.Armed("expiration"))
}

func TestArmFromCallback(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(clock)
	ticks := make(chan string, 3)

	var tick func()
	remaining := 3
	tick = func() {
		remaining--
		if remaining > 0 {
			s.Arm("tick", time.Second, tick)
		}
		ticks <- "tick"
	}
	s.Arm("tick", time.Second, tick)

	for range 3 {
		clock.Advance(time.Second)
		waitFired(t, ticks)
	}
	require.Equal(t, 0, remaining)
	assert.False(t, s.Armed("tick"))
}

func TestNilClockUsesRealClock(t *testing.T) {
	s := New(nil)
	fired := make(chan string, 1)
	s.Arm("now", 0, func() { fired <- "now" })
	assert.Equal(t, "now", waitFired(t, fired))
}
