package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/workforce/auth/store"
	"github.com/kochabx/workforce/auth/token"
	"github.com/kochabx/workforce/auth/token/tokentest"
	"github.com/kochabx/workforce/notice"
)

type harness struct {
	ctrl   *Controller
	clock  clockwork.FakeClock
	store  *store.Memory
	notes  *notice.Recorder
	mu     sync.Mutex
	events []Event
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		clock: clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		store: store.NewMemory(),
		notes: notice.NewRecorder(),
	}
	base := []Option{
		WithClock(h.clock),
		WithNotifier(h.notes),
		WithListener(func(ev Event) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.events = append(h.events, ev)
		}),
	}
	h.ctrl = New(h.store, append(base, opts...)...)
	t.Cleanup(func() { h.ctrl.Close() })
	return h
}

func (h *harness) mint(subject string, ttl time.Duration, roles ...string) string {
	return tokentest.Mint(subject, h.clock.Now().Add(ttl), roles...)
}

func (h *harness) persisted() string {
	raw, _ := h.store.Get(context.Background())
	return raw
}

func (h *harness) reasons() []Reason {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Reason, len(h.events))
	for i, ev := range h.events {
		out[i] = ev.Reason
	}
	return out
}

func (h *harness) next(t *testing.T) string {
	t.Helper()
	select {
	case n := <-h.notes.C():
		return n.Message
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notice")
		return ""
	}
}

func (h *harness) quiet(t *testing.T) {
	t.Helper()
	select {
	case n := <-h.notes.C():
		t.Fatalf("unexpected notice %q", n.Message)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestInitializeRestoresSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, h.mint("alice", time.Hour, "ADMIN", "USER")))

	require.NoError(t, h.ctrl.Initialize(ctx))

	s := h.ctrl.Session()
	assert.Equal(t, Authenticated, s.State())
	assert.Equal(t, "alice", s.Subject)
	assert.Equal(t, []string{"ADMIN", "USER"}, s.Roles)
	assert.True(t, h.ctrl.timers.Armed(TimerExpiration))
	assert.True(t, h.ctrl.timers.Armed(TimerInactivity))
	assert.Equal(t, []Reason{ReasonRestored}, h.reasons())
}

func TestInitializeWithoutToken(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.Initialize(context.Background()))

	assert.Equal(t, Anonymous, h.ctrl.Session().State())
	assert.Zero(t, h.ctrl.timers.Len())
	h.quiet(t)
}

func TestInitializeExpiredToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, h.mint("alice", -time.Minute)))

	require.NoError(t, h.ctrl.Initialize(ctx))

	assert.Equal(t, Anonymous, h.ctrl.Session().State())
	assert.Empty(t, h.persisted())
	assert.Zero(t, h.ctrl.timers.Len())
	assert.Equal(t, MsgExpired, h.next(t))
	assert.Equal(t, []string{"/login"}, h.notes.Redirects())
}

func TestInitializeMalformedToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Set(ctx, "definitely.not.a-token"))

	require.NoError(t, h.ctrl.Initialize(ctx))

	assert.Equal(t, Anonymous, h.ctrl.Session().State())
	assert.Empty(t, h.persisted())
	h.quiet(t)
}

func TestLoginRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	raw := h.mint("bob", time.Hour, "USER")

	require.NoError(t, h.ctrl.Login(ctx, raw))
	assert.Equal(t, raw, h.persisted())
	assert.Equal(t, raw, h.ctrl.Token())

	// 模拟重新启动：同一个存储，新的控制器
	reloaded := New(h.store, WithClock(h.clock))
	defer reloaded.Close()
	require.NoError(t, reloaded.Initialize(ctx))

	before, after := h.ctrl.Session(), reloaded.Session()
	assert.Equal(t, before.Subject, after.Subject)
	assert.Equal(t, before.Roles, after.Roles)
	assert.Equal(t, Authenticated, after.State())
}

func TestLoginMalformedEndsSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.ctrl.Login(ctx, h.mint("bob", time.Hour)))

	err := h.ctrl.Login(ctx, "garbage")
	assert.ErrorIs(t, err, token.ErrDecode)

	assert.Equal(t, Anonymous, h.ctrl.Session().State())
	assert.Zero(t, h.ctrl.timers.Len())
	assert.Empty(t, h.persisted())
	assert.Equal(t, []Reason{ReasonLogin, ReasonInvalid}, h.reasons())
}

// flakyStore Set 在 fail 打开时失败
type flakyStore struct {
	*store.Memory
	mu   sync.Mutex
	fail bool
}

func (s *flakyStore) setFail(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = v
}

func (s *flakyStore) Set(ctx context.Context, raw string) error {
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return fmt.Errorf("disk full")
	}
	return s.Memory.Set(ctx, raw)
}

func TestLoginPersistFailureEndsSession(t *testing.T) {
	clock := clockwork.NewFakeClock()
	st := &flakyStore{Memory: store.NewMemory()}
	notes := notice.NewRecorder()
	var (
		mu      sync.Mutex
		reasons []Reason
	)
	ctrl := New(st, WithClock(clock), WithNotifier(notes), WithListener(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		reasons = append(reasons, ev.Reason)
	}))
	t.Cleanup(func() { ctrl.Close() })
	ctx := context.Background()

	require.NoError(t, ctrl.Login(ctx, tokentest.Mint("alice", clock.Now().Add(time.Hour), "ADMIN")))
	require.Equal(t, "alice", ctrl.Session().Subject)

	st.setFail(true)
	err := ctrl.Login(ctx, tokentest.Mint("bob", clock.Now().Add(time.Hour), "USER"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	s := ctrl.Session()
	assert.Equal(t, Anonymous, s.State())
	assert.Empty(t, s.Subject)
	assert.Empty(t, s.Roles)
	assert.Empty(t, ctrl.Token())
	assert.Zero(t, ctrl.timers.Len())

	raw, err := st.Get(ctx)
	assert.Empty(t, raw)
	assert.ErrorIs(t, err, store.ErrTokenNotFound)

	mu.Lock()
	assert.Equal(t, []Reason{ReasonLogin, ReasonInvalid}, reasons)
	mu.Unlock()
}

func TestLoginExpiredNeverAuthenticates(t *testing.T) {
	h := newHarness(t)

	err := h.ctrl.Login(context.Background(), h.mint("bob", 0))
	assert.ErrorIs(t, err, token.ErrExpired)

	assert.Equal(t, Anonymous, h.ctrl.Session().State())
	assert.Zero(t, h.ctrl.timers.Len())
	assert.Empty(t, h.persisted())
	assert.Equal(t, MsgExpired, h.next(t))
	assert.Empty(t, h.reasons())
}

func TestExpirationFires(t *testing.T) {
	h := newHarness(t, WithInactivity(time.Hour, 0, 0))
	require.NoError(t, h.ctrl.Login(context.Background(), h.mint("carol", 10*time.Minute)))

	h.clock.Advance(10*time.Minute - time.Second)
	h.quiet(t)
	assert.Equal(t, Authenticated, h.ctrl.Session().State())

	h.clock.Advance(time.Second)
	assert.Equal(t, MsgExpired, h.next(t))
	assert.Equal(t, Anonymous, h.ctrl.Session().State())
	assert.Empty(t, h.persisted())
	assert.Equal(t, []string{"/login"}, h.notes.Redirects())
	assert.Zero(t, h.ctrl.timers.Len())

	h.clock.Advance(time.Hour)
	h.quiet(t)
	assert.Eventually(t, func() bool {
		return len(h.reasons()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []Reason{ReasonLogin, ReasonExpired}, h.reasons())
}

func TestReloginReplacesTimers(t *testing.T) {
	h := newHarness(t, WithInactivity(time.Hour, 0, 0))
	ctx := context.Background()

	require.NoError(t, h.ctrl.Login(ctx, h.mint("dave", 5*time.Minute)))
	h.clock.Advance(time.Minute)
	second := h.mint("dave", 10*time.Minute, "ADMIN")
	require.NoError(t, h.ctrl.Login(ctx, second))
	assert.Equal(t, 2, h.ctrl.timers.Len())

	// 第一个令牌原本的过期时刻
	h.clock.Advance(4 * time.Minute)
	h.quiet(t)
	assert.Equal(t, second, h.ctrl.Token())
	assert.Equal(t, []string{"ADMIN"}, h.ctrl.Session().Roles)

	h.clock.Advance(6 * time.Minute)
	assert.Equal(t, MsgExpired, h.next(t))
	h.quiet(t)
}

func TestInactivityCountdown(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.Login(context.Background(), h.mint("erin", time.Hour)))

	h.clock.Advance(4*time.Minute - time.Second)
	h.quiet(t)

	h.clock.Advance(time.Second)
	assert.Equal(t, "Logging out in 60 seconds...", h.next(t))
	remaining, active := h.ctrl.Countdown()
	assert.True(t, active)
	assert.Equal(t, 60, remaining)
	assert.Equal(t, Authenticated, h.ctrl.Session().State(), "countdown does not log out")

	for n := 59; n >= 1; n-- {
		h.clock.Advance(time.Second)
		assert.Equal(t, fmt.Sprintf("Logging out in %d seconds...", n), h.next(t))
	}

	h.clock.Advance(time.Second)
	assert.Equal(t, MsgInactivity, h.next(t))
	assert.Equal(t, Anonymous, h.ctrl.Session().State())
	assert.Empty(t, h.persisted())
	assert.Equal(t, []string{"/login"}, h.notes.Redirects())
	_, active = h.ctrl.Countdown()
	assert.False(t, active)
}

func TestTouchCancelsCountdown(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.Login(context.Background(), h.mint("frank", time.Hour)))

	h.clock.Advance(4 * time.Minute)
	assert.Equal(t, "Logging out in 60 seconds...", h.next(t))
	for n := 59; n >= 50; n-- {
		h.clock.Advance(time.Second)
		assert.Equal(t, fmt.Sprintf("Logging out in %d seconds...", n), h.next(t))
	}

	h.ctrl.Touch()
	_, active := h.ctrl.Countdown()
	assert.False(t, active)
	assert.False(t, h.ctrl.timers.Armed(TimerCountdown))
	assert.True(t, h.ctrl.timers.Armed(TimerInactivity))

	h.clock.Advance(time.Minute)
	h.quiet(t)
	assert.Equal(t, Authenticated, h.ctrl.Session().State())

	// 新的四分钟窗口从 Touch 开始计算
	h.clock.Advance(3*time.Minute - time.Second)
	h.quiet(t)
	h.clock.Advance(time.Second)
	assert.Equal(t, "Logging out in 60 seconds...", h.next(t))
}

func TestTouchRestartsWindow(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.Login(context.Background(), h.mint("grace", time.Hour)))

	h.clock.Advance(3 * time.Minute)
	h.ctrl.Touch()
	h.clock.Advance(3 * time.Minute)
	h.quiet(t)

	h.clock.Advance(time.Minute)
	assert.Equal(t, "Logging out in 60 seconds...", h.next(t))
}

func TestTouchWhileAnonymous(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Touch()
	assert.Zero(t, h.ctrl.timers.Len())
}

func TestCustomCountdown(t *testing.T) {
	h := newHarness(t, WithInactivity(time.Minute, 3*time.Second, time.Second))
	require.NoError(t, h.ctrl.Login(context.Background(), h.mint("heidi", time.Hour)))

	h.clock.Advance(time.Minute)
	assert.Equal(t, "Logging out in 3 seconds...", h.next(t))
	h.clock.Advance(time.Second)
	assert.Equal(t, "Logging out in 2 seconds...", h.next(t))
	h.clock.Advance(time.Second)
	assert.Equal(t, "Logging out in 1 seconds...", h.next(t))
	h.clock.Advance(time.Second)
	assert.Equal(t, MsgInactivity, h.next(t))
}

func TestLogoutIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.ctrl.Login(ctx, h.mint("ivan", time.Hour)))

	for range 3 {
		require.NoError(t, h.ctrl.Logout(ctx))
		assert.Equal(t, Anonymous, h.ctrl.Session().State())
		assert.Empty(t, h.persisted())
		assert.Zero(t, h.ctrl.timers.Len())
	}
	assert.Equal(t, []Reason{ReasonLogin, ReasonLogout}, h.reasons())
	h.quiet(t)
}

func TestForceLogout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.ctrl.Login(ctx, h.mint("judy", time.Hour)))

	assert.True(t, h.ctrl.ForceLogout(ctx, ReasonUnauthorized))
	assert.False(t, h.ctrl.ForceLogout(ctx, ReasonUnauthorized))
	assert.Equal(t, Anonymous, h.ctrl.Session().State())
	assert.Empty(t, h.persisted())
	assert.Equal(t, []Reason{ReasonLogin, ReasonUnauthorized}, h.reasons())

	// 登出后旧的定时器不再有效果
	h.clock.Advance(2 * time.Hour)
	h.quiet(t)
}

func TestSessionSnapshotIsCopy(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.Login(context.Background(), h.mint("ken", time.Hour, "ADMIN")))

	s := h.ctrl.Session()
	s.Roles[0] = "HACKED"
	assert.Equal(t, []string{"ADMIN"}, h.ctrl.Session().Roles)
}

func TestHasAnyRole(t *testing.T) {
	s := Session{Token: "t", Subject: "x", Roles: []string{"ADMIN"}}
	assert.True(t, s.HasAnyRole("USER", "ADMIN"))
	assert.False(t, s.HasAnyRole("USER"))
	assert.False(t, s.HasAnyRole())
	assert.False(t, Session{Roles: []string{"ADMIN"}}.HasAnyRole("ADMIN"))
	assert.Equal(t, "anonymous", Session{}.State().String())
}
