package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kochabx/workforce/auth/store"
	"github.com/kochabx/workforce/auth/token"
	"github.com/kochabx/workforce/core/timer"
	"github.com/kochabx/workforce/log"
	"github.com/kochabx/workforce/notice"
)

const (
	DefaultInactivity = 4 * time.Minute
	DefaultCountdown  = 60 * time.Second
	DefaultTick       = time.Second
	DefaultLoginPath  = "/login"
)

// Controller 会话控制器
//
// 锁顺序：c.mu 先于调度器内部锁。提示、跳转和监听回调都在 c.mu 之外执行。
type Controller struct {
	mu      sync.Mutex
	current Session
	// epoch 每次替换会话加一，旧会话的定时回调据此作废
	epoch uint64
	// activity 每次重置无操作窗口加一
	activity uint64
	// countdownID 每次开始或取消倒计时加一
	countdownID uint64
	remaining   int

	store        store.Store
	decoder      *token.Decoder
	timers       *timer.Scheduler
	clock        clockwork.Clock
	notifier     notice.Notifier
	log          *log.Logger
	listeners    []func(Event)
	inactivity   time.Duration
	countdown    time.Duration
	tick         time.Duration
	loginPath    string
	storeTimeout time.Duration
}

// New 创建控制器，初始为匿名状态
func New(s store.Store, opts ...Option) *Controller {
	c := &Controller{
		store:        s,
		decoder:      token.NewDecoder(),
		notifier:     notice.Noop{},
		log:          log.G.Named("session"),
		inactivity:   DefaultInactivity,
		countdown:    DefaultCountdown,
		tick:         DefaultTick,
		loginPath:    DefaultLoginPath,
		storeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	c.timers = timer.New(c.clock)
	return c
}

// Initialize 从存储恢复会话
//
// 令牌缺失、无法解码或已过期时进入匿名状态并清理存储，这些情况都不返回错误。
func (c *Controller) Initialize(ctx context.Context) error {
	raw, err := c.store.Get(ctx)
	if errors.Is(err, store.ErrTokenNotFound) {
		c.log.Debug().Msg("no persisted token")
		return nil
	}
	if err != nil {
		return fmt.Errorf("session: read token: %w", err)
	}

	if err := c.accept(ctx, raw, ReasonRestored, false); err != nil {
		c.log.Info().Err(err).Msg("persisted token rejected")
	}
	return nil
}

// Login 接受新签发的令牌并持久化
//
// 令牌无效或存不下时当前会话同样结束；无效时返回 token.ErrDecode 或 token.ErrExpired。
func (c *Controller) Login(ctx context.Context, raw string) error {
	return c.accept(ctx, raw, ReasonLogin, true)
}

func (c *Controller) accept(ctx context.Context, raw string, reason Reason, persist bool) error {
	claims, err := c.decoder.DecodeAt(raw, c.clock.Now())
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			// 已过期等同于过期定时器立即触发
			c.end(ctx, ReasonExpired, MsgExpired)
		} else {
			c.end(ctx, ReasonInvalid, "")
		}
		return err
	}

	c.mu.Lock()
	if persist {
		if err := c.store.Set(ctx, raw); err != nil {
			// 新令牌存不下时旧会话也不能继续
			ev, ended, clearErr := c.resetLocked(ctx, ReasonInvalid)
			c.mu.Unlock()
			if clearErr != nil {
				c.log.Warn().Err(clearErr).Msg("failed to clear persisted token")
			}
			if ended {
				c.log.Info().Str("subject", ev.Subject).Str("reason", string(ev.Reason)).Msg("session ended")
				c.publish(ev)
			}
			return fmt.Errorf("session: persist token: %w", err)
		}
	}

	from := c.current.State()
	c.epoch++
	c.current = Session{
		Token:     raw,
		Subject:   claims.Subject,
		Roles:     claims.Roles,
		ExpiresAt: claims.ExpiresAt,
	}
	c.timers.CancelAll()
	c.remaining = 0
	c.countdownID++

	epoch := c.epoch
	c.timers.Arm(TimerExpiration, claims.Remaining(c.clock.Now()), func() { c.onExpired(epoch) })
	c.armInactivityLocked()

	ev := Event{From: from, To: Authenticated, Subject: claims.Subject, Reason: reason, At: c.clock.Now()}
	c.mu.Unlock()

	c.log.Info().Str("subject", claims.Subject).Strs("roles", claims.Roles).Time("expiresAt", claims.ExpiresAt).Str("reason", string(reason)).Msg("session established")
	c.publish(ev)
	return nil
}

// Logout 主动登出，幂等
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	ev, ended, err := c.resetLocked(ctx, ReasonLogout)
	c.mu.Unlock()

	if ended {
		c.log.Info().Str("subject", ev.Subject).Msg("logged out")
		c.publish(ev)
	}
	return err
}

// ForceLogout 由服务端拒绝触发的登出，返回是否确实结束了一个会话
func (c *Controller) ForceLogout(ctx context.Context, reason Reason) bool {
	c.mu.Lock()
	ev, ended, err := c.resetLocked(ctx, reason)
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Msg("failed to clear persisted token")
	}
	if ended {
		c.log.Warn().Str("subject", ev.Subject).Str("reason", string(reason)).Msg("session ended by server")
		c.publish(ev)
	}
	return ended
}

// Touch 用户活动，重新开始无操作窗口并取消进行中的倒计时
func (c *Controller) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.current.Authenticated() {
		return
	}
	if c.timers.Cancel(TimerCountdown) || c.remaining > 0 {
		c.log.Debug().Msg("inactivity countdown cancelled")
	}
	c.remaining = 0
	c.countdownID++
	c.armInactivityLocked()
}

// Session 当前会话快照
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.clone()
}

// Token 当前令牌，匿名时为空
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Token
}

// Countdown 倒计时剩余秒数，未在倒计时返回 false
func (c *Controller) Countdown() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining <= 0 {
		return 0, false
	}
	return c.seconds(c.remaining), true
}

// Close 停止全部定时器并关闭存储，会话本身保留在存储中
func (c *Controller) Close() error {
	c.timers.Close()
	return c.store.Close()
}

func (c *Controller) armInactivityLocked() {
	c.activity++
	epoch, activity := c.epoch, c.activity
	c.timers.Arm(TimerInactivity, c.inactivity, func() { c.onInactive(epoch, activity) })
}

func (c *Controller) onExpired(epoch uint64) {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.storeTimeout)
	defer cancel()
	ev, ended, err := c.resetLocked(ctx, ReasonExpired)
	c.mu.Unlock()

	c.finish(ev, ended, err, MsgExpired)
}

func (c *Controller) onInactive(epoch, activity uint64) {
	c.mu.Lock()
	if c.epoch != epoch || c.activity != activity || !c.current.Authenticated() {
		c.mu.Unlock()
		return
	}

	c.countdownID++
	c.remaining = max(int((c.countdown+c.tick-1)/c.tick), 1)
	secs := c.seconds(c.remaining)
	id := c.countdownID
	c.timers.Arm(TimerCountdown, c.tick, func() { c.onTick(epoch, id) })
	c.mu.Unlock()

	c.log.Info().Int("seconds", secs).Msg("inactivity countdown started")
	c.notifier.Notify(notice.Notice{Level: notice.Warning, Message: fmt.Sprintf(MsgCountdown, secs)})
}

func (c *Controller) onTick(epoch, id uint64) {
	c.mu.Lock()
	if c.epoch != epoch || c.countdownID != id {
		c.mu.Unlock()
		return
	}

	c.remaining--
	if c.remaining <= 0 {
		ctx, cancel := context.WithTimeout(context.Background(), c.storeTimeout)
		defer cancel()
		ev, ended, err := c.resetLocked(ctx, ReasonInactivity)
		c.mu.Unlock()

		c.finish(ev, ended, err, MsgInactivity)
		return
	}

	// 先排下一拍再发提示，观察到提示时下一拍已经就绪
	c.timers.Arm(TimerCountdown, c.tick, func() { c.onTick(epoch, id) })
	secs := c.seconds(c.remaining)
	c.mu.Unlock()

	c.notifier.Notify(notice.Notice{Level: notice.Warning, Message: fmt.Sprintf(MsgCountdown, secs)})
}

// end 结束会话；msg 非空时即使原本就是匿名也提示并跳转
func (c *Controller) end(ctx context.Context, reason Reason, msg string) {
	c.mu.Lock()
	ev, ended, err := c.resetLocked(ctx, reason)
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Msg("failed to clear persisted token")
	}
	if msg != "" {
		c.notifier.Redirect(c.loginPath)
		c.notifier.Notify(notice.Notice{Level: notice.Error, Message: msg})
	}
	if ended {
		c.log.Info().Str("subject", ev.Subject).Str("reason", string(reason)).Msg("session ended")
		c.publish(ev)
	}
}

func (c *Controller) finish(ev Event, ended bool, err error, msg string) {
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to clear persisted token")
	}
	if !ended {
		return
	}

	c.log.Info().Str("subject", ev.Subject).Str("reason", string(ev.Reason)).Msg("session ended")
	c.notifier.Redirect(c.loginPath)
	c.notifier.Notify(notice.Notice{Level: notice.Error, Message: msg})
	c.publish(ev)
}

// resetLocked 进入匿名状态，清理存储和定时器；调用方持有 c.mu
func (c *Controller) resetLocked(ctx context.Context, reason Reason) (Event, bool, error) {
	c.timers.CancelAll()
	c.remaining = 0
	c.countdownID++

	err := c.store.Clear(ctx)

	from := c.current
	ev := Event{From: from.State(), To: Anonymous, Subject: from.Subject, Reason: reason, At: c.clock.Now()}
	if !from.Authenticated() {
		return ev, false, err
	}

	c.epoch++
	c.current = Session{}
	return ev, true, err
}

func (c *Controller) seconds(steps int) int {
	return int((time.Duration(steps) * c.tick).Round(time.Second) / time.Second)
}

func (c *Controller) publish(ev Event) {
	for _, fn := range c.listeners {
		fn(ev)
	}
}
