// Package console 命令行控制台：装配会话、请求管道和资源客户端
package console

import (
	"context"
	"io"

	"github.com/kochabx/workforce/api"
	"github.com/kochabx/workforce/audit"
	"github.com/kochabx/workforce/auth/guard"
	"github.com/kochabx/workforce/auth/session"
	"github.com/kochabx/workforce/auth/store"
	"github.com/kochabx/workforce/config"
	"github.com/kochabx/workforce/core/rate"
	"github.com/kochabx/workforce/log"
	"github.com/kochabx/workforce/notice"
	khttp "github.com/kochabx/workforce/transport/http"
	"github.com/kochabx/workforce/transport/http/metrics"
)

// Env 一次运行共享的组件
type Env struct {
	Settings *config.Settings
	// Config 为 nil 表示配置不是从文件加载的
	Config *config.Config

	Log      *log.Logger
	Notifier notice.Notifier
	Session  *session.Controller
	HTTP     *khttp.Client
	API      *api.Client
	Nav      *guard.Navigator
	Audit    *audit.Auditor
}

// Open 按配置装配各组件并从存储恢复会话
func Open(ctx context.Context, s *config.Settings, c *config.Config, out io.Writer) (*Env, error) {
	logger, err := log.FromConfig(s.Log)
	if err != nil {
		return nil, err
	}
	log.SetGlobalLogger(logger)

	st, err := store.Open(ctx, s.Store)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	aud, err := audit.Open(s.Audit, logger.Named("audit"))
	if err != nil {
		_ = st.Close()
		_ = logger.Close()
		return nil, err
	}

	screen := notice.NewWriter(out)
	notifier := notice.Multi{
		screen,
		notice.Logger{Log: logger.Named("notice")},
	}

	reg := metrics.Prom.Registry()
	sessionMetrics := metrics.NewSession(reg)

	ctrl := session.New(st,
		session.WithNotifier(notifier),
		session.WithLogger(logger.Named("session")),
		session.WithInactivity(s.Session.InactivityWindow, s.Session.Countdown, s.Session.CountdownTick),
		session.WithLoginPath(s.Session.LoginPath),
		session.WithListener(aud.SessionListener()),
		session.WithListener(func(ev session.Event) {
			// 登录后已离开登录页，下次被登出时要重新提示跳转
			if ev.To == session.Authenticated {
				screen.Reset()
			}
		}),
		session.WithListener(func(ev session.Event) {
			sessionMetrics.Transition(string(ev.Reason), ev.To == session.Authenticated)
		}),
	)

	policy := s.Session.Policy()
	clientMetrics := metrics.NewClient(reg)
	hc, err := khttp.New(s.API.BaseURL,
		khttp.WithTimeout(s.API.Timeout),
		khttp.WithPolicy(policy),
		khttp.WithMetrics(clientMetrics),
		khttp.WithLogger(logger.Named("http")),
		khttp.WithRequestInterceptors(
			khttp.RateLimit(rate.New(s.API.RateLimit, s.API.RateBurst)),
			khttp.RequestID(),
			khttp.UserAgent("workforce/"+Version),
			khttp.Bearer(ctrl),
		),
		khttp.WithResponseInterceptors(khttp.SessionGuard(ctrl, notifier, policy, clientMetrics)),
	)
	if err != nil {
		_ = ctrl.Close()
		_ = aud.Close()
		_ = logger.Close()
		return nil, err
	}

	env := &Env{
		Settings: s,
		Config:   c,
		Log:      logger,
		Notifier: notifier,
		Session:  ctrl,
		HTTP:     hc,
		API: api.New(hc,
			api.WithPageSize(s.API.PageSize),
			api.WithWorkers(s.API.Workers),
			api.WithLogger(logger.Named("api")),
		),
		Nav:   guard.NewNavigator(guard.DefaultRoutes(), guard.WithPaths(s.Session.LoginPath, s.Session.DeniedPath)),
		Audit: aud,
	}

	if err := ctrl.Initialize(ctx); err != nil {
		logger.Warn().Err(err).Msg("restore session failed")
	}
	return env, nil
}

// Close 停止定时器并关闭存储、审计和日志
func (e *Env) Close() error {
	err := e.Session.Close()
	if aerr := e.Audit.Close(); err == nil {
		err = aerr
	}
	if lerr := e.Log.Close(); err == nil {
		err = lerr
	}
	return err
}

// RecordAdmin 记录一次管理操作
func (e *Env) RecordAdmin(action string, detail map[string]string) {
	e.Audit.Record(audit.Event{
		Type:    audit.TypeAdmin,
		Subject: e.Session.Session().Subject,
		Reason:  action,
		Detail:  detail,
	})
}
