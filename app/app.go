// Package app 管理控制台进程的生命周期：前台任务、后台服务和退出时的清理
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kochabx/workforce/log"
	"github.com/kochabx/workforce/transport"
)

var (
	ErrAlreadyStarted = errors.New("application already started")
	ErrClosePanic     = errors.New("close function panicked")
)

// Task 前台任务，任一任务返回后应用开始退出
type Task struct {
	Name string
	Fn   func(context.Context) error
}

// CloseFunc 退出时执行的清理函数
type CloseFunc struct {
	Name    string
	Fn      func(context.Context) error
	Timeout time.Duration
}

// Application 运行任务和服务，收到信号或任务结束后关闭服务并按注册的逆序清理
type Application struct {
	ctx             context.Context
	cancel          context.CancelFunc
	shutdownTimeout time.Duration
	closeTimeout    time.Duration
	signals         []os.Signal
	servers         []transport.Server
	tasks           []Task
	closeFuncs      []CloseFunc
	mu              sync.RWMutex
	started         bool
}

type Option func(*Application)

// WithContext 设置根上下文
func WithContext(ctx context.Context) Option {
	return func(app *Application) {
		if ctx != nil {
			app.ctx, app.cancel = context.WithCancel(ctx)
		}
	}
}

func WithShutdownTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.shutdownTimeout = timeout
		}
	}
}

// WithCloseTimeout 清理函数的默认超时
func WithCloseTimeout(timeout time.Duration) Option {
	return func(app *Application) {
		if timeout > 0 {
			app.closeTimeout = timeout
		}
	}
}

// WithSignals 替换默认的退出信号
func WithSignals(signals ...os.Signal) Option {
	return func(app *Application) {
		if len(signals) > 0 {
			app.signals = append([]os.Signal(nil), signals...)
		}
	}
}

func WithServer(server transport.Server) Option {
	return func(app *Application) {
		if server != nil {
			app.servers = append(app.servers, server)
		}
	}
}

func WithTask(name string, fn func(context.Context) error) Option {
	return func(app *Application) {
		if fn != nil {
			app.tasks = append(app.tasks, Task{Name: name, Fn: fn})
		}
	}
}

func WithClose(name string, fn func(context.Context) error, timeout time.Duration) Option {
	return func(app *Application) {
		app.addClose(name, fn, timeout)
	}
}

// New 创建应用
func New(options ...Option) *Application {
	app := &Application{
		shutdownTimeout: 10 * time.Second,
		closeTimeout:    5 * time.Second,
		signals:         []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	for _, opt := range options {
		opt(app)
	}
	return app
}

func (app *Application) addClose(name string, fn func(context.Context) error, timeout time.Duration) {
	if fn == nil {
		log.Warn().Str("name", name).Msg("nil close function ignored")
		return
	}
	if timeout <= 0 {
		timeout = app.closeTimeout
	}
	app.closeFuncs = append(app.closeFuncs, CloseFunc{Name: name, Fn: fn, Timeout: timeout})
}

// AddServer 启动前追加服务
func (app *Application) AddServer(server transport.Server) error {
	if server == nil {
		return errors.New("server cannot be nil")
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.started {
		return ErrAlreadyStarted
	}
	app.servers = append(app.servers, server)
	return nil
}

// RegisterClose 追加清理函数，运行中也可以调用
func (app *Application) RegisterClose(name string, fn func(context.Context) error, timeout time.Duration) error {
	if fn == nil {
		return errors.New("close function cannot be nil")
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	app.addClose(name, fn, timeout)
	return nil
}

// Context 任务使用的上下文，应用退出时取消
func (app *Application) Context() context.Context {
	return app.ctx
}

// Run 阻塞直到收到信号、调用 Stop、任一任务返回或服务出错
func (app *Application) Run() error {
	app.mu.Lock()
	if app.started {
		app.mu.Unlock()
		return ErrAlreadyStarted
	}
	app.started = true
	servers := append([]transport.Server(nil), app.servers...)
	tasks := append([]Task(nil), app.tasks...)
	signals := append([]os.Signal(nil), app.signals...)
	app.mu.Unlock()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, signals...)
	defer signal.Stop(sigCh)

	eg, egCtx := errgroup.WithContext(app.ctx)

	for _, server := range servers {
		eg.Go(func() error {
			if err := server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		eg.Go(func() error {
			<-egCtx.Done()

			ctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout)
			defer cancel()
			return server.Shutdown(ctx)
		})
	}

	for _, task := range tasks {
		eg.Go(func() error {
			// 任务结束即退出
			defer app.cancel()

			err := task.Fn(egCtx)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Str("task", task.Name).Msg("task failed")
				return err
			}
			return nil
		})
	}

	eg.Go(func() error {
		select {
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
			app.cancel()
		case <-egCtx.Done():
		}
		return nil
	})

	err := eg.Wait()
	app.runCloseTasks()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Stop 触发退出
func (app *Application) Stop() {
	app.cancel()
}

// runCloseTasks 按注册的逆序依次执行
func (app *Application) runCloseTasks() {
	app.mu.RLock()
	closeFuncs := append([]CloseFunc(nil), app.closeFuncs...)
	app.mu.RUnlock()

	for i := len(closeFuncs) - 1; i >= 0; i-- {
		_ = app.runCloseTask(closeFuncs[i])
	}
}

func (app *Application) runCloseTask(close CloseFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), close.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("close", close.Name).Msg("close function panicked")
				done <- ErrClosePanic
			}
		}()
		done <- close.Fn(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Str("close", close.Name).Msg("close function failed")
		}
		return err
	case <-ctx.Done():
		log.Warn().Str("close", close.Name).Msg("close function timed out")
		return ctx.Err()
	}
}

// Info 应用状态
func (app *Application) Info() Info {
	app.mu.RLock()
	defer app.mu.RUnlock()

	return Info{
		Started:     app.started,
		ServerCount: len(app.servers),
		TaskCount:   len(app.tasks),
		CloseCount:  len(app.closeFuncs),
	}
}

type Info struct {
	Started     bool `json:"started"`
	ServerCount int  `json:"serverCount"`
	TaskCount   int  `json:"taskCount"`
	CloseCount  int  `json:"closeCount"`
}
