// Package audit 记录会话变化和管理操作
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/kochabx/workforce/auth/session"
	"github.com/kochabx/workforce/log"
)

// Event 一条审计记录
type Event struct {
	Type    string            `json:"type"`
	Subject string            `json:"subject,omitempty"`
	Reason  string            `json:"reason,omitempty"`
	At      time.Time         `json:"at"`
	Detail  map[string]string `json:"detail,omitempty"`
}

const (
	TypeSession = "session"
	TypeAdmin   = "admin"
)

// Sink 审计记录的去处
type Sink interface {
	Write(ctx context.Context, ev Event) error
	Close() error
}

// Auditor 异步把记录发往各个 Sink，调用方不会被慢速 Sink 阻塞
type Auditor struct {
	sinks   []Sink
	ch      chan Event
	log     *log.Logger
	timeout time.Duration
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
}

// New 创建并启动审计器
func New(buffer int, sinks ...Sink) *Auditor {
	if buffer <= 0 {
		buffer = 64
	}
	a := &Auditor{
		sinks:   sinks,
		ch:      make(chan Event, buffer),
		log:     log.G.Named("audit"),
		timeout: 5 * time.Second,
	}
	a.wg.Add(1)
	go a.run()
	return a
}

// Record 投递一条记录，缓冲区满时丢弃并记日志
func (a *Auditor) Record(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}

	select {
	case a.ch <- ev:
	default:
		a.log.Warn().Str("type", ev.Type).Msg("audit buffer full, event dropped")
	}
}

// SessionListener 作为 session.WithListener 的回调
func (a *Auditor) SessionListener() func(session.Event) {
	return func(ev session.Event) {
		a.Record(Event{
			Type:    TypeSession,
			Subject: ev.Subject,
			Reason:  string(ev.Reason),
			At:      ev.At,
			Detail:  map[string]string{"from": ev.From.String(), "to": ev.To.String()},
		})
	}
}

func (a *Auditor) run() {
	defer a.wg.Done()
	for ev := range a.ch {
		for _, s := range a.sinks {
			ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
			if err := s.Write(ctx, ev); err != nil {
				a.log.Warn().Err(err).Str("type", ev.Type).Msg("audit write failed")
			}
			cancel()
		}
	}
}

// Close 写完缓冲区中的记录后关闭所有 Sink
func (a *Auditor) Close() error {
	var err error
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.ch)
		a.mu.Unlock()

		a.wg.Wait()
		for _, s := range a.sinks {
			if cerr := s.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}
