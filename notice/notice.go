// Package notice 面向用户的提示与跳转
package notice

import (
	"fmt"
	"io"
	"sync"

	"github.com/kochabx/workforce/log"
)

// Level 提示级别
type Level string

const (
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Notice 一条提示
type Notice struct {
	Level   Level
	Message string
}

func (n Notice) String() string {
	return fmt.Sprintf("[%s] %s", n.Level, n.Message)
}

// Notifier 展示提示并执行跳转
type Notifier interface {
	Notify(n Notice)
	Redirect(path string)
}

// Noop 丢弃一切
type Noop struct{}

func (Noop) Notify(Notice)   {}
func (Noop) Redirect(string) {}

// Multi 依次转发给多个 Notifier
type Multi []Notifier

func (m Multi) Notify(n Notice) {
	for _, x := range m {
		x.Notify(n)
	}
}

func (m Multi) Redirect(path string) {
	for _, x := range m {
		x.Redirect(path)
	}
}

// Writer 把提示写到终端
type Writer struct {
	mu      sync.Mutex
	w       io.Writer
	current string
}

// NewWriter 创建终端提示输出
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Notify(n Notice) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.w, n.String())
}

func (w *Writer) Redirect(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == path {
		return
	}
	w.current = path
	fmt.Fprintf(w.w, "-> %s\n", path)
}

// Reset 离开当前位置，之后跳转到同一路径也会输出
func (w *Writer) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current = ""
}

// Location 最近一次跳转的目标
func (w *Writer) Location() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Logger 把提示记进日志
type Logger struct {
	Log *log.Logger
}

func (l Logger) Notify(n Notice) {
	ev := l.Log.Info()
	switch n.Level {
	case Warning:
		ev = l.Log.Warn()
	case Error:
		ev = l.Log.Error()
	}
	ev.Str("notice", n.Message).Msg("user notice")
}

func (l Logger) Redirect(path string) {
	l.Log.Debug().Str("path", path).Msg("redirect")
}
