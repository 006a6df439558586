// Package timer 具名一次性定时任务
package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler 管理具名、可取消的一次性任务
//
// 同名任务互相替换。被替换或取消的任务即使底层定时器已经触发也不会执行。
type Scheduler struct {
	clock  clockwork.Clock
	mu     sync.Mutex
	tasks  map[string]*task
	seq    uint64
	closed bool
}

type task struct {
	id    uint64
	timer clockwork.Timer
}

// New 创建调度器，clock 为 nil 时使用真实时钟
func New(clock clockwork.Clock) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		clock: clock,
		tasks: make(map[string]*task),
	}
}

// Clock 返回调度器使用的时钟
func (s *Scheduler) Clock() clockwork.Clock {
	return s.clock
}

// Arm 在 d 之后执行 fn，替换同名的已有任务
func (s *Scheduler) Arm(name string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.stopLocked(name)

	s.seq++
	id := s.seq
	t := &task{id: id}
	s.tasks[name] = t
	// 回调需要获取 s.mu，因此 d<=0 时立即触发也会等到 t 登记完成
	t.timer = s.clock.AfterFunc(d, func() { s.fire(name, id, fn) })
}

// Cancel 取消具名任务，返回是否确有任务被取消
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked(name)
}

// CancelAll 取消全部任务
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.tasks {
		s.stopLocked(name)
	}
}

// Armed 任务是否在等待执行
func (s *Scheduler) Armed(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[name]
	return ok
}

// Len 等待中的任务数
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Close 取消全部任务，之后的 Arm 不再生效
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.tasks {
		s.stopLocked(name)
	}
	s.closed = true
}

func (s *Scheduler) stopLocked(name string) bool {
	t, ok := s.tasks[name]
	if !ok {
		return false
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	delete(s.tasks, name)
	return true
}

// fire 只执行仍然登记在册的那一次任务，fn 在锁外运行
func (s *Scheduler) fire(name string, id uint64, fn func()) {
	s.mu.Lock()
	t, ok := s.tasks[name]
	if !ok || t.id != id {
		s.mu.Unlock()
		return
	}
	delete(s.tasks, name)
	s.mu.Unlock()

	fn()
}
