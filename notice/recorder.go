package notice

import "sync"

// Recorder 记录收到的提示和跳转，并发安全
type Recorder struct {
	mu        sync.Mutex
	notices   []Notice
	redirects []string
	ch        chan Notice
}

// NewRecorder 创建记录器，每条提示同时投递到 C()
func NewRecorder() *Recorder {
	return &Recorder{ch: make(chan Notice, 256)}
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()

	select {
	case r.ch <- n:
	default:
	}
}

func (r *Recorder) Redirect(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects = append(r.redirects, path)
}

// C 提示通道
func (r *Recorder) C() <-chan Notice {
	return r.ch
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Message
	}
	return out
}

func (r *Recorder) Redirects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.redirects...)
}

// Reset 清空记录
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
	r.redirects = nil
	for {
		select {
		case <-r.ch:
		default:
			return
		}
	}
}
