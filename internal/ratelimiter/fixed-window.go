package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowRateLimiter counts requests per client in windows that start
// with the client's first request. The cleanup loop drops clients whose
// window has ended.
type FixedWindowRateLimiter struct {
	sync.Mutex
	clients map[string]window //string:UserIP
	limit   int
	window  time.Duration
	now     func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

type window struct {
	start time.Time
	count int
}

func NewFixedWindowLimiter(limit int, w time.Duration) *FixedWindowRateLimiter {
	rl := &FixedWindowRateLimiter{
		clients: make(map[string]window),
		limit:   limit,
		window:  w,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *FixedWindowRateLimiter) cleanup() {
	defer close(rl.done)
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *FixedWindowRateLimiter) sweep() {
	rl.Lock()
	defer rl.Unlock()
	now := rl.now()
	for ip, w := range rl.clients {
		if now.Sub(w.start) >= rl.window {
			delete(rl.clients, ip)
		}
	}
}

// Allow reports whether ip may make another request. When it may not, the
// duration is how long until its window ends.
func (rl *FixedWindowRateLimiter) Allow(ip string) (bool, time.Duration) {
	rl.Lock()
	defer rl.Unlock()

	now := rl.now()
	w, exists := rl.clients[ip]
	if !exists || now.Sub(w.start) >= rl.window {
		rl.clients[ip] = window{start: now, count: 1}
		return true, 0
	}
	if w.count < rl.limit {
		w.count++
		rl.clients[ip] = w
		return true, 0
	}
	return false, rl.window - now.Sub(w.start)
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (rl *FixedWindowRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
	<-rl.done
}
