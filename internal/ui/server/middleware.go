package server

import (
	"container/list"
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Its-donkey/eventpage/logging"
)

// securityHeaders sets the response headers every page response carries.
// The page boots WebAssembly from an inline loader, hence the script-src
// allowances.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline' 'wasm-unsafe-eval'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data:; "+
				"connect-src 'self'; "+
				"frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = 5 * time.Minute
	evictionLogInterval  = 30 * time.Second
)

// clientLimiter is one client's token bucket and its place in the LRU list.
type clientLimiter struct {
	ip       string
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps a token bucket per client IP, evicting the least recently
// seen client once maxClients are tracked.
type rateLimiter struct {
	rps        float64
	burst      int
	maxClients int
	logger     *logging.Logger
	now        func() time.Time

	mu           sync.Mutex
	items        map[string]*list.Element
	order        *list.List // front is most recent
	lastEvictLog time.Time
	evictCount   int
}

func newRateLimiter(rps float64, burst, maxClients int, logger *logging.Logger) *rateLimiter {
	if maxClients <= 0 {
		maxClients = 10000
	}
	return &rateLimiter{
		rps:        rps,
		burst:      burst,
		maxClients: maxClients,
		logger:     logger,
		now:        time.Now,
		items:      make(map[string]*list.Element),
		order:      list.New(),
	}
}

// run drops idle clients until ctx is cancelled. The returned channel closes
// when the sweeper exits.
func (rl *rateLimiter) run(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(limiterSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
	return done
}

func (rl *rateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	// LRU order tracks access recency, so stale entries can sit anywhere.
	for e := rl.order.Back(); e != nil; {
		prev := e.Prev()
		if c := e.Value.(*clientLimiter); now.Sub(c.lastSeen) > limiterIdleTTL {
			rl.order.Remove(e)
			delete(rl.items, c.ip)
		}
		e = prev
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	if elem, ok := rl.items[ip]; ok {
		rl.order.MoveToFront(elem)
		c := elem.Value.(*clientLimiter)
		c.lastSeen = now
		return c.limiter.AllowN(now, 1)
	}
	if rl.order.Len() >= rl.maxClients {
		if back := rl.order.Back(); back != nil {
			evicted := back.Value.(*clientLimiter)
			rl.order.Remove(back)
			delete(rl.items, evicted.ip)
			rl.evictCount++
			if now.Sub(rl.lastEvictLog) >= evictionLogInterval {
				rl.logger.Warn("ratelimit", "evicted least recent clients", map[string]any{
					"evicted":     rl.evictCount,
					"max_clients": rl.maxClients,
				})
				rl.lastEvictLog = now
				rl.evictCount = 0
			}
		}
	}
	c := &clientLimiter{ip: ip, limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst), lastSeen: now}
	rl.items[ip] = rl.order.PushFront(c)
	return c.limiter.AllowN(now, 1)
}

func (rl *rateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.order.Len()
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP trusts X-Forwarded-For and X-Real-IP only from loopback or
// private peers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer := net.ParseIP(host)
	if peer != nil && (peer.IsLoopback() || peer.IsPrivate()) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	if peer != nil {
		return peer.String()
	}
	return host
}
