package httpapi

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter *rate.Limiter
	last    time.Time
}

// limiters hands out one token bucket per client IP
type limiters struct {
	mu         sync.Mutex
	rps        rate.Limit
	burst      int
	trustProxy bool
	byIP       map[string]*ipLimiter
}

func newLimiters(rps, burst int, trustProxy bool) *limiters {
	return &limiters{
		rps:        rate.Limit(rps),
		burst:      burst,
		trustProxy: trustProxy,
		byIP:       make(map[string]*ipLimiter),
	}
}

func (l *limiters) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	il, ok := l.byIP[ip]
	if !ok {
		il = &ipLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.byIP[ip] = il
	}
	il.last = time.Now()
	return il.limiter.Allow()
}

// sweep drops limiters idle for longer than maxIdle
func (l *limiters) sweep(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for ip, il := range l.byIP {
		if now.Sub(il.last) > maxIdle {
			delete(l.byIP, ip)
		}
	}
}

func (l *limiters) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(remoteIP(r, l.trustProxy)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// remoteIP keys a request by its peer address. X-Forwarded-For is only
// honoured when trustProxy is set, since any client can forge it.
func remoteIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
