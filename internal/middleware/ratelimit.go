package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the per-IP limiter map; stale entries are pruned
// once it is exceeded.
const maxTrackedClients = 10000

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit throttles requests per client IP: each client may issue up to
// limit requests per window, with the full quota available as a burst. Over
// quota requests get a 429 with a Retry-After hint.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = 60
	}
	if per <= 0 {
		per = time.Minute
	}
	interval := per / time.Duration(limit)

	var mu sync.Mutex
	clients := make(map[string]*rateClient)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		c, ok := clients[ip]
		if !ok {
			if len(clients) >= maxTrackedClients {
				pruneStaleClients(clients, per)
			}
			c = &rateClient{limiter: rate.NewLimiter(rate.Every(interval), limit)}
			clients[ip] = c
		}
		c.lastSeen = time.Now()
		return c.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiterFor(clientIP(r)).Allow() {
				retry := int(interval/time.Second) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// pruneStaleClients drops clients idle for two full windows. Caller holds the
// lock.
func pruneStaleClients(clients map[string]*rateClient, per time.Duration) {
	cutoff := time.Now().Add(-2 * per)
	for ip, c := range clients {
		if c.lastSeen.Before(cutoff) {
			delete(clients, ip)
		}
	}
}

// clientIP prefers the first valid X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
