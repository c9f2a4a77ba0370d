package auth

import (
	"sync"

	"golang.org/x/time/rate"
)

const (
	defaultRPS   = 5
	defaultBurst = 10
)

// limiterPool lazily hands out one token bucket per client key. Buckets are
// never evicted; the key space is bounded by the set of client IPs seen.
type limiterPool struct {
	mu  sync.Mutex
	m   map[string]*rate.Limiter
	cfg SecConfig
}

// Allow reports whether the client identified by key may proceed.
func (p *limiterPool) Allow(key string) bool {
	p.mu.Lock()
	l, ok := p.m[key]
	if !ok {
		rps := p.cfg.RPS
		if rps <= 0 {
			rps = defaultRPS
		}
		burst := p.cfg.Burst
		if burst <= 0 {
			burst = defaultBurst
		}
		l = rate.NewLimiter(rate.Limit(rps), burst)
		if p.m == nil {
			p.m = make(map[string]*rate.Limiter)
		}
		p.m[key] = l
	}
	p.mu.Unlock()
	return l.Allow()
}
