package middleware

import (
	"sync"
	"time"

	"libris/config"
	domainerrors "libris/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	defaultRateLimitRPS   = 5
	defaultRateLimitBurst = 10

	// Idle limiter entries are dropped after this long so the map cannot grow
	// without bound under address churn.
	limiterIdleTTL = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware throttles credential endpoints per client IP so a
// single source cannot grind through passwords or reset tokens.
type RateLimitMiddleware struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     rate.Limit
	burst   int
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(cfg *config.Config) *RateLimitMiddleware {
	rps := rate.Limit(defaultRateLimitRPS)
	burst := defaultRateLimitBurst
	if cfg != nil && cfg.RateLimit != nil {
		if cfg.RateLimit.RPS > 0 {
			rps = rate.Limit(cfg.RateLimit.RPS)
		}
		if cfg.RateLimit.Burst > 0 {
			burst = cfg.RateLimit.Burst
		}
	}

	return &RateLimitMiddleware{
		clients: make(map[string]*clientLimiter),
		rps:     rps,
		burst:   burst,
	}
}

// Limit rejects requests that exceed the per-client budget.
func (m *RateLimitMiddleware) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.allow(c.RealIP()) {
			return domainerrors.ErrRateLimited
		}

		return next(c)
	}
}

func (m *RateLimitMiddleware) allow(ip string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	client, ok := m.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(m.rps, m.burst)}
		m.clients[ip] = client
	}
	client.lastSeen = now

	for key, entry := range m.clients {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(m.clients, key)
		}
	}

	return client.limiter.Allow()
}
