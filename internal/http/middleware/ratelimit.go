package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RateLimiter guarda um token bucket por chave (IP ou usuário).
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:     rate.Limit(reqPerSec),
		burst:     burst,
		idleTTL:   10 * time.Minute,
		buckets:   make(map[string]*bucket),
		lastSweep: time.Now(),
	}
}

// reserve consome um token da chave e devolve quanto falta para o próximo, se negado.
func (rl *RateLimiter) reserve(key string, now time.Time) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) > rl.idleTTL {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) > rl.idleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now

	res := b.lim.ReserveN(now, 1)
	if !res.OK() {
		return time.Second, false
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return wait, false
	}
	return 0, true
}

func (rl *RateLimiter) middleware(key func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}
			if wait, ok := rl.reserve(k, time.Now()); !ok {
				secs := int(math.Ceil(wait.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				WriteError(w, http.StatusTooManyRequests, "RATE_LIMIT", "limite de requisições excedido", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IPRateLimit limita rotas públicas pelo IP de origem.
func IPRateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return rl.middleware(clientIP)
}

// UserRateLimit limita pelo usuário autenticado; deve vir depois de Auth.
func UserRateLimit(rl *RateLimiter) func(http.Handler) http.Handler {
	return rl.middleware(func(r *http.Request) string {
		if id := GetUserID(r.Context()); id != uuid.Nil {
			return "user:" + id.String()
		}
		return ""
	})
}

// clientIP usa só RemoteAddr; cabeçalhos de proxy entram via chi RealIP quando TRUST_PROXY está ligado.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
