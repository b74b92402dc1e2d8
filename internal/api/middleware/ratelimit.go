// ratelimit.go — ограничение частоты попыток входа по IP клиента.
package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apierrors "github.com/nirudef/aoka-web/internal/api/errors"
)

// idleLimiterTTL — через сколько удаляется лимитер неактивного IP.
const idleLimiterTTL = 10 * time.Minute

// RateLimiter — token bucket на каждый IP клиента.
type RateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*ipLimiter
	now      func() time.Time
	// trusted — прокси, которым разрешено передавать X-Forwarded-For.
	trusted []netip.Prefix
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter создаёт лимитер: perMinute попыток в минуту, burst подряд.
// Неположительные значения заменяются на 10 и 5.
// X-Forwarded-For учитывается только от адресов из trusted.
func NewRateLimiter(perMinute, burst int, trusted []netip.Prefix) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 5
	}
	return &RateLimiter{
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		limiters: make(map[string]*ipLimiter),
		now:      time.Now,
		trusted:  trusted,
	}
}

// Allow расходует одну попытку для ключа.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictIdle(now)

	entry, ok := l.limiters[key]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// evictIdle удаляет лимитеры IP, не появлявшихся дольше idleLimiterTTL.
// Вызывается под l.mu.
func (l *RateLimiter) evictIdle(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > idleLimiterTTL {
			delete(l.limiters, key)
		}
	}
}

// Middleware отклоняет запрос ошибкой API 429, если IP исчерпал попытки.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return l.Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierrors.RateLimited(w, "too many login attempts")
	}))(next)
}

// Limit ограничивает POST-запросы; при исчерпании попыток вызывается reject.
// GET формы входа не ограничивается.
func (l *RateLimiter) Limit(reject http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				if ip := l.ClientIP(r); ip != "" && !l.Allow(ip) {
					w.Header().Set("Retry-After", "60")
					reject.ServeHTTP(w, r)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP возвращает IP клиента. По умолчанию это host из RemoteAddr.
// Если RemoteAddr — доверенный прокси, X-Forwarded-For просматривается
// справа налево до первого недоверенного адреса.
func (l *RateLimiter) ClientIP(r *http.Request) string {
	remote := remoteHost(r.RemoteAddr)
	if !l.isTrusted(remote) {
		return remote
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if _, err := netip.ParseAddr(hop); err != nil {
			// мусор в заголовке: дальше цепочке верить нельзя
			return remote
		}
		if !l.isTrusted(hop) {
			return hop
		}
		remote = hop
	}
	return remote
}

func (l *RateLimiter) isTrusted(ip string) bool {
	if len(l.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range l.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
