package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/api"
	"github.com/carlpacpaco9-design/HRIS-sub001/internal/transport/http/shared"
)

const limiterIdleTTL = 10 * time.Minute

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*limiterSet)

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(ls *limiterSet) {
		if fn != nil {
			ls.keyFn = fn
		}
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet holds one token bucket per key. Buckets refill evenly over a
// minute and allow a full minute's quota as burst.
type limiterSet struct {
	mu        sync.Mutex
	perMinute int
	every     rate.Limit
	keyFn     RateLimitKeyFunc
	visitors  map[string]*visitor
	lastSweep time.Time
}

func newLimiterSet(perMinute int, keyFn RateLimitKeyFunc) *limiterSet {
	if keyFn == nil {
		keyFn = actorOrIPKey
	}
	ls := &limiterSet{perMinute: perMinute, keyFn: keyFn, visitors: map[string]*visitor{}, lastSweep: time.Now()}
	if perMinute > 0 {
		ls.every = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return ls
}

func (ls *limiterSet) get(key string) *rate.Limiter {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	now := time.Now()
	if now.Sub(ls.lastSweep) > limiterIdleTTL {
		for k, v := range ls.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(ls.visitors, k)
			}
		}
		ls.lastSweep = now
	}

	v, ok := ls.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(ls.every, ls.perMinute)}
		ls.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (ls *limiterSet) enforce(w http.ResponseWriter, r *http.Request) bool {
	if ls.perMinute <= 0 {
		return true
	}
	key := ls.keyFn(r)
	if key == "" {
		key = shared.ClientIP(r)
	}
	limiter := ls.get(key)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(ls.perMinute))
	if limiter.Allow() {
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(int(limiter.Tokens()), 0)))
		return true
	}

	retryAfter := max(int((time.Minute / time.Duration(ls.perMinute)).Seconds()), 1)
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	slog.Warn("rate limit exceeded",
		"key", key,
		"path", r.URL.Path,
		"method", r.Method,
		"perMinute", ls.perMinute,
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// RateLimit throttles each actor (or client IP when anonymous) to perMinute
// requests.
func RateLimit(perMinute int, opts ...RateLimitOption) func(http.Handler) http.Handler {
	ls := newLimiterSet(perMinute, actorOrIPKey)
	for _, opt := range opts {
		opt(ls)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ls.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SensitiveMutationRateLimit adds tighter quotas for login attempts, keyed
// by IP and by submitted e-mail, and for review status changes.
func SensitiveMutationRateLimit(perMinute int) func(http.Handler) http.Handler {
	authLimit := max(perMinute/4, 1)
	mutationLimit := max(perMinute/2, 1)
	authByIP := newLimiterSet(authLimit, shared.ClientIP)
	authByEmail := newLimiterSet(authLimit, AuthEmailOrIPKey("email"))
	transitionsByActor := newLimiterSet(mutationLimit, actorOrIPKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch sensitiveRateScope(r) {
			case sensitiveScopeAuth:
				if !authByIP.enforce(w, r) || !authByEmail.enforce(w, r) {
					return
				}
			case sensitiveScopeActor:
				if !transitionsByActor.enforce(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func AuthEmailOrIPKey(field string) RateLimitKeyFunc {
	normalizedField := strings.TrimSpace(field)
	if normalizedField == "" {
		normalizedField = "email"
	}
	return func(r *http.Request) string {
		email := extractJSONField(r, normalizedField)
		if email == "" {
			return shared.ClientIP(r)
		}
		return "email:" + strings.ToLower(email)
	}
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return shared.ClientIP(r)
}

func extractJSONField(r *http.Request, field string) string {
	if r == nil || r.Body == nil {
		return ""
	}
	contentType := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	if !strings.Contains(contentType, "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if len(raw) == 0 {
		return ""
	}
	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}

type sensitiveScope string

const (
	sensitiveScopeNone  sensitiveScope = ""
	sensitiveScopeAuth  sensitiveScope = "auth"
	sensitiveScopeActor sensitiveScope = "actor"
)

var reviewTransitionSuffixes = []string{"/submit", "/cancel", "/review", "/rate", "/finalize", "/return", "/reopen"}

func sensitiveRateScope(r *http.Request) sensitiveScope {
	if r == nil || r.Method != http.MethodPost {
		return sensitiveScopeNone
	}
	path := normalizedAPIPath(r.URL.Path)
	if path == "/auth/login" {
		return sensitiveScopeAuth
	}
	if strings.HasPrefix(path, "/reviews/") {
		for _, suffix := range reviewTransitionSuffixes {
			if strings.HasSuffix(path, suffix) {
				return sensitiveScopeActor
			}
		}
	}
	return sensitiveScopeNone
}

func normalizedAPIPath(path string) string {
	cleaned := strings.TrimPrefix(strings.TrimSpace(path), "/api/v1")
	if cleaned == "" {
		return "/"
	}
	if !strings.HasPrefix(cleaned, "/") {
		return "/" + cleaned
	}
	return cleaned
}
