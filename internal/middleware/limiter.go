package middleware

import (
	"net/http"
	"sync"
	"time"

	"bazarpay-be/internal/utils"

	"golang.org/x/time/rate"
)

// Rate limit tiers
const (
	// Payment initiation and refunds (strict)
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// Gateway callbacks arrive in bursts after checkout
	limitCallback = rate.Limit(20)
	burstCallback = 40
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitors = make(map[string]*visitor)
	mu       sync.Mutex
)

func init() {
	go cleanupVisitors()
}

func getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	v, exists := visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func cleanupVisitors() {
	for {
		time.Sleep(time.Minute)

		mu.Lock()
		for key, v := range visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(visitors, key)
			}
		}
		mu.Unlock()
	}
}

func limitWith(next http.Handler, tier string, r rate.Limit, b int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// Bucket per ip AND tier, so initiation traffic from an ip cannot
		// consume the callback quota of the same ip (the buyer's browser
		// hits both during one checkout).
		key := utils.ClientIP(req) + ":" + tier
		if !getVisitor(key, r, b).Allow() {
			utils.WriteJSONError(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}

// StrictRateLimit guards payment initiation and refund endpoints.
func StrictRateLimit(next http.Handler) http.Handler {
	return limitWith(next, "strict", limitStrict, burstStrict)
}

// CallbackRateLimit guards the gateway callback endpoints.
func CallbackRateLimit(next http.Handler) http.Handler {
	return limitWith(next, "callback", limitCallback, burstCallback)
}
