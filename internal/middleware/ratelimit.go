package middleware

import (
	"fmt"
	"net/http"

	"github.com/pawcare/pawcare-api/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// DefaultRate is the /api rate limit used when nothing else is configured
const DefaultRate = "20-M"

const rateLimitPrefix = "pawcare_ratelimit"

// NewLimiterStore returns a Redis-backed store shared by every replica, or a
// process-local memory store when redisClient is nil
func NewLimiterStore(redisClient *redis.Client) (limiter.Store, error) {
	if redisClient == nil {
		return memorystore.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		}), nil
	}
	store, err := redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: rateLimitPrefix})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}
	return store, nil
}

// RateLimit limits requests per client IP at a fixed rate such as "20-M"
func RateLimit(store limiter.Store, rateStr string) (func(http.Handler) http.Handler, error) {
	if rateStr == "" {
		rateStr = DefaultRate
	}
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rateStr, err)
	}
	return newLimiterMiddleware(store, rate).Handler, nil
}

func newLimiterMiddleware(store limiter.Store, rate limiter.Rate) *stdlibmw.Middleware {
	instance := limiter.New(store, rate)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	return stdlibmw.NewMiddleware(instance,
		stdlibmw.WithKeyGetter(keyGetter),
		stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded", "rate_limited", nil)
		}),
	)
}
