package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/referral-go-api/internal/utils"
)

// RateLimit throttles a route per authenticated account, falling back to the client IP
// for requests that carry no caller. Buckets are namespaced by scope.
func RateLimit(scope string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   window,
		KeyGenerator: rateLimitKey(scope),
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendErrorWithReason(c, fiber.StatusTooManyRequests, "rate-limited", "too many requests, retry later")
		},
	})
}

func rateLimitKey(scope string) func(*fiber.Ctx) string {
	return func(c *fiber.Ctx) string {
		if id, role, ok := CallerFromLocals(c); ok {
			return scope + ":" + role + ":" + strconv.FormatUint(uint64(id), 10)
		}
		return scope + ":ip:" + c.IP()
	}
}
