package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimit caps requests per client IP. This protects the service itself;
// pacing toward the upstream API lives in the ergast client.
func RateLimit(rps rate.Limit, burst int) echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rps,
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
	})
}
