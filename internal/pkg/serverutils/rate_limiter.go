package serverutils

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
)

// RateLimiter is a fixed-window per-IP limiter backed by an expiring
// in-memory cache. Each named limiter owns its window independently, so a
// burst of uploads cannot exhaust the login budget.
type RateLimiter struct {
	name    string
	max     int64
	window  time.Duration
	message string
	buckets *cache.Cache
}

func NewRateLimiter(name string, max int, window time.Duration, message string) *RateLimiter {
	return &RateLimiter{
		name:    name,
		max:     int64(max),
		window:  window,
		message: message,
		buckets: cache.New(window, 2*window),
	}
}

func (rl *RateLimiter) Handler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		key := fmt.Sprintf("%s:%s", rl.name, ctx.IP())

		// Add is a no-op when the bucket already exists; the expiry set
		// here defines the window boundary.
		_ = rl.buckets.Add(key, int64(0), rl.window)
		count, err := rl.buckets.IncrementInt64(key, 1)
		if err != nil {
			// Bucket expired between Add and Increment; start a new window.
			rl.buckets.Set(key, int64(1), rl.window)
			count = 1
		}

		if count > rl.max {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Too Many Requests",
				"message": rl.message,
			})
		}
		return ctx.Next()
	}
}

// Per-route-group budgets.

func NewLoginRateLimiter() *RateLimiter {
	return NewRateLimiter("login", 5, 15*time.Minute,
		"Too many login attempts. Please try again in 15 minutes.")
}

func NewRegisterRateLimiter() *RateLimiter {
	return NewRateLimiter("register", 3, time.Hour,
		"Too many accounts created. Please try again in 1 hour.")
}

func NewUploadRateLimiter() *RateLimiter {
	return NewRateLimiter("upload", 20, time.Hour,
		"Too many file uploads. Please try again in 1 hour.")
}

func NewGeneralRateLimiter() *RateLimiter {
	return NewRateLimiter("general", 100, 15*time.Minute,
		"Too many requests. Please try again later.")
}
