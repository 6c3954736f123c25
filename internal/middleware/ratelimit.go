package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// Fixed-window limiter backed by Redis so the limit holds across instances.
// INCR + PEXPIRE run atomically in one script.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	log    zerolog.Logger
}

func NewRateLimiter(rdb *redis.Client, perMinute int, log zerolog.Logger) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RateLimiter{
		rdb:    rdb,
		limit:  perMinute,
		window: time.Minute,
		log:    log,
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rl:" + c.ClientIP()

		res, err := fixedWindowScript.Run(
			c.Request.Context(),
			rl.rdb,
			[]string{key},
			rl.window.Milliseconds(),
		).Result()
		if err != nil {
			// Fail open: the limiter being down must not take the API down.
			rl.log.Warn().Err(err).Msg("rate limiter unavailable")
			c.Next()
			return
		}

		count, ok := res.(int64)
		if !ok {
			if s, isStr := res.(string); isStr {
				count, _ = strconv.ParseInt(s, 10, 64)
			}
		}

		if count > int64(rl.limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate_limit_exceeded"})
			return
		}

		c.Next()
	}
}
