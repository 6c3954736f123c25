package main

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/townbook-za/townbook/internal/config"
	dbpkg "github.com/townbook-za/townbook/internal/db"
	"github.com/townbook-za/townbook/internal/routes"
)

func main() {

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()
	db := dbpkg.NewDB(cfg, log)

	rdb := newRedis(cfg, log)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, rdb, cfg, log)

	log.Info().Str("addr", cfg.Addr()).Msg("server listening")
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// newRedis connects eagerly so a bad REDIS_URL surfaces at boot, not on
// the first rate-limited request.
func newRedis(cfg *config.Config, log zerolog.Logger) *redis.Client {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid REDIS_URL")
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(rdb.Context()).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, realtime and rate limiting degraded")
	}

	return rdb
}
