package session

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	redisstore "github.com/gofiber/storage/redis/v3"
	"github.com/yanex66/vouchly/internal/config"
)

// ReferralKey holds the referral code captured before signup.
const ReferralKey = "referral_code"

// New builds the session store. Sessions live in Redis when a host is
// configured and in process memory otherwise.
func New(cfg *config.Config) (*session.Store, fiber.Storage, error) {
	var storage fiber.Storage
	if cfg.Redis.Host != "" {
		rs, err := newRedisStorage(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		storage = rs
	}

	store := session.New(session.Config{
		Storage:        storage,
		Expiration:     cfg.Auth.SessionTTL,
		KeyLookup:      "cookie:" + cfg.Auth.SessionCookie,
		CookieSecure:   cfg.Auth.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
	return store, storage, nil
}

// newRedisStorage turns the panic redisstore.New raises on a failed ping
// into an error.
func newRedisStorage(cfg config.RedisConfig) (storage *redisstore.Storage, err error) {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT %q: %w", cfg.Port, err)
	}

	defer func() {
		if r := recover(); r != nil {
			storage, err = nil, fmt.Errorf("redis session storage: %v", r)
		}
	}()
	return redisstore.New(redisstore.Config{
		Host:     cfg.Host,
		Port:     port,
		Password: cfg.Password,
		Database: cfg.DB,
	}), nil
}
