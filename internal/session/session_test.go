package session

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanex66/vouchly/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			SessionTTL:    time.Hour,
			SessionCookie: "vouchly_session",
		},
	}
}

func TestNewWithoutRedisUsesMemory(t *testing.T) {
	store, storage, err := New(testConfig())
	require.NoError(t, err)
	assert.Nil(t, storage)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		sess.Set(ReferralKey, "ada")
		return sess.Save()
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	cookie := resp.Header.Get("Set-Cookie")
	assert.Contains(t, cookie, "vouchly_session=")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "SameSite=Lax")
}

func TestNewRejectsBadRedisPort(t *testing.T) {
	cfg := testConfig()
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: "redis"}

	_, _, err := New(cfg)
	assert.ErrorContains(t, err, "REDIS_PORT")
}

func TestNewReportsUnreachableRedis(t *testing.T) {
	cfg := testConfig()
	// Nothing listens on port 1.
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: "1"}

	store, storage, err := New(cfg)
	assert.Error(t, err)
	assert.Nil(t, store)
	assert.Nil(t, storage)
}
