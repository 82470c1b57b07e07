package config

// Redis backs the cart mirrors, the catalog response cache and the rate
// limiter.  If the server cannot be reached at startup NewRedisClient
// returns nil and callers degrade: mirrors fall back to memory, caching and
// rate limiting are disabled.

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig is read from:
//   REDIS_ADDR      – host:port (REDIS_HOST + REDIS_PORT take precedence)
//   REDIS_PASSWORD  – optional password
//   REDIS_DB        – database number (default 0)
//   REDIS_TLS       – enable TLS
type RedisConfig struct {
    Addr     string
    Password string
    DB       int
    TLS      bool
}

func LoadRedisConfig() RedisConfig {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    if h, p := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); h != "" && p != "" {
        addr = h + ":" + p
    }
    return RedisConfig{
        Addr:     addr,
        Password: envStr("REDIS_PASSWORD", ""),
        DB:       envInt("REDIS_DB", 0),
        TLS:      envBool("REDIS_TLS", false),
    }
}

// NewRedisClient connects with a short ping.  It returns nil on failure.
func NewRedisClient(rc RedisConfig) *redis.Client {
    var tlsConf *tls.Config
    if rc.TLS {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      rc.Addr,
        Password:  rc.Password,
        DB:        rc.DB,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
