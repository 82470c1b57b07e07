package config

import (
	"testing"
	"time"
)

func TestRateLimitClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	rl := LoadRateLimitConfig()
	if rl.Capacity != 1 || rl.RefillTokens != 1 {
		t.Fatalf("clamp failed: %+v", rl)
	}
	if rl.TTL != 10*time.Second {
		t.Fatalf("ttl = %s", rl.TTL)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "Yes")
	t.Setenv("X_INT", "nope")
	t.Setenv("X_DUR", "90s")
	if !envBool("X_BOOL", false) {
		t.Fatal("envBool")
	}
	if envInt("X_INT", 7) != 7 {
		t.Fatal("envInt fallback")
	}
	if envDur("X_DUR", 0) != 90*time.Second {
		t.Fatal("envDur")
	}
	if m := parseMethods(" get, head ,"); !m["GET"] || !m["HEAD"] || len(m) != 2 {
		t.Fatalf("parseMethods = %v", m)
	}
}

func TestRedisHostPortPrecedence(t *testing.T) {
	t.Setenv("REDIS_ADDR", "a:1")
	t.Setenv("REDIS_HOST", "b")
	t.Setenv("REDIS_PORT", "2")
	if got := LoadRedisConfig().Addr; got != "b:2" {
		t.Fatalf("addr = %s", got)
	}
}
