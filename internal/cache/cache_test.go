package cache

import (
	"context"
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/models"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("init redis failed: %v", err)
	}
	if Enabled() || Client() != nil {
		t.Fatalf("cache should be disabled")
	}
	ctx := context.Background()
	var dest map[string]string
	hit, err := GetJSON(ctx, "missing", &dest)
	if err != nil || hit {
		t.Fatalf("disabled get should miss without error, hit=%v err=%v", hit, err)
	}
	if err := SetUserAuthState(ctx, BuildUserAuthState(&models.User{ID: 1, Status: "active"})); err != nil {
		t.Fatalf("disabled set should be noop: %v", err)
	}

	lock, ok, err := AcquireLock(ctx, "gateway:order_1", time.Second)
	if err != nil || !ok || lock == nil {
		t.Fatalf("disabled lock should be granted, ok=%v err=%v", ok, err)
	}
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}
}

func TestBuildKeyUsesPrefix(t *testing.T) {
	store.prefix = "sf"
	if got := buildKey(" cart:1 "); got != "sf:cart:1" {
		t.Fatalf("key mismatch: %s", got)
	}
	if got := buildKey(""); got != "sf" {
		t.Fatalf("empty key should fall back to prefix, got %s", got)
	}
}
