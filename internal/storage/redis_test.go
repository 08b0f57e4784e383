package storage

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/carbontrack/internal/config"
)

func newMiniredisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cache := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestRedisCache_PutLookupDelete(t *testing.T) {
	cache, _ := newMiniredisCache(t)
	ctx := testContext(t)

	if _, ok, err := cache.Lookup(ctx, "carbontrack_token"); err != nil || ok {
		t.Fatalf("Lookup() on empty cache = ok %v, err %v", ok, err)
	}

	if err := cache.Put(ctx, "carbontrack_token", "tok", 0); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, ok, err := cache.Lookup(ctx, "carbontrack_token")
	if err != nil || !ok {
		t.Fatalf("Lookup() = ok %v, err %v", ok, err)
	}
	if got != "tok" {
		t.Errorf("Lookup() = %v, want tok", got)
	}

	if err := cache.Delete(ctx, "carbontrack_token", "never_set"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := cache.Lookup(ctx, "carbontrack_token"); ok {
		t.Error("key still present after Delete")
	}
	if err := cache.Delete(ctx); err != nil {
		t.Errorf("Delete() with no keys error = %v", err)
	}
}

func TestRedisCache_Expiry(t *testing.T) {
	cache, mr := newMiniredisCache(t)
	ctx := testContext(t)

	if err := cache.Put(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	mr.FastForward(50 * time.Second)
	if err := cache.Refresh(ctx, time.Minute, "k", "missing"); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	mr.FastForward(50 * time.Second)
	if _, ok, _ := cache.Lookup(ctx, "k"); !ok {
		t.Fatal("refreshed key expired early")
	}
	if mr.Exists("missing") {
		t.Error("Refresh created a key")
	}

	mr.FastForward(time.Minute)
	if _, ok, _ := cache.Lookup(ctx, "k"); ok {
		t.Error("key should have expired")
	}
}

func TestNewRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	cfg := &config.RedisConfig{
		Host:           mr.Host(),
		Port:           mr.Port(),
		MaxConnections: 2,
	}

	cache, err := NewRedisCache(cfg)
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	if err := cache.Ping(testContext(t)); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	cfg := &config.RedisConfig{Host: mr.Host(), Port: mr.Port(), MaxConnections: 1}
	mr.Close()

	if _, err := NewRedisCache(cfg); err == nil {
		t.Error("NewRedisCache() should fail when nothing listens")
	}
}
