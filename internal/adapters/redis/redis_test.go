package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "staybook/internal/adapters/redis"
	"staybook/internal/domain"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestCache_SetGetDel(t *testing.T) {
	mr, c := newClient(t)
	cache := redisad.NewCache(c)
	ctx := context.Background()

	var h domain.Hotel
	if ok, err := cache.Get(ctx, "hotel:h1", &h); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := cache.Set(ctx, "hotel:h1", domain.Hotel{ID: "h1", Name: "Grand Plaza"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ok, err := cache.Get(ctx, "hotel:h1", &h); !ok || err != nil || h.Name != "Grand Plaza" {
		t.Fatalf("expected hit, got ok=%v err=%v h=%+v", ok, err, h)
	}

	mr.FastForward(61 * time.Second)
	if ok, _ := cache.Get(ctx, "hotel:h1", &h); ok {
		t.Fatalf("expected entry to expire")
	}

	_ = cache.Set(ctx, "hotel:h2", domain.Hotel{ID: "h2"}, 60)
	if err := cache.Del(ctx, "hotel:h2"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if mr.Exists("hotel:h2") {
		t.Fatalf("expected key deleted")
	}
}

func TestCache_UndecodableEntryIsEvicted(t *testing.T) {
	mr, c := newClient(t)
	cache := redisad.NewCache(c)

	if err := mr.Set("hotel:h9", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var h domain.Hotel
	ok, err := cache.Get(context.Background(), "hotel:h9", &h)
	if ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if mr.Exists("hotel:h9") {
		t.Fatalf("expected corrupt entry removed")
	}
}

func TestStore_SessionScopedWithTTL(t *testing.T) {
	mr, c := newClient(t)
	f := redisad.NewFactory(c, 30*time.Minute)
	ctx := context.Background()

	a, b := f.ForSession("a"), f.ForSession("b")
	if err := a.Set(ctx, domain.KeyAccessToken, "tok"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, err := a.Get(ctx, domain.KeyAccessToken); err != nil || !ok || v != "tok" {
		t.Fatalf("get = %q ok=%v err=%v", v, ok, err)
	}
	if _, ok, _ := b.Get(ctx, domain.KeyAccessToken); ok {
		t.Fatalf("session b sees session a's token")
	}
	if ttl := mr.TTL("session:a"); ttl != 30*time.Minute {
		t.Fatalf("expected ttl 30m, got %s", ttl)
	}

	if err := a.Remove(ctx, domain.KeyAccessToken); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := a.Get(ctx, domain.KeyAccessToken); ok {
		t.Fatalf("expected token removed")
	}

	_ = a.Set(ctx, domain.KeyTheme, "dark")
	mr.FastForward(31 * time.Minute)
	if _, ok, _ := a.Get(ctx, domain.KeyTheme); ok {
		t.Fatalf("expected idle session to expire")
	}
}
