package partner

import (
	"testing"
	"time"
)

func TestTokenCache_GetSet(t *testing.T) {
	cache := NewTokenCache()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, ok := cache.Get(now); ok {
		t.Fatal("empty cache must miss")
	}

	cache.Set("tok-1", now.Add(time.Hour))
	token, ok := cache.Get(now)
	if !ok || token != "tok-1" {
		t.Fatalf("expected cached token, got %q ok=%v", token, ok)
	}
}

func TestTokenCache_RefreshMargin(t *testing.T) {
	cache := NewTokenCache()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.Set("tok-1", now.Add(time.Hour))

	// 31 seconds before expiry the token is still usable.
	if _, ok := cache.Get(now.Add(time.Hour - 31*time.Second)); !ok {
		t.Fatal("token should be valid just outside the refresh margin")
	}

	// Exactly at the margin it counts as expired.
	if _, ok := cache.Get(now.Add(time.Hour - refreshMargin)); ok {
		t.Fatal("token inside the refresh margin must count as expired")
	}

	if _, ok := cache.Get(now.Add(2 * time.Hour)); ok {
		t.Fatal("token past expiry must count as expired")
	}
}

func TestTokenCache_Clear(t *testing.T) {
	cache := NewTokenCache()
	now := time.Now()
	cache.Set("tok-1", now.Add(time.Hour))
	cache.Clear()

	if _, ok := cache.Get(now); ok {
		t.Fatal("cleared cache must miss")
	}
}
