package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/porthorian/tokengate/pkg/cache"
	"github.com/porthorian/tokengate/pkg/cache/testsuite"
)

func newTestAdapter(t *testing.T, config Config) (*Adapter, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	config.Address = server.Addr()

	adapter, err := NewAdapter(context.Background(), config)
	if err != nil {
		t.Fatalf("new adapter failed: %v", err)
	}
	t.Cleanup(func() {
		_ = adapter.Close()
	})
	return adapter, server
}

func TestRedisAdapterConformance(t *testing.T) {
	adapter, _ := newTestAdapter(t, Config{})
	testsuite.Run(t, adapter)
}

func TestRedisAdapterRequiresAddress(t *testing.T) {
	if _, err := NewAdapter(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for missing address")
	}
}

func TestRedisAdapterKeysCarryNoRawToken(t *testing.T) {
	adapter, server := newTestAdapter(t, Config{Namespace: "gate"})
	ctx := context.Background()

	token := "super-secret-bearer-token"
	err := adapter.Put(ctx, token, cache.Record{
		Subject:   "123",
		Provider:  "google",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}

	keys := server.Keys()
	if len(keys) != 1 {
		t.Fatalf("expected one key, got %v", keys)
	}
	if strings.Contains(keys[0], token) {
		t.Fatalf("raw token leaked into keyspace: %q", keys[0])
	}
	if !strings.HasPrefix(keys[0], "gate:profile:") {
		t.Fatalf("unexpected key shape: %q", keys[0])
	}
}

func TestRedisAdapterEvictionExpiresRecords(t *testing.T) {
	adapter, server := newTestAdapter(t, Config{Eviction: time.Minute})
	ctx := context.Background()

	err := adapter.Put(ctx, "evicted-token", cache.Record{
		Subject:   "123",
		Provider:  "google",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}

	server.FastForward(2 * time.Minute)

	_, ok, err := adapter.Get(ctx, "evicted-token")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if ok {
		t.Fatal("expected record to be evicted by server-side expiry")
	}
}
