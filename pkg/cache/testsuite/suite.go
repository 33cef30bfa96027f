// Package testsuite holds a backend-agnostic conformance suite for
// ProfileStore implementations. Adapter test files run it against their
// own backend.
package testsuite

import (
	"context"
	"testing"
	"time"

	"github.com/porthorian/tokengate/pkg/cache"
)

func Run(t *testing.T, store cache.ProfileStore) {
	t.Helper()
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("MissReturnsNotFound", func(t *testing.T) {
		_, ok, err := store.Get(ctx, "suite-unknown-token")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if ok {
			t.Fatal("expected miss for unknown token")
		}
	})

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		want := cache.Record{
			Subject:     "123",
			Provider:    "google",
			DisplayName: "Alice",
			Emails:      []string{"alice@example.com"},
			Photos:      []string{"https://example.com/alice.png"},
			CreatedAt:   createdAt,
		}
		if err := store.Put(ctx, "suite-token-a", want); err != nil {
			t.Fatalf("put failed: %v", err)
		}

		got, ok, err := store.Get(ctx, "suite-token-a")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !ok {
			t.Fatal("expected hit after put")
		}
		assertRecordEqual(t, got, want)
	})

	t.Run("OverwriteReplacesRecord", func(t *testing.T) {
		first := cache.Record{Subject: "123", Provider: "google", CreatedAt: createdAt}
		second := cache.Record{
			Subject:   "123",
			Provider:  "google",
			Emails:    []string{"refreshed@example.com"},
			CreatedAt: createdAt.Add(10 * time.Second),
		}

		if err := store.Put(ctx, "suite-token-b", first); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		if err := store.Put(ctx, "suite-token-b", second); err != nil {
			t.Fatalf("overwrite failed: %v", err)
		}

		got, ok, err := store.Get(ctx, "suite-token-b")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !ok {
			t.Fatal("expected hit after overwrite")
		}
		assertRecordEqual(t, got, second)
	})

	t.Run("TokensDoNotAlias", func(t *testing.T) {
		one := cache.Record{Subject: "user-1", Provider: "google", CreatedAt: createdAt}
		two := cache.Record{Subject: "user-2", Provider: "google", CreatedAt: createdAt}

		if err := store.Put(ctx, "suite-token-c1", one); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		if err := store.Put(ctx, "suite-token-c2", two); err != nil {
			t.Fatalf("put failed: %v", err)
		}

		got, ok, err := store.Get(ctx, "suite-token-c1")
		if err != nil || !ok {
			t.Fatalf("expected hit for first token, ok=%v err=%v", ok, err)
		}
		if got.Subject != "user-1" {
			t.Fatalf("tokens aliased: got subject %q", got.Subject)
		}
	})

	t.Run("ReturnedRecordIsIsolated", func(t *testing.T) {
		stored := cache.Record{
			Subject:   "123",
			Provider:  "google",
			Emails:    []string{"alice@example.com"},
			CreatedAt: createdAt,
		}
		if err := store.Put(ctx, "suite-token-d", stored); err != nil {
			t.Fatalf("put failed: %v", err)
		}

		got, _, err := store.Get(ctx, "suite-token-d")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		got.Emails[0] = "tampered@example.com"

		again, _, err := store.Get(ctx, "suite-token-d")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if again.Emails[0] != "alice@example.com" {
			t.Fatal("mutating a returned record leaked into the store")
		}
	})

	t.Run("EmptyTokenRejected", func(t *testing.T) {
		if err := store.Put(ctx, "", cache.Record{Subject: "123"}); err == nil {
			t.Fatal("expected error for empty token")
		}
	})
}

func assertRecordEqual(t *testing.T, got, want cache.Record) {
	t.Helper()
	if got.Subject != want.Subject {
		t.Fatalf("subject mismatch: got %q want %q", got.Subject, want.Subject)
	}
	if got.Provider != want.Provider {
		t.Fatalf("provider mismatch: got %q want %q", got.Provider, want.Provider)
	}
	if got.DisplayName != want.DisplayName {
		t.Fatalf("display name mismatch: got %q want %q", got.DisplayName, want.DisplayName)
	}
	if len(got.Emails) != len(want.Emails) {
		t.Fatalf("emails mismatch: got %v want %v", got.Emails, want.Emails)
	}
	for i := range want.Emails {
		if got.Emails[i] != want.Emails[i] {
			t.Fatalf("emails mismatch: got %v want %v", got.Emails, want.Emails)
		}
	}
	if len(got.Photos) != len(want.Photos) {
		t.Fatalf("photos mismatch: got %v want %v", got.Photos, want.Photos)
	}
	for i := range want.Photos {
		if got.Photos[i] != want.Photos[i] {
			t.Fatalf("photos mismatch: got %v want %v", got.Photos, want.Photos)
		}
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("created at mismatch: got %v want %v", got.CreatedAt, want.CreatedAt)
	}
}
