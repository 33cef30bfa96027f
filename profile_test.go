package tokengate

import (
	"context"
	"testing"
	"time"

	"github.com/porthorian/tokengate/pkg/cache/memory"
)

func TestBuildProfileMapsUserInfoFields(t *testing.T) {
	raw := map[string]any{
		"sub":     "123",
		"name":    "Alice",
		"email":   "alice@example.com",
		"picture": "https://example.com/alice.png",
	}

	profile := BuildProfile(raw, "google")
	if profile == nil {
		t.Fatal("expected profile")
	}
	if profile.Subject != "123" || profile.Provider != "google" || profile.DisplayName != "Alice" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if len(profile.Emails) != 1 || profile.Emails[0] != "alice@example.com" {
		t.Fatalf("unexpected emails: %v", profile.Emails)
	}
	if len(profile.Photos) != 1 || profile.Photos[0] != "https://example.com/alice.png" {
		t.Fatalf("unexpected photos: %v", profile.Photos)
	}
}

func TestBuildProfileReturnsNilWithoutSubject(t *testing.T) {
	for name, raw := range map[string]map[string]any{
		"missing":    {"name": "Alice"},
		"empty":      {"sub": "", "name": "Alice"},
		"wrong type": {"sub": 123.0, "name": "Alice"},
	} {
		if profile := BuildProfile(raw, "google"); profile != nil {
			t.Fatalf("%s subject: expected nil profile, got %+v", name, profile)
		}
	}
}

func TestBuildProfileOmitsAbsentOptionalFields(t *testing.T) {
	profile := BuildProfile(map[string]any{"sub": "123"}, "google")
	if profile == nil {
		t.Fatal("expected profile")
	}
	if profile.DisplayName != "" || len(profile.Emails) != 0 || len(profile.Photos) != 0 {
		t.Fatalf("optional fields should stay empty: %+v", profile)
	}
}

func TestProfileSurvivesCacheRoundTrip(t *testing.T) {
	profile := BuildProfile(map[string]any{
		"sub":   "123",
		"name":  "Alice",
		"email": "alice@example.com",
	}, "google")
	if profile == nil {
		t.Fatal("expected profile")
	}

	store := memory.NewAdapter()
	ctx := context.Background()
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Put(ctx, "abc123", profileRecord(profile, createdAt)); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	record, ok, err := store.Get(ctx, "abc123")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}

	got := recordProfile(record)
	if got.Subject != profile.Subject || got.DisplayName != profile.DisplayName || got.Provider != profile.Provider {
		t.Fatalf("round trip changed profile: got %+v want %+v", got, profile)
	}
	if len(got.Emails) != 1 || got.Emails[0] != "alice@example.com" {
		t.Fatalf("round trip changed emails: %v", got.Emails)
	}
	if !record.CreatedAt.Equal(createdAt) {
		t.Fatalf("round trip changed created at: %v", record.CreatedAt)
	}
}
