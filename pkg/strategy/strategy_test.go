package strategy

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

type namedStrategy struct {
	name string
}

func (s *namedStrategy) Name() string { return s.name }

func (s *namedStrategy) Authenticate(ctx context.Context, req *http.Request, opts Options) Outcome {
	return Abstain()
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	registry, err := NewRegistry(
		&namedStrategy{name: "google"},
		&namedStrategy{name: "github"},
		&namedStrategy{name: "local"},
	)
	if err != nil {
		t.Fatalf("new registry failed: %v", err)
	}

	all := registry.All()
	want := []string{"google", "github", "local"}
	if len(all) != len(want) {
		t.Fatalf("expected %d strategies, got %d", len(want), len(all))
	}
	for i, name := range want {
		if all[i].Name() != name {
			t.Fatalf("order broken at %d: got %q want %q", i, all[i].Name(), name)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	registry, err := NewRegistry(&namedStrategy{name: "google"})
	if err != nil {
		t.Fatalf("new registry failed: %v", err)
	}

	if _, ok := registry.Strategy("google"); !ok {
		t.Fatal("expected lookup hit")
	}
	if _, ok := registry.Strategy("unknown"); ok {
		t.Fatal("expected lookup miss")
	}
}

func TestRegistryRegistrationErrors(t *testing.T) {
	registry, err := NewRegistry(&namedStrategy{name: "google"})
	if err != nil {
		t.Fatalf("new registry failed: %v", err)
	}

	if err := registry.Register(nil); !errors.Is(err, ErrNilStrategy) {
		t.Fatalf("expected ErrNilStrategy, got %v", err)
	}
	if err := registry.Register(&namedStrategy{}); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := registry.Register(&namedStrategy{name: "google"}); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestOutcomeConstructors(t *testing.T) {
	profile := &Profile{Subject: "123"}

	if outcome := Accept(profile); outcome.Decision != DecisionAccept || outcome.Profile != profile {
		t.Fatalf("unexpected accept outcome: %+v", outcome)
	}
	if outcome := Reject(); outcome.Decision != DecisionReject || outcome.Profile != nil {
		t.Fatalf("unexpected reject outcome: %+v", outcome)
	}
	if outcome := Abstain(); outcome.Decision != DecisionAbstain {
		t.Fatalf("unexpected abstain outcome: %+v", outcome)
	}
	if outcome := RejectWith(403, map[string]string{"reason": "revoked"}); outcome.Status != 403 || outcome.Details["reason"] != "revoked" {
		t.Fatalf("unexpected reject payload: %+v", outcome)
	}
}

func TestProfileCloneIsolatesSlices(t *testing.T) {
	original := &Profile{
		Subject: "123",
		Emails:  []string{"alice@example.com"},
		Photos:  []string{"https://example.com/alice.png"},
	}

	clone := original.Clone()
	clone.Emails[0] = "tampered@example.com"
	clone.Photos[0] = "tampered"

	if original.Emails[0] != "alice@example.com" || original.Photos[0] != "https://example.com/alice.png" {
		t.Fatalf("clone aliased original slices: %+v", original)
	}

	var nilProfile *Profile
	if nilProfile.Clone() != nil {
		t.Fatal("nil clone should stay nil")
	}
}
