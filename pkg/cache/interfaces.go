package cache

import (
	"context"
	"time"
)

// Record pairs a resolved profile with the instant it was created. Records
// are never mutated in place; a refresh replaces the record wholesale.
type Record struct {
	Subject     string
	Provider    string
	DisplayName string
	Emails      []string
	Photos      []string
	CreatedAt   time.Time
}

// ProfileStore maps opaque token strings to previously resolved profiles.
// Implementations must tolerate concurrent Get/Put from multiple in-flight
// authentications; Put is last-write-wins per token. Freshness is judged by
// the caller against CreatedAt, so stores must not evict records on policy
// grounds of their own (capacity or server-side eviction is fine).
type ProfileStore interface {
	Get(ctx context.Context, token string) (Record, bool, error)
	Put(ctx context.Context, token string, record Record) error
}
