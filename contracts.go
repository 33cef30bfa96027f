package tokengate

import (
	"time"

	"github.com/go-logr/logr"

	"github.com/porthorian/tokengate/pkg/cache"
	"github.com/porthorian/tokengate/pkg/provider/google"
	"github.com/porthorian/tokengate/pkg/strategy"
)

// Config is the construction-time option set. Explicit collaborators take
// precedence over anything the Runtime section would build; construction-time
// Delegate and TokenTTL take precedence over per-call Options.
type Config struct {
	// Cache overrides the runtime-selected profile store.
	Cache cache.ProfileStore

	// Verifier overrides the default Google userinfo verifier.
	Verifier google.Verifier

	// Delegate is invoked after each successful verification to enrich the
	// resolved profile before it is cached. Optional.
	Delegate strategy.Delegate

	// TokenTTL bounds how long a cached profile is trusted without
	// re-verification. Nil means cached profiles never expire by policy and
	// are only removed by the backend's own eviction.
	TokenTTL *time.Duration

	Logger  logr.Logger
	Runtime RuntimeConfig
}

// TTL is a convenience for populating Config.TokenTTL and Options.TokenTTL.
func TTL(d time.Duration) *time.Duration {
	return &d
}
