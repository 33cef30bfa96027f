// Package httptransport adapts the strategy registry to net/http middleware.
// The middleware translates outcomes for the host pipeline: accept attaches
// the profile to the request context, reject terminates with the configured
// failure status, abstain falls through to the next strategy.
package httptransport

import (
	"context"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/porthorian/tokengate/pkg/strategy"
)

// unexported, collision-proof context key
type profileContextKeyType struct{}

var profileKey = profileContextKeyType{}

// ProfileFromContext extracts the authenticated profile from context.
func ProfileFromContext(ctx context.Context) (*strategy.Profile, bool) {
	profile, ok := ctx.Value(profileKey).(*strategy.Profile)
	return profile, ok
}

type MiddlewareConfig struct {
	// FailureStatusCode is written on reject; defaults to 401.
	FailureStatusCode int

	// AllowAnonymous lets requests through when every strategy abstains.
	// When false, an unrecognized scheme is treated the same as a reject.
	AllowAnonymous bool

	Logger logr.Logger
}

func DefaultConfig() MiddlewareConfig {
	return MiddlewareConfig{
		FailureStatusCode: http.StatusUnauthorized,
	}
}

func Middleware(registry *strategy.Registry, config MiddlewareConfig) func(http.Handler) http.Handler {
	if config.FailureStatusCode == 0 {
		config.FailureStatusCode = http.StatusUnauthorized
	}

	logger := config.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()

			for _, s := range registry.All() {
				outcome := s.Authenticate(r.Context(), r, strategy.Options{})

				switch outcome.Decision {
				case strategy.DecisionAccept:
					logger.V(1).Info("request authenticated",
						"request_id", requestID, "strategy", s.Name(), "subject", outcome.Profile.Subject)
					ctx := context.WithValue(r.Context(), profileKey, outcome.Profile)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				case strategy.DecisionReject:
					status := outcome.Status
					if status == 0 {
						status = config.FailureStatusCode
					}
					logger.V(1).Info("request rejected",
						"request_id", requestID, "strategy", s.Name(), "status", status)
					w.WriteHeader(status)
					return
				}
			}

			if config.AllowAnonymous {
				next.ServeHTTP(w, r)
				return
			}

			logger.V(1).Info("no authentication strategy engaged", "request_id", requestID)
			w.WriteHeader(config.FailureStatusCode)
		})
	}
}
