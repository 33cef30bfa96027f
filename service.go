package tokengate

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/porthorian/tokengate/pkg/cache"
	oerrors "github.com/porthorian/tokengate/pkg/errors"
	"github.com/porthorian/tokengate/pkg/provider/google"
	"github.com/porthorian/tokengate/pkg/strategy"
)

const (
	// HeaderTokenType names the authentication scheme a request is using.
	// The strategy abstains unless it equals the strategy name.
	HeaderTokenType = "X-token-type"

	// HeaderAccessToken carries the opaque bearer token.
	HeaderAccessToken = "access_token"
)

// GoogleStrategy authenticates requests carrying a Google-issued bearer
// token. It owns the profile cache and the remote verifier and emits exactly
// one Accept/Reject/Abstain outcome per call. Safe for concurrent use; the
// cache is the only shared mutable state and Put is last-write-wins, so
// concurrent verifications of the same token race benignly.
type GoogleStrategy struct {
	name     string
	store    cache.ProfileStore
	verifier google.Verifier
	delegate strategy.Delegate
	tokenTTL *time.Duration
	logger   logr.Logger
	now      func() time.Time
}

var _ strategy.Strategy = (*GoogleStrategy)(nil)

func NewGoogleStrategy(config Config) (*GoogleStrategy, error) {
	if config.Cache == nil {
		return nil, oerrors.New(oerrors.CodeMissingCache, "tokengate: profile cache store is required")
	}

	verifier := config.Verifier
	if verifier == nil {
		verifier = google.NewClient(nil)
	}

	return &GoogleStrategy{
		name:     google.ProviderName,
		store:    config.Cache,
		verifier: verifier,
		delegate: config.Delegate,
		tokenTTL: config.TokenTTL,
		logger:   resolveLogger(config.Logger),
		now:      time.Now,
	}, nil
}

func (s *GoogleStrategy) Name() string {
	return s.name
}

// Authenticate runs the decision procedure:
// scheme mismatch -> abstain; missing token -> reject; fresh cache hit ->
// accept without a network call; otherwise verify remotely and on success
// build the profile, run the delegate, replace the cache record, accept.
// Every verification failure resolves to reject; nothing propagates.
func (s *GoogleStrategy) Authenticate(ctx context.Context, req *http.Request, opts strategy.Options) strategy.Outcome {
	if req == nil || req.Header.Get(HeaderTokenType) != s.name {
		return strategy.Abstain()
	}

	token := req.Header.Get(HeaderAccessToken)
	if token == "" {
		s.logger.Info("bearer token missing from request",
			"strategy", s.name, "code", oerrors.CodeMissingCredential)
		return strategy.Reject()
	}

	ttl := s.resolveTTL(opts)
	record, ok, err := s.store.Get(ctx, token)
	if err != nil {
		// Treated as a miss; the token can still verify remotely.
		s.logger.Error(err, "profile cache lookup failed", "strategy", s.name)
	} else if ok && s.fresh(record, ttl) {
		return strategy.Accept(recordProfile(record))
	}
	// A stale record stays in place and is only superseded when
	// re-verification succeeds.

	result, err := s.verifier.Verify(ctx, token)
	if err != nil {
		s.logger.Error(err, "token verification transport failure",
			"strategy", s.name, "code", oerrors.CodeTransportFailure)
		return strategy.Reject()
	}

	if result.StatusCode != http.StatusOK {
		s.logger.Info("token verification returned non-success status",
			"strategy", s.name, "status", result.StatusCode, "code", oerrors.CodeNonSuccessStatus)
		return strategy.Reject()
	}

	var raw map[string]any
	if err := json.Unmarshal(result.Body, &raw); err != nil {
		s.logger.Error(err, "token verification body is not valid JSON",
			"strategy", s.name, "code", oerrors.CodeMalformedBody)
		return strategy.Reject()
	}

	profile := BuildProfile(raw, s.name)
	if profile == nil {
		s.logger.Info("verification response lacks a subject",
			"strategy", s.name, "code", oerrors.CodeIncompleteProfile)
		return strategy.Reject()
	}

	if delegate := s.resolveDelegate(opts); delegate != nil {
		delegate.Update(profile, raw)
	}

	if err := s.store.Put(ctx, token, profileRecord(profile, s.now().UTC())); err != nil {
		// The caller still gets a verified profile; only reuse suffers.
		s.logger.Error(err, "profile cache write failed", "strategy", s.name)
	}

	return strategy.Accept(profile)
}

func (s *GoogleStrategy) resolveDelegate(opts strategy.Options) strategy.Delegate {
	if s.delegate != nil {
		return s.delegate
	}
	return opts.Delegate
}

func (s *GoogleStrategy) resolveTTL(opts strategy.Options) *time.Duration {
	if s.tokenTTL != nil {
		return s.tokenTTL
	}
	return opts.TokenTTL
}

// fresh reports whether a cached record may be trusted without
// re-verification. A nil ttl means records are permanently fresh; otherwise
// the record is fresh strictly within [createdAt, createdAt+ttl).
func (s *GoogleStrategy) fresh(record cache.Record, ttl *time.Duration) bool {
	if ttl == nil {
		return true
	}
	return s.now().UTC().Before(record.CreatedAt.Add(*ttl))
}

func recordProfile(record cache.Record) *strategy.Profile {
	profile := &strategy.Profile{
		Subject:     record.Subject,
		Provider:    record.Provider,
		DisplayName: record.DisplayName,
		Emails:      record.Emails,
		Photos:      record.Photos,
	}
	return profile.Clone()
}

func profileRecord(profile *strategy.Profile, createdAt time.Time) cache.Record {
	clone := profile.Clone()
	return cache.Record{
		Subject:     clone.Subject,
		Provider:    clone.Provider,
		DisplayName: clone.DisplayName,
		Emails:      clone.Emails,
		Photos:      clone.Photos,
		CreatedAt:   createdAt,
	}
}
