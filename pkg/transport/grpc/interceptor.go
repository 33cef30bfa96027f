// Package grpctransport mirrors the grpc interceptor signatures without
// depending on the grpc module, so hosts can wrap these into their own
// interceptor chain. Token material is pulled from the RPC context by a
// caller-supplied extractor, typically reading incoming metadata.
package grpctransport

import (
	"context"
	"errors"

	"github.com/porthorian/tokengate/pkg/strategy"
)

var ErrUnauthenticated = errors.New("grpc transport: request was not authenticated")

// TokenExtractor pulls the scheme name and bearer token for an inbound RPC.
type TokenExtractor func(ctx context.Context) (scheme string, token string, ok bool)

// Authenticator validates extracted token material and emits one outcome.
type Authenticator interface {
	Authenticate(ctx context.Context, scheme string, token string) strategy.Outcome
}

type profileContextKeyType struct{}

var profileKey = profileContextKeyType{}

func ContextWithProfile(ctx context.Context, profile *strategy.Profile) context.Context {
	return context.WithValue(ctx, profileKey, profile)
}

func ProfileFromContext(ctx context.Context) (*strategy.Profile, bool) {
	profile, ok := ctx.Value(profileKey).(*strategy.Profile)
	return profile, ok
}

type UnaryHandler func(ctx context.Context, req any) (any, error)

type UnaryServerInfo struct {
	FullMethod string
}

type UnaryServerInterceptor func(ctx context.Context, req any, info *UnaryServerInfo, handler UnaryHandler) (any, error)

type ServerStream interface {
	Context() context.Context
}

type StreamHandler func(srv any, stream ServerStream) error

type StreamServerInfo struct {
	FullMethod string
}

type StreamServerInterceptor func(srv any, stream ServerStream, info *StreamServerInfo, handler StreamHandler) error

func UnaryInterceptor(auth Authenticator, extract TokenExtractor) UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *UnaryServerInfo, handler UnaryHandler) (any, error) {
		outcome := authenticate(ctx, auth, extract)
		switch outcome.Decision {
		case strategy.DecisionReject:
			return nil, ErrUnauthenticated
		case strategy.DecisionAccept:
			ctx = ContextWithProfile(ctx, outcome.Profile)
		}
		return handler(ctx, req)
	}
}

func StreamInterceptor(auth Authenticator, extract TokenExtractor) StreamServerInterceptor {
	return func(srv any, stream ServerStream, info *StreamServerInfo, handler StreamHandler) error {
		outcome := authenticate(stream.Context(), auth, extract)
		if outcome.Decision == strategy.DecisionReject {
			return ErrUnauthenticated
		}
		return handler(srv, stream)
	}
}

func authenticate(ctx context.Context, auth Authenticator, extract TokenExtractor) strategy.Outcome {
	if auth == nil || extract == nil {
		return strategy.Abstain()
	}

	scheme, token, ok := extract(ctx)
	if !ok {
		return strategy.Abstain()
	}

	return auth.Authenticate(ctx, scheme, token)
}
