package grpctransport

import (
	"context"
	"errors"
	"testing"

	"github.com/porthorian/tokengate/pkg/strategy"
)

type stubAuthenticator struct {
	outcome strategy.Outcome
	scheme  string
	token   string
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, scheme string, token string) strategy.Outcome {
	s.scheme = scheme
	s.token = token
	return s.outcome
}

func headerExtractor(ctx context.Context) (string, string, bool) {
	return "google", "abc123", true
}

func TestUnaryInterceptorAttachesProfileOnAccept(t *testing.T) {
	auth := &stubAuthenticator{outcome: strategy.Accept(&strategy.Profile{Subject: "123"})}

	interceptor := UnaryInterceptor(auth, headerExtractor)
	resp, err := interceptor(context.Background(), "request", &UnaryServerInfo{FullMethod: "/svc/Method"},
		func(ctx context.Context, req any) (any, error) {
			profile, ok := ProfileFromContext(ctx)
			if !ok || profile.Subject != "123" {
				t.Fatalf("profile missing from handler context: %+v", profile)
			}
			return "response", nil
		})
	if err != nil {
		t.Fatalf("interceptor failed: %v", err)
	}
	if resp != "response" {
		t.Fatalf("unexpected response: %v", resp)
	}
	if auth.scheme != "google" || auth.token != "abc123" {
		t.Fatalf("extractor output not forwarded: %q %q", auth.scheme, auth.token)
	}
}

func TestUnaryInterceptorRejects(t *testing.T) {
	auth := &stubAuthenticator{outcome: strategy.Reject()}

	interceptor := UnaryInterceptor(auth, headerExtractor)
	_, err := interceptor(context.Background(), "request", &UnaryServerInfo{},
		func(ctx context.Context, req any) (any, error) {
			t.Fatal("handler must not run on reject")
			return nil, nil
		})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestUnaryInterceptorPassesThroughOnAbstain(t *testing.T) {
	auth := &stubAuthenticator{outcome: strategy.Abstain()}

	interceptor := UnaryInterceptor(auth, headerExtractor)
	called := false
	_, err := interceptor(context.Background(), "request", &UnaryServerInfo{},
		func(ctx context.Context, req any) (any, error) {
			called = true
			if _, ok := ProfileFromContext(ctx); ok {
				t.Error("abstain must not attach a profile")
			}
			return nil, nil
		})
	if err != nil {
		t.Fatalf("interceptor failed: %v", err)
	}
	if !called {
		t.Fatal("handler should run on abstain")
	}
}

type stubStream struct {
	ctx context.Context
}

func (s *stubStream) Context() context.Context { return s.ctx }

func TestStreamInterceptorRejects(t *testing.T) {
	auth := &stubAuthenticator{outcome: strategy.Reject()}

	interceptor := StreamInterceptor(auth, headerExtractor)
	err := interceptor("server", &stubStream{ctx: context.Background()}, &StreamServerInfo{},
		func(srv any, stream ServerStream) error {
			t.Fatal("handler must not run on reject")
			return nil
		})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestInterceptorAbstainsWithoutExtractor(t *testing.T) {
	auth := &stubAuthenticator{outcome: strategy.Reject()}

	interceptor := UnaryInterceptor(auth, nil)
	called := false
	_, err := interceptor(context.Background(), "request", &UnaryServerInfo{},
		func(ctx context.Context, req any) (any, error) {
			called = true
			return nil, nil
		})
	if err != nil || !called {
		t.Fatalf("missing extractor should pass through, err=%v called=%v", err, called)
	}
}
