// Package tokengate validates opaque bearer tokens against their issuing
// identity provider and resolves them into canonical user profiles. It is
// built as a set of pluggable strategies a host request pipeline runs per
// request; each strategy answers with accept, reject, or abstain.
package tokengate

import (
	"context"
	"net/http"

	"github.com/go-logr/logr"

	oerrors "github.com/porthorian/tokengate/pkg/errors"
	"github.com/porthorian/tokengate/pkg/strategy"
)

// Client is the facade a host pipeline talks to. It runs the registered
// strategies in order and reports the first decisive outcome.
type Client struct {
	registry      *strategy.Registry
	logger        logr.Logger
	closeResource func() error
}

// New builds a client around caller-supplied strategies. The Config's
// runtime section still resolves shared resources (logger, cache backend)
// for strategies built through NewGoogleStrategy with the same Config.
func New(config Config, strategies ...strategy.Strategy) (*Client, error) {
	closeResource, resolvedConfig, err := config.initialize(context.Background())
	if err != nil {
		return nil, err
	}

	if len(strategies) == 0 {
		_ = closeResource()
		return nil, oerrors.ErrMissingStrategy
	}

	registry, err := strategy.NewRegistry(strategies...)
	if err != nil {
		_ = closeResource()
		return nil, err
	}

	return &Client{
		registry:      registry,
		logger:        resolvedConfig.Logger,
		closeResource: closeResource,
	}, nil
}

// NewDefault builds a client with the Google bearer-token strategy over the
// runtime-selected cache backend.
func NewDefault(config Config) (*Client, error) {
	closeResource, resolvedConfig, err := config.initialize(context.Background())
	if err != nil {
		return nil, err
	}

	googleStrategy, err := NewGoogleStrategy(resolvedConfig)
	if err != nil {
		_ = closeResource()
		return nil, err
	}

	registry, err := strategy.NewRegistry(googleStrategy)
	if err != nil {
		_ = closeResource()
		return nil, err
	}

	return &Client{
		registry:      registry,
		logger:        resolvedConfig.Logger,
		closeResource: closeResource,
	}, nil
}

// Authenticate runs each registered strategy against the request in
// registration order, returning the first accept or reject. When every
// strategy abstains the request simply did not use any known scheme and an
// abstain outcome is returned for the host to act on.
func (c *Client) Authenticate(ctx context.Context, req *http.Request, opts strategy.Options) (strategy.Outcome, error) {
	if c == nil || c.registry == nil {
		return strategy.Outcome{}, oerrors.ErrMissingStrategy
	}

	for _, s := range c.registry.All() {
		outcome := s.Authenticate(ctx, req, opts)
		if outcome.Decision != strategy.DecisionAbstain {
			return outcome, nil
		}
	}

	return strategy.Abstain(), nil
}

// Registry exposes the strategy registry for transport adapters.
func (c *Client) Registry() *strategy.Registry {
	return c.registry
}

func (c *Client) Close() error {
	if c == nil || c.closeResource == nil {
		return nil
	}

	err := c.closeResource()
	if err != nil {
		return oerrors.Wrap(oerrors.CodeUnknown, "failed to close client resources", err)
	}
	c.closeResource = nil
	c.registry = nil
	return nil
}
