// Package google verifies opaque access tokens against Google's userinfo
// endpoint. The verifier issues exactly one outbound request per call; it
// never retries and never caches (caching belongs to the authenticator).
package google

import (
	"context"
	"io"
	"net/http"
	"net/url"

	oerrors "github.com/porthorian/tokengate/pkg/errors"
)

const (
	// ProviderName is the scheme name this strategy registers under and the
	// value the X-token-type header must carry for it to engage.
	ProviderName = "google"

	// UserInfoEndpoint is the fixed token introspection endpoint.
	UserInfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// Result is the structured outcome of a completed verification exchange.
// Any HTTP response, success or not, is delivered as a Result; only a
// transport-level failure surfaces as an error.
type Result struct {
	StatusCode int
	Body       []byte
}

type Verifier interface {
	Verify(ctx context.Context, token string) (Result, error)
}

type Client struct {
	httpClient *http.Client
	endpoint   string
}

var _ Verifier = (*Client)(nil)

// NewClient builds a verifier against the fixed Google endpoint. A nil
// httpClient falls back to http.DefaultClient; timeout behavior is whatever
// the supplied client imposes.
func NewClient(httpClient *http.Client) *Client {
	return NewClientWithEndpoint(httpClient, UserInfoEndpoint)
}

// NewClientWithEndpoint overrides the endpoint, primarily for tests.
func NewClientWithEndpoint(httpClient *http.Client, endpoint string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
	}
}

func (c *Client) Verify(ctx context.Context, token string) (Result, error) {
	verifyURL := c.endpoint + "?access_token=" + url.QueryEscape(token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, verifyURL, nil)
	if err != nil {
		return Result{}, oerrors.Wrap(oerrors.CodeTransportFailure, "google verifier: build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, oerrors.Wrap(oerrors.CodeTransportFailure, "google verifier: request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, oerrors.Wrap(oerrors.CodeTransportFailure, "google verifier: read response", err)
	}

	return Result{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
