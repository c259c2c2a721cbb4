// Package reddit is a small client for the parts of the reddit API spdb uses:
// a user's saved items, their subscriptions and their multireddits.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/jdholdren/spdb/internal/secrets"
)

const (
	DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	DefaultAPIURL   = "https://oauth.reddit.com"

	// The most reddit hands back in a single listing page.
	pageSize = 100
	// Attempts after the first when reddit throttles or falls over.
	maxRetries = 3
)

type (
	// Client talks to the reddit API as a script app, authenticating with the
	// owner's username and password.
	Client struct {
		http      *http.Client
		apiURL    string
		username  string
		limiter   *rate.Limiter
		retryBase time.Duration
	}

	Config struct {
		Credentials secrets.Credentials

		// Both default to reddit's own.
		TokenURL string
		APIURL   string

		// Base transport for every request, tokens included. Defaults to [http.DefaultTransport].
		Transport http.RoundTripper
		// Defaults to one request a second with bursts of 5.
		Limiter *rate.Limiter
		// Starting delay of the fibonacci backoff. Defaults to a second.
		RetryBase time.Duration
	}
)

// New creates a client. No requests are made until the first call: the token
// is fetched lazily and refreshed when it expires.
func New(ctx context.Context, cfg Config) *Client {
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	if cfg.Limiter == nil {
		cfg.Limiter = rate.NewLimiter(rate.Every(time.Second), 5)
	}
	if cfg.RetryBase == 0 {
		cfg.RetryBase = time.Second
	}

	// Reddit wants a user agent on every request, including the token exchange.
	base := &http.Client{
		Transport: userAgentTransport{base: cfg.Transport, userAgent: cfg.Credentials.UserAgent},
		Timeout:   30 * time.Second,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	src := passwordTokenSource{
		ctx: ctx,
		conf: &oauth2.Config{
			ClientID:     cfg.Credentials.ClientID,
			ClientSecret: cfg.Credentials.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		username: cfg.Credentials.Username,
		password: cfg.Credentials.Password,
	}
	httpCli := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(nil, src))
	httpCli.Timeout = base.Timeout

	return &Client{
		http:      httpCli,
		apiURL:    cfg.APIURL,
		username:  cfg.Credentials.Username,
		limiter:   cfg.Limiter,
		retryBase: cfg.RetryBase,
	}
}

// Exchanges the account's password for a token, every time it's asked.
type passwordTokenSource struct {
	ctx      context.Context
	conf     *oauth2.Config
	username string
	password string
}

func (s passwordTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.conf.PasswordCredentialsToken(s.ctx, s.username, s.password)
	if err != nil {
		return nil, fmt.Errorf("error fetching reddit token: %w", err)
	}

	return tok, nil
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t userAgentTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}

// Fetches path and decodes the JSON body into dest, waiting on the rate limiter
// and retrying if reddit throttles or errors.
func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	u := c.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	b := retry.WithMaxRetries(maxRetries, retry.NewFibonacci(c.retryBase))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("error creating request: %w", err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("error requesting %s: %w", path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			slog.WarnContext(ctx, "reddit request failed, retrying", "path", path, "status_code", resp.StatusCode)
			return retry.RetryableError(fmt.Errorf("unexpected status code from %s: %d", path, resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code from %s: %d", path, resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("error decoding %s: %w", path, err)
		}

		return nil
	})
}
