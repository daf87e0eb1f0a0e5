// Package feed fetches live game snapshots from the ESPN scoreboard.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/okian/squares/internal/domain/model"
	"github.com/okian/squares/pkg/logger"
)

// Defaults for a new client.
const (
	DefaultURL       = "https://site.api.espn.com/apis/site/v2/sports/football/nfl/scoreboard"
	defaultRetries   = 3
	defaultRetryBase = 300 * time.Millisecond
	defaultRetryMax  = 5 * time.Second
	retryJitter      = 0.2
	maxBodyBytes     = 4 << 20
)

// Query selects one game: the scoreboard day and the two teams. TeamA is
// the side that owns the board rows.
type Query struct {
	Date  time.Time
	TeamA string
	TeamB string
}

// Client reads the scoreboard over HTTP. Transient failures are retried
// with jittered exponential backoff inside the caller's deadline.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	retryBase  time.Duration
	retryMax   time.Duration
	userAgent  string
	log        logger.Logger
}

// New creates a client for baseURL; an empty baseURL uses DefaultURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		retries:    defaultRetries,
		retryBase:  defaultRetryBase,
		retryMax:   defaultRetryMax,
		userAgent:  "squares-livesync/1.0",
		log:        logger.NamedOrNop("feed"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the snapshot for the game matching q. Context cancellation
// is returned as the context's error.
func (c *Client) Fetch(ctx context.Context, q Query) (model.Snapshot, error) {
	endpoint, err := c.endpoint(q.Date)
	if err != nil {
		return model.Snapshot{}, err
	}

	var body []byte
	op := func() error {
		b, err := c.get(ctx, endpoint)
		if err != nil {
			return err
		}
		body = b
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.log.Debug(ctx, "retrying scoreboard fetch", logger.Error(err), logger.Duration("wait", wait))
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(c.policy(), ctx), notify); err != nil {
		return model.Snapshot{}, err
	}

	sb, err := decodeScoreboard(body)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return model.Snapshot{}, err
		}
		return model.Snapshot{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	ev, a, b, ok := sb.match(q.TeamA, q.TeamB)
	if !ok {
		return model.Snapshot{}, fmt.Errorf("%w: %s vs %s", ErrNoMatch, q.TeamA, q.TeamB)
	}
	return toSnapshot(ev, a, b), nil
}

func (c *Client) policy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryBase
	b.MaxInterval = c.retryMax
	b.RandomizationFactor = retryJitter
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(c.retries))
}

func (c *Client) endpoint(date time.Time) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("feed url: %w", err)
	}
	if !date.IsZero() {
		v := u.Query()
		v.Set("dates", date.Format("20060102"))
		u.RawQuery = v.Encode()
	}
	return u.String(), nil
}

// get performs one attempt. Errors wrapped in backoff.Permanent stop the
// retry loop; the rest are retried.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, backoff.Permanent(ctxErr)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		err := fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
		if resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, backoff.Permanent(ctxErr)
		}
		return nil, err
	}
	return body, nil
}
