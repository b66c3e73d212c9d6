// Package remote reads configuration records from the admin export API.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"structured_markup/internal/adapters/observability"
	"structured_markup/internal/domain"
)

const maxAttempts = 4

var (
	ErrNotFound     = fmt.Errorf("remote: %w", domain.ErrNotFound)
	ErrUnauthorized = fmt.Errorf("remote: %w", domain.ErrUnauthorized)
)

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, errors.New("remote base URL is required")
	}
	if key == "" {
		return nil, errors.New("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// GetRecords returns the raw items exported for category cat.
// The query-string endpoint is tried first; a 404 there falls back to the
// path form older exports serve.
func (c *Client) GetRecords(ctx context.Context, cat domain.Category) ([]domain.ExportItem, error) {
	urls := []string{
		fmt.Sprintf("%s/records?output=%s", c.base, url.QueryEscape(string(cat))),
		fmt.Sprintf("%s/records/%s", c.base, url.PathEscape(string(cat))),
	}
	var err error
	for _, u := range urls {
		var body []byte
		if body, err = c.fetch(ctx, u); err == nil {
			var items []domain.ExportItem
			if err := json.Unmarshal(body, &items); err != nil {
				return nil, errors.Wrapf(err, "decode records %s", cat)
			}
			return items, nil
		}
		if !errors.Is(err, ErrNotFound) {
			break
		}
	}
	return nil, errors.Wrapf(err, "get records %s", cat)
}

// fetch GETs u under the rate limiter and returns the 200 body. 429 and 5xx
// responses and transport errors are retried with backoff.
func (c *Client) fetch(ctx context.Context, u string) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 && !sleepCtx(ctx, lastWait(lastErr, attempt)) {
			return nil, ctx.Err()
		}

		body, status, wait, err := c.once(ctx, u)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
		case status == http.StatusOK:
			return body, nil
		case status == http.StatusNotFound:
			return nil, ErrNotFound
		case status == http.StatusUnauthorized:
			return nil, ErrUnauthorized
		case status == http.StatusForbidden:
			return nil, errors.Wrap(ErrUnauthorized, "forbidden")
		case status == http.StatusTooManyRequests || status >= 500:
			lastErr = retryable{status: status, wait: wait}
		default:
			return nil, errors.Errorf("export status %d: %s", status, strings.TrimSpace(string(body)))
		}
	}
	return nil, lastErr
}

// once performs a single request, returning the body, status and any
// Retry-After delay.
func (c *Client) once(ctx context.Context, u string) ([]byte, int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	req.Header.Set("X-API-Key", c.key)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("remote", "records", 0, time.Since(start))
		return nil, 0, 0, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("remote", "records", resp.StatusCode, time.Since(start))

	limit := int64(4096)
	if resp.StatusCode == http.StatusOK {
		limit = 32 << 20
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	return body, resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")), err
}

type retryable struct {
	status int
	wait   time.Duration
}

func (r retryable) Error() string { return "export status " + strconv.Itoa(r.status) }

// lastWait honours the server's Retry-After, else backs off.
func lastWait(err error, attempt int) time.Duration {
	var r retryable
	if errors.As(err, &r) && r.wait > 0 {
		return r.wait
	}
	return backoff(attempt - 1)
}

// parseRetryAfter reads a delay in seconds; the export never sends dates.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// backoff doubles from 100ms with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	return base + time.Duration(rand.Int63n(int64(base)/2+1))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
