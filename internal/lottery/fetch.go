package lottery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the upstream result API.
const DefaultEndpoint = "https://macaumarksix.com/api/macaujc2.com"

var (
	// ErrNoResult means the API answered but carried no usable draw.
	ErrNoResult = errors.New("no draw in response")
	// ErrBadStatus means the API answered with a non-2xx status.
	ErrBadStatus = errors.New("unexpected http status")
	// ErrMalformed means the body was not the expected JSON shape.
	ErrMalformed = errors.New("malformed response")
)

// FetcherConfig configures Fetcher.
type FetcherConfig struct {
	Endpoint  string
	Timeout   time.Duration
	UserAgent string
	// RatePerSec caps outgoing requests. 0 disables the limit.
	RatePerSec float64
}

// Fetcher retrieves the latest draw. It never retries; callers own the
// retry policy.
type Fetcher struct {
	endpoint string
	client   *resty.Client
	limiter  *rate.Limiter
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		c.SetHeader("User-Agent", cfg.UserAgent)
	}

	f := &Fetcher{endpoint: cfg.Endpoint, client: c}
	if cfg.RatePerSec > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
	return f
}

func (f *Fetcher) Endpoint() string { return f.endpoint }

// Fetch returns the first draw of the response.
func (f *Fetcher) Fetch(ctx context.Context) (Draw, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return Draw{}, err
		}
	}

	resp, err := f.client.R().SetContext(ctx).Get(f.endpoint)
	if err != nil {
		return Draw{}, fmt.Errorf("get %s: %w", f.endpoint, err)
	}
	if !resp.IsSuccess() {
		return Draw{}, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status())
	}
	return DecodeResponse(resp.Body())
}

// DecodeResponse parses an API response body and returns its first draw.
// Elements after the first are not decoded.
func DecodeResponse(body []byte) (Draw, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return Draw{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(items) == 0 {
		return Draw{}, fmt.Errorf("%w: empty list", ErrNoResult)
	}
	var d Draw
	if err := json.Unmarshal(items[0], &d); err != nil {
		return Draw{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if strings.TrimSpace(d.OpenCode) == "" {
		return Draw{}, fmt.Errorf("%w: openCode missing", ErrNoResult)
	}
	return d, nil
}
