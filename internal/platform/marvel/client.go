package marvel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marvelous/internal/metrics"

	"github.com/rs/zerolog/log"
)

const DefaultBaseURL = "https://gateway.marvel.com"

// ErrTransport marks failures to reach or understand the gateway. A lookup
// that simply finds nothing is not a transport error.
var ErrTransport = errors.New("marvel: transport error")

type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("marvel: get %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Cache stores decoded gateway responses. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Config struct {
	BaseURL    string
	PublicKey  string
	PrivateKey string
	Timeout    time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      Cache
	cacheTTL   time.Duration
}

type Option func(*Client)

// WithCache enables a read-through cache for successful comic lookups.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithTransport replaces the underlying round tripper. Auth parameters are
// still added on top of it.
func WithTransport(rt http.RoundTripper) Option {
	return func(cl *Client) {
		cl.httpClient.Transport.(*authTransport).base = rt
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &authTransport{
				base:       http.DefaultTransport,
				publicKey:  cfg.PublicKey,
				privateKey: cfg.PrivateKey,
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetComic fetches a single comic by its gateway id.
func (c *Client) GetComic(ctx context.Context, comicID int64) (*Response[Comic], error) {
	key := fmt.Sprintf("marvel:comic:%d", comicID)
	if res, ok := c.cached(ctx, key); ok {
		metrics.RecordRemote("cache_hit")
		return res, nil
	}

	u := fmt.Sprintf("%s/v1/public/comics/%d", c.baseURL, comicID)
	var res Response[Comic]
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}

	if c.cache != nil && res.Code == StatusOK {
		if err := c.cache.Set(ctx, key, &res, c.cacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("marvel: cache set failed")
		}
	}
	return &res, nil
}

// GetComics lists the first page of comics.
func (c *Client) GetComics(ctx context.Context) (*Response[Comic], error) {
	u := fmt.Sprintf("%s/v1/public/comics", c.baseURL)
	var res Response[Comic]
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) cached(ctx context.Context, key string) (*Response[Comic], bool) {
	if c.cache == nil {
		return nil, false
	}
	var res Response[Comic]
	found, err := c.cache.Get(ctx, key, &res)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("marvel: cache get failed")
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &res, true
}

// get decodes the envelope for 200 and 404 answers; the gateway reports a
// missing comic as a 404 with a regular envelope.
func (c *Client) get(ctx context.Context, url string, target any) error {
	err := c.do(ctx, url, target)
	if err != nil {
		metrics.RecordRemote("error")
		return err
	}
	metrics.RecordRemote("ok")
	return nil
}

func (c *Client) do(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("marvel: request")

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return &TransportError{URL: url, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &TransportError{URL: url, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}
