package ztm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/theoremus-urban-solutions/ztm-departures/config"
)

// Options configures a Client. Zero values fall back to the config package defaults.
type Options struct {
	BaseURL      string
	APIKey       string
	TimetableID  string
	LinesID      string
	StopInfoID   string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// StopInfoTTL of 0 keeps stop info until the process exits.
	StopInfoTTL time.Duration
	HTTPClient  *http.Client
}

// Client is an HTTP client for the Warsaw timetable API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	timetableID  string
	linesID      string
	stopInfoID   string
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration

	stopInfo   *cache.Cache
	stopInfoMu sync.Mutex
}

// NewClient creates a new API client
func NewClient(opts Options) *Client {
	c := &Client{
		httpClient:   opts.HTTPClient,
		baseURL:      opts.BaseURL,
		apiKey:       opts.APIKey,
		timetableID:  opts.TimetableID,
		linesID:      opts.LinesID,
		stopInfoID:   opts.StopInfoID,
		timeout:      opts.Timeout,
		maxRetries:   opts.MaxRetries,
		retryBackoff: opts.RetryBackoff,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.baseURL == "" {
		c.baseURL = config.DefaultBaseURL
	}
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	if c.timetableID == "" {
		c.timetableID = config.DefaultTimetableID
	}
	if c.linesID == "" {
		c.linesID = config.DefaultLinesID
	}
	if c.stopInfoID == "" {
		c.stopInfoID = config.DefaultStopInfoID
	}
	if c.timeout <= 0 {
		c.timeout = 20 * time.Second
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}

	ttl, cleanup := cache.NoExpiration, time.Duration(0)
	if opts.StopInfoTTL > 0 {
		ttl, cleanup = opts.StopInfoTTL, 2*opts.StopInfoTTL
	}
	c.stopInfo = cache.New(ttl, cleanup)
	return c
}

// NewClientFromConfig creates a client from the api section of the configuration.
func NewClientFromConfig(cfg config.APIConfig) *Client {
	return NewClient(Options{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.Key,
		TimetableID:  cfg.TimetableID,
		LinesID:      cfg.LinesID,
		StopInfoID:   cfg.StopInfoID,
		Timeout:      cfg.Timeout(),
		MaxRetries:   cfg.Retries(),
		RetryBackoff: cfg.RetryBackoff(),
		StopInfoTTL:  cfg.StopInfoTTL(),
	})
}

type envelope struct {
	Result json.RawMessage `json:"result"`
}

// fetch performs a GET with timeout and retries on timeouts, transport errors and 5xx.
// It returns the raw "result" member of the response.
func (c *Client) fetch(ctx context.Context, action string, params url.Values) (json.RawMessage, error) {
	params.Set("apikey", c.apiKey)
	target := c.baseURL + action + "?" + params.Encode()
	logged := redact(c.baseURL+action, params)

	for attempt := 0; ; attempt++ {
		body, status, err := c.get(ctx, target)
		retryable := err != nil || status >= 500
		if retryable && attempt < c.maxRetries && ctx.Err() == nil {
			if err != nil {
				log.Printf("request to %s failed: %v; retrying (%d/%d)", logged, err, attempt+1, c.maxRetries)
			} else {
				log.Printf("HTTP %d from %s; retrying (%d/%d)", status, logged, attempt+1, c.maxRetries)
			}
			if err := sleepCtx(ctx, c.retryBackoff*time.Duration(attempt+1)); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, logged, err)
		}
		if status != http.StatusOK {
			return nil, &StatusError{StatusCode: status, URL: logged}
		}
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON from %s", ErrUpstreamUnavailable, logged)
		}
		return env.Result, nil
	}
}

func (c *Client) get(ctx context.Context, target string) ([]byte, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// fetchList fetches a list result. String results other than "false" are transient
// backend states and are retried once.
func (c *Client) fetchList(ctx context.Context, action string, params url.Values) ([]json.RawMessage, error) {
	for attempt := 0; ; attempt++ {
		raw, err := c.fetch(ctx, action, params)
		if err != nil {
			return nil, err
		}
		rows, msg, err := decodeResult(raw)
		if err != nil {
			return nil, err
		}
		if msg == "" {
			return rows, nil
		}
		if attempt >= 1 {
			return nil, fmt.Errorf("%w: %s returned %q", ErrUpstreamUnavailable, action, msg)
		}
		log.Printf("%s returned a message instead of data (%q); retrying", action, msg)
		if err := sleepCtx(ctx, c.retryBackoff/2); err != nil {
			return nil, err
		}
	}
}

func redact(base string, params url.Values) string {
	safe := url.Values{}
	for k, v := range params {
		if k == "apikey" {
			safe.Set(k, "****")
			continue
		}
		safe[k] = v
	}
	return base + "?" + safe.Encode()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isUpstream reports whether err came from the transport rather than the API payload.
func isUpstream(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}
