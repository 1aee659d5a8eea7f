package riot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

const (
	// Rate limits for a dev key (using conservative values to be safe)
	requestsPerSecond = 15 // Actual: 20, using 15 for safety
	requestsPer2Min   = 90 // Actual: 100, using 90 for safety

	defaultRequestTimeout = 30 * time.Second
	defaultRetryAfter     = 10 * time.Second
)

// StatusError is returned for non-2xx vendor responses so callers can
// branch on the HTTP status code.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("riot API returned status %d for %s", e.Code, e.URL)
}

// IsAuthError reports whether err is a vendor 401/403.
func IsAuthError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden)
}

// IsNotFound reports whether err is a vendor 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// IsTransient reports whether err is worth retrying (5xx).
func IsTransient(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 500
}

// Client is a rate-limited Riot API client. The API key can be swapped at
// runtime; in-flight requests keep the key they started with.
type Client struct {
	baseURL    string
	httpClient *http.Client

	keyMu  sync.RWMutex
	apiKey string

	// Sliding-window rate limiting
	mu          sync.Mutex
	shortWindow []time.Time // Requests in last second
	longWindow  []time.Time // Requests in last 2 minutes
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the regional base URL (useful for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithRequestTimeout sets the per-call HTTP timeout.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client for the given regional routing value
// (europe, americas, asia).
func NewClient(regionalRouting string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: fmt.Sprintf("https://%s.api.riotgames.com", regionalRouting),
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
		shortWindow: make([]time.Time, 0),
		longWindow:  make([]time.Time, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAPIKey installs the key used for subsequent requests.
func (c *Client) SetAPIKey(key string) {
	c.keyMu.Lock()
	c.apiKey = key
	c.keyMu.Unlock()
}

func (c *Client) currentKey() string {
	c.keyMu.RLock()
	defer c.keyMu.RUnlock()
	return c.apiKey
}

// waitForRateLimit blocks until we can make another request, or the context
// is cancelled.
func (c *Client) waitForRateLimit(ctx context.Context) error {
	for {
		c.mu.Lock()

		now := time.Now()
		oneSecondAgo := now.Add(-1 * time.Second)
		twoMinutesAgo := now.Add(-2 * time.Minute)

		// Drop expired entries
		newShort := c.shortWindow[:0]
		for _, t := range c.shortWindow {
			if t.After(oneSecondAgo) {
				newShort = append(newShort, t)
			}
		}
		c.shortWindow = newShort

		newLong := c.longWindow[:0]
		for _, t := range c.longWindow {
			if t.After(twoMinutesAgo) {
				newLong = append(newLong, t)
			}
		}
		c.longWindow = newLong

		var wait time.Duration
		switch {
		case len(c.shortWindow) >= requestsPerSecond:
			wait = c.shortWindow[0].Add(time.Second).Sub(now) + 100*time.Millisecond
		case len(c.longWindow) >= requestsPer2Min:
			wait = c.longWindow[0].Add(2*time.Minute).Sub(now) + 100*time.Millisecond
		default:
			c.shortWindow = append(c.shortWindow, now)
			c.longWindow = append(c.longWindow, now)
			c.mu.Unlock()
			return nil
		}
		c.mu.Unlock()

		log.WithField("wait", wait.Round(100*time.Millisecond)).Debug("riot: local rate limit reached")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// doRequest makes a rate-limited GET request and decodes the JSON body into
// result. 429 responses honor Retry-After and retry within the same call.
func (c *Client) doRequest(ctx context.Context, reqURL string, result interface{}) error {
	for {
		if err := c.waitForRateLimit(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-Riot-Token", c.currentKey())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := defaultRetryAfter
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					wait = time.Duration(secs) * time.Second
				}
			}
			resp.Body.Close()
			log.WithField("wait", wait).Warn("riot: 429, backing off")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return &StatusError{Code: resp.StatusCode, URL: reqURL}
		}

		err = json.NewDecoder(resp.Body).Decode(result)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response from %s: %w", reqURL, err)
		}
		return nil
	}
}

// GetAccountByRiotID fetches account info for a gameName#tagLine handle.
func (c *Client) GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*AccountResponse, error) {
	reqURL := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.baseURL, url.PathEscape(gameName), url.PathEscape(tagLine))

	var account AccountResponse
	if err := c.doRequest(ctx, reqURL, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetMatchIDs fetches one page of match IDs for a puuid, newest first.
// queue filters by queue id when > 0.
func (c *Client) GetMatchIDs(ctx context.Context, puuid string, queue, start, count int) ([]string, error) {
	reqURL := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids?start=%d&count=%d",
		c.baseURL, url.PathEscape(puuid), start, count)
	if queue > 0 {
		reqURL += fmt.Sprintf("&queue=%d", queue)
	}

	var matchIDs []string
	if err := c.doRequest(ctx, reqURL, &matchIDs); err != nil {
		return nil, err
	}
	return matchIDs, nil
}

// GetMatch fetches full match details.
func (c *Client) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	reqURL := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.baseURL, url.PathEscape(matchID))

	var match Match
	if err := c.doRequest(ctx, reqURL, &match); err != nil {
		return nil, err
	}
	return &match, nil
}
