package riot

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	// Lightweight authenticated endpoint used only to test a key.
	defaultStatusEndpoint = "/lol/status/v4/platform-data"

	// Default timeout for validation requests
	defaultValidationTimeout = 10 * time.Second
)

// platformHosts maps a regional routing value to a platform host that
// serves the status endpoint.
var platformHosts = map[string]string{
	"europe":   "https://euw1.api.riotgames.com",
	"americas": "https://na1.api.riotgames.com",
	"asia":     "https://kr.api.riotgames.com",
}

// KeyValidator validates Riot API keys by making a test request
type KeyValidator struct {
	httpClient *http.Client
	baseURL    string
}

// KeyValidatorOption configures a KeyValidator
type KeyValidatorOption func(*KeyValidator)

// WithValidatorBaseURL sets a custom base URL (useful for testing)
func WithValidatorBaseURL(url string) KeyValidatorOption {
	return func(v *KeyValidator) {
		v.baseURL = url
	}
}

// WithValidatorTimeout sets a custom timeout for validation requests
func WithValidatorTimeout(timeout time.Duration) KeyValidatorOption {
	return func(v *KeyValidator) {
		v.httpClient.Timeout = timeout
	}
}

// NewKeyValidator creates a KeyValidator for the given regional routing.
func NewKeyValidator(regionalRouting string, opts ...KeyValidatorOption) *KeyValidator {
	base, ok := platformHosts[regionalRouting]
	if !ok {
		base = platformHosts["europe"]
	}

	v := &KeyValidator{
		httpClient: &http.Client{
			Timeout: defaultValidationTimeout,
		},
		baseURL: base,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// ValidateKey validates an API key by making a test request to the Riot API.
// Returns:
//   - (true, nil) if the key is valid
//   - (false, nil) if the key is invalid (401/403)
//   - (false, error) if there was a network/server error (key validity unknown)
func (v *KeyValidator) ValidateKey(ctx context.Context, apiKey string) (bool, error) {
	if apiKey == "" {
		return false, fmt.Errorf("API key cannot be empty")
	}

	url := v.baseURL + defaultStatusEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Riot-Token", apiKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil

	case http.StatusUnauthorized, http.StatusForbidden:
		// Key is invalid or expired
		return false, nil

	default:
		// Server error or unexpected response - we can't determine if key is valid
		return false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}
