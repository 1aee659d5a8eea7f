package riot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestValidateKey_ValidKey tests that a valid API key passes validation
func TestValidateKey_ValidKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Riot-Token") == "" {
			t.Error("Expected X-Riot-Token header to be set")
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"EUW1","name":"EU West","locales":["en_GB"]}`))
	}))
	defer server.Close()

	validator := NewKeyValidator("europe", WithValidatorBaseURL(server.URL))

	valid, err := validator.ValidateKey(context.Background(), "RGAPI-test-key")

	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if !valid {
		t.Error("Expected key to be valid")
	}
}

// TestValidateKey_InvalidKey tests that an invalid/expired API key fails validation
func TestValidateKey_InvalidKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"status":{"message":"Forbidden","status_code":403}}`))
	}))
	defer server.Close()

	validator := NewKeyValidator("europe", WithValidatorBaseURL(server.URL))

	valid, err := validator.ValidateKey(context.Background(), "RGAPI-expired-key")

	if err != nil {
		t.Errorf("Expected no error for invalid key, got: %v", err)
	}
	if valid {
		t.Error("Expected key to be invalid")
	}
}

// TestValidateKey_Unauthorized tests that 401 response marks key as invalid
func TestValidateKey_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":{"message":"Unauthorized","status_code":401}}`))
	}))
	defer server.Close()

	validator := NewKeyValidator("europe", WithValidatorBaseURL(server.URL))

	valid, err := validator.ValidateKey(context.Background(), "RGAPI-bad-key")

	if err != nil {
		t.Errorf("Expected no error for unauthorized key, got: %v", err)
	}
	if valid {
		t.Error("Expected key to be invalid for 401 response")
	}
}

// TestValidateKey_ServerError tests that a 5xx leaves key validity unknown
func TestValidateKey_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	validator := NewKeyValidator("europe", WithValidatorBaseURL(server.URL))

	valid, err := validator.ValidateKey(context.Background(), "RGAPI-test-key")

	if err == nil {
		t.Error("Expected an error for a 503 response")
	}
	if valid {
		t.Error("Expected key to not be valid on server error")
	}
}

// TestValidateKey_EmptyKey tests that an empty key is rejected without a request
func TestValidateKey_EmptyKey(t *testing.T) {
	validator := NewKeyValidator("europe", WithValidatorBaseURL("http://127.0.0.1:0"))

	valid, err := validator.ValidateKey(context.Background(), "")

	if err == nil {
		t.Error("Expected an error for an empty key")
	}
	if valid {
		t.Error("Expected empty key to be invalid")
	}
}

// TestValidateKey_Timeout tests that a hanging server trips the client timeout
func TestValidateKey_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	validator := NewKeyValidator("europe",
		WithValidatorBaseURL(server.URL),
		WithValidatorTimeout(50*time.Millisecond))

	valid, err := validator.ValidateKey(context.Background(), "RGAPI-test-key")

	if err == nil {
		t.Error("Expected a timeout error")
	}
	if valid {
		t.Error("Expected key to not be valid on timeout")
	}
}

// TestNewKeyValidator_UnknownRouting tests the fallback platform host
func TestNewKeyValidator_UnknownRouting(t *testing.T) {
	validator := NewKeyValidator("atlantis")

	if validator.baseURL != platformHosts["europe"] {
		t.Errorf("Expected fallback to europe host, got %s", validator.baseURL)
	}
}
