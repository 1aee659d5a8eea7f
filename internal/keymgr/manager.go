// Package keymgr selects the Riot API key for a run. An operator-captured
// key file takes priority over the environment default; both candidates are
// validated against the vendor before adoption.
package keymgr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

const (
	// KeyTTL is how long a captured key is trusted after capture.
	KeyTTL = 30 * time.Hour

	keyFileName = "riot_api_key.json"
)

// ErrNoValidKey is returned when neither the captured key nor the
// environment key validates.
var ErrNoValidKey = errors.New("no valid Riot API key available")

// Validator tests a key against the vendor.
type Validator interface {
	ValidateKey(ctx context.Context, apiKey string) (bool, error)
}

// CapturedKey is the on-disk format of an operator-supplied key.
type CapturedKey struct {
	Key        string    `json:"key"`
	CapturedAt time.Time `json:"captured_at"`
}

// Manager resolves the current API key.
type Manager struct {
	path      string // captured key file
	envKey    string // environment-provided default
	validator Validator
	now       func() time.Time
}

// New creates a Manager storing the captured key under dataDir.
func New(dataDir, envKey string, validator Validator) *Manager {
	return &Manager{
		path:      filepath.Join(dataDir, keyFileName),
		envKey:    envKey,
		validator: validator,
		now:       time.Now,
	}
}

// CurrentKey returns the first candidate key that validates: the captured
// file key (if present and within its TTL), then the environment key.
func (m *Manager) CurrentKey(ctx context.Context) (string, error) {
	if key, ok := m.freshCapturedKey(); ok {
		valid, err := m.validator.ValidateKey(ctx, key)
		if err != nil {
			return "", fmt.Errorf("validate captured key: %w", err)
		}
		if valid {
			return key, nil
		}
		log.Warn("keymgr: captured key rejected by vendor, falling back to environment key")
	}

	if m.envKey != "" {
		valid, err := m.validator.ValidateKey(ctx, m.envKey)
		if err != nil {
			return "", fmt.Errorf("validate environment key: %w", err)
		}
		if valid {
			return m.envKey, nil
		}
		log.Warn("keymgr: environment key rejected by vendor")
	}

	return "", ErrNoValidKey
}

// SaveKey persists an operator-supplied key with a fresh capture timestamp.
// The write is atomic (temp file + rename).
func (m *Manager) SaveKey(key string) error {
	if key == "" {
		return fmt.Errorf("refusing to save empty key")
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}

	data, err := json.MarshalIndent(CapturedKey{Key: key, CapturedAt: m.now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal key file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".riot_api_key-*")
	if err != nil {
		return fmt.Errorf("create temp key file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp key file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp key file: %w", err)
	}
	if err := os.Rename(tmpPath, m.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("install key file: %w", err)
	}
	return nil
}

// freshCapturedKey loads the captured key file and reports whether it exists
// and is within its TTL. A malformed or expired file is ignored.
func (m *Manager) freshCapturedKey() (string, bool) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return "", false
	}

	var captured CapturedKey
	if err := json.Unmarshal(data, &captured); err != nil {
		log.WithError(err).Warn("keymgr: malformed key file, ignoring")
		return "", false
	}
	if captured.Key == "" {
		return "", false
	}
	if m.now().Sub(captured.CapturedAt) > KeyTTL {
		log.WithField("captured_at", captured.CapturedAt).Info("keymgr: captured key expired")
		return "", false
	}
	return captured.Key, true
}
