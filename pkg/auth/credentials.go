package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	errs "wvdl/pkg/errors"
)

// Token is a Weverse session token (the we_access_token cookie)
type Token struct {
	Value        string    `json:"value"`
	LastModified time.Time `json:"last_modified"`
}

// TokenStore is a place a session token can be read from and, for some
// stores, written to.
type TokenStore interface {
	// Name identifies the store in status output
	Name() string

	// Store saves the token
	Store(token *Token) error

	// Retrieve returns the stored token or ErrTokenNotFound
	Retrieve() (*Token, error)

	// Delete removes the stored token
	Delete() error
}

// Manager resolves the session token from an ordered list of stores
type Manager struct {
	stores []TokenStore
}

// NewManager creates a manager reading, in order, the cookie file (when
// cookiesFile is set), the environment, the system keyring (when usable)
// and the encrypted token file.
func NewManager(cookiesFile string) (*Manager, error) {
	var stores []TokenStore

	if cookiesFile != "" {
		stores = append(stores, NewCookieFileStore(cookiesFile))
	}
	stores = append(stores, NewEnvironmentStore())

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "token.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over explicit stores
func NewManagerWithStores(stores ...TokenStore) *Manager {
	return &Manager{stores: stores}
}

// Resolve returns the token from the first store that has one. When none
// does, the error names every store's failure.
func (m *Manager) Resolve() (*Token, error) {
	var failures []error
	for _, store := range m.stores {
		token, err := store.Retrieve()
		if err == nil && token != nil && token.Value != "" {
			return token, nil
		}
		if err != nil && !errors.Is(err, ErrTokenNotFound) {
			failures = append(failures, fmt.Errorf("%s: %w", store.Name(), err))
		}
	}

	if len(failures) == 0 {
		failures = append(failures, ErrTokenNotFound)
	}
	return nil, errs.Wrap(errs.ErrorTypeConfig, "", "no session token available", errors.Join(failures...))
}

// Store saves value in the first writable store
func (m *Manager) Store(value string) (string, error) {
	if value == "" {
		return "", ErrInvalidToken
	}
	token := &Token{Value: value, LastModified: time.Now()}

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(token)
		if err == nil {
			return store.Name(), nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to store token: %w", lastErr)
	}
	return "", errors.New("no available token stores")
}

// Delete removes the token from every writable store
func (m *Manager) Delete() error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		err := store.Delete()
		switch {
		case err == nil:
			deleted = true
		case errors.Is(err, ErrStoreUnavailable):
		default:
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil && !errors.Is(lastErr, ErrTokenNotFound) {
		return fmt.Errorf("failed to delete token: %w", lastErr)
	}
	return ErrTokenNotFound
}

// StoreStatus describes what one store holds
type StoreStatus struct {
	Store  string
	Found  bool
	Masked string
	Err    error
}

// Status reports every store in resolution order
func (m *Manager) Status() []StoreStatus {
	statuses := make([]StoreStatus, 0, len(m.stores))
	for _, store := range m.stores {
		st := StoreStatus{Store: store.Name()}
		token, err := store.Retrieve()
		switch {
		case err == nil && token != nil:
			st.Found = true
			st.Masked = MaskToken(token.Value)
		case err != nil && !errors.Is(err, ErrTokenNotFound):
			st.Err = err
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "wvdl")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "wvdl")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "wvdl")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "wvdl")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// MaskToken masks all but the first 4 and last 4 characters of a token
func MaskToken(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrInvalidToken     = errors.New("invalid token")
	ErrStoreUnavailable = errors.New("token store is read-only")
)
