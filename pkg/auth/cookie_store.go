package auth

import (
	"fmt"
	"os"
	"regexp"
)

// tokenCookie matches the session cookie line of a Netscape cookie file:
// domain, include-subdomains, path, secure, expiry, name, value.
var tokenCookie = regexp.MustCompile(`(?m)^\.weverse\.io\t[^\t]+\t[^\t]+\t[^\t]+\t[^\t]+\twe_access_token\t([^\t\r\n]+)\r?$`)

// CookieFileStore reads the token from a browser cookie export
type CookieFileStore struct {
	path string
}

// NewCookieFileStore creates a store over the cookie file at path
func NewCookieFileStore(path string) *CookieFileStore {
	return &CookieFileStore{path: path}
}

func (c *CookieFileStore) Name() string {
	return "cookie file " + c.path
}

// Store is not supported; the file belongs to the browser export
func (c *CookieFileStore) Store(token *Token) error {
	return ErrStoreUnavailable
}

// Retrieve parses the cookie file
func (c *CookieFileStore) Retrieve() (*Token, error) {
	content, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.path, err)
	}
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, err
	}

	token, err := ParseCookieFile(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", c.path, err)
	}
	return &Token{Value: token, LastModified: info.ModTime()}, nil
}

// Delete is not supported
func (c *CookieFileStore) Delete() error {
	return ErrStoreUnavailable
}

// ParseCookieFile extracts the we_access_token value for .weverse.io
func ParseCookieFile(content string) (string, error) {
	m := tokenCookie.FindStringSubmatch(content)
	if m == nil {
		return "", ErrTokenNotFound
	}
	return m[1], nil
}
