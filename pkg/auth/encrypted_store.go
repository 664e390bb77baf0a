package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize      = 32
	keySize       = 32
	iterations    = 100000
	formatVersion = 2

	// PassphraseEnvVar overrides the generated passphrase file
	PassphraseEnvVar = "WVDL_PASSPHRASE"
)

// EncryptedFileStore implements TokenStore with a single AES-GCM sealed
// file. The key is derived with PBKDF2 from WVDL_PASSPHRASE or from a
// generated .passphrase file next to the store.
type EncryptedFileStore struct {
	path       string
	passphrase string
	mu         sync.RWMutex
}

// sealedToken is the on-disk layout. The salt doubles as GCM additional
// data, so a file with a swapped salt fails to open.
type sealedToken struct {
	Version  int       `json:"version"`
	Salt     []byte    `json:"salt"`
	Sealed   []byte    `json:"sealed"`
	Modified time.Time `json:"modified"`
}

// NewEncryptedFileStore opens the store at path, creating its directory
func NewEncryptedFileStore(path string) (*EncryptedFileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	passphrase, err := loadPassphrase(filepath.Join(filepath.Dir(path), ".passphrase"))
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}
	return &EncryptedFileStore{path: path, passphrase: passphrase}, nil
}

func (e *EncryptedFileStore) Name() string {
	return "encrypted file " + e.path
}

// Store seals token under a fresh salt and replaces the file
func (e *EncryptedFileStore) Store(token *Token) error {
	if token == nil || token.Value == "" {
		return ErrInvalidToken
	}

	plaintext, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	aead, err := e.aead(salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	content, err := json.MarshalIndent(sealedToken{
		Version:  formatVersion,
		Salt:     salt,
		Sealed:   aead.Seal(nonce, nonce, plaintext, salt),
		Modified: time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal file data: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return writeFileAtomic(e.path, content)
}

// Retrieve opens the sealed token
func (e *EncryptedFileStore) Retrieve() (*Token, error) {
	e.mu.RLock()
	content, err := os.ReadFile(e.path)
	e.mu.RUnlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var file sealedToken
	if err := json.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}
	if file.Version != formatVersion {
		return nil, fmt.Errorf("unsupported token file version %d", file.Version)
	}

	aead, err := e.aead(file.Salt)
	if err != nil {
		return nil, err
	}
	if len(file.Sealed) < aead.NonceSize() {
		return nil, errors.New("sealed token too short")
	}
	nonce, sealed := file.Sealed[:aead.NonceSize()], file.Sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, file.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt token, wrong passphrase? %w", err)
	}

	var token Token
	if err := json.Unmarshal(plaintext, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return &token, nil
}

// Delete removes the file
func (e *EncryptedFileStore) Delete() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := os.Remove(e.path)
	if errors.Is(err, os.ErrNotExist) {
		return ErrTokenNotFound
	}
	return err
}

func (e *EncryptedFileStore) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(e.passphrase), salt, iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// loadPassphrase prefers WVDL_PASSPHRASE, then the passphrase file, and
// creates that file with a random value when neither exists.
func loadPassphrase(file string) (string, error) {
	if pass := os.Getenv(PassphraseEnvVar); pass != "" {
		return pass, nil
	}

	if content, err := os.ReadFile(file); err == nil {
		if pass := strings.TrimSpace(string(content)); pass != "" {
			return pass, nil
		}
	}

	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	pass := base64.RawURLEncoding.EncodeToString(raw)
	if err := os.WriteFile(file, []byte(pass), 0600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return pass, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace file: %w", err)
	}
	return nil
}
