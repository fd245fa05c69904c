// Package securestore provides the default storage.SecureStore: an
// AES-256-GCM encrypted JSON file holding the session tokens.
package securestore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/hkdf"

	"github.com/smallbiznis/valora-session/internal/storage"
)

const keyInfo = "valora-session/secure-store/v1"

// FileStore keeps key to secret pairs in a single encrypted file.
// Writes go through a temp file plus rename so a crash never leaves a
// partially written store behind.
type FileStore struct {
	mu   sync.Mutex
	path string
	aead cipher.AEAD
}

var _ storage.SecureStore = (*FileStore)(nil)

// NewFileStore derives the encryption key from secret via HKDF-SHA256
// and prepares the store at path. The file is created lazily on the
// first Save.
func NewFileStore(path string, secret []byte) (*FileStore, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("secure store secret is empty")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive store key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return &FileStore{path: path, aead: aead}, nil
}

// Save persists value under key.
func (s *FileStore) Save(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.load()
	if err != nil {
		return err
	}
	secrets[key] = value
	return s.persist(secrets)
}

// Get returns the secret stored under key, or "" when absent.
func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	secrets, err := s.load()
	if err != nil {
		return "", err
	}
	return secrets[key], nil
}

// ClearAll removes the backing file and every secret with it.
func (s *FileStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear secure store: %w", err)
	}
	return nil
}

func (s *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read secure store: %w", err)
	}
	nonceSize := s.aead.NonceSize()
	if len(raw) < nonceSize {
		return nil, fmt.Errorf("secure store file truncated")
	}
	plain, err := s.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt secure store: %w", err)
	}
	secrets := map[string]string{}
	if err := json.Unmarshal(plain, &secrets); err != nil {
		return nil, fmt.Errorf("decode secure store: %w", err)
	}
	return secrets, nil
}

func (s *FileStore) persist(secrets map[string]string) error {
	plain, err := json.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("encode secure store: %w", err)
	}
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, plain, nil)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return fmt.Errorf("write secure store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace secure store: %w", err)
	}
	return nil
}
