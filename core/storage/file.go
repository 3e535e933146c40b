package storage

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

type fileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	aead   interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// NewFile creates a file-backed store at cfg.Path. The file holds a flat JSON
// object and is rewritten atomically on every mutation. When cfg.SealKey is
// set, values are sealed with XChaCha20-Poly1305 so the bearer token never
// touches disk in plaintext.
func NewFile(cfg FileConfig) (Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file store requires a path")
	}

	s := &fileStore{
		path:   cfg.Path,
		values: make(map[string]string),
	}

	if len(cfg.SealKey) > 0 {
		if len(cfg.SealKey) != chacha20poly1305.KeySize {
			return nil, ErrSealKeySize
		}
		aead, err := chacha20poly1305.NewX(cfg.SealKey)
		if err != nil {
			return nil, fmt.Errorf("init seal cipher: %w", err)
		}
		s.aead = aead
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *fileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read state file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return fmt.Errorf("parse state file: %w", err)
	}
	return nil
}

func (s *fileStore) flush() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".fitcheck-state-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *fileStore) seal(value string) (string, error) {
	if s.aead == nil {
		return value, nil
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(value), nil)
	return base64.RawStdEncoding.EncodeToString(sealed), nil
}

func (s *fileStore) open(value string) (string, error) {
	if s.aead == nil {
		return value, nil
	}
	raw, err := base64.RawStdEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return "", fmt.Errorf("sealed value too short")
	}
	nonce, ciphertext := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plain, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("unseal value: %w", err)
	}
	return string(plain), nil
}

func (s *fileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return s.open(v)
}

func (s *fileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := s.seal(value)
	if err != nil {
		return err
	}
	s.values[key] = sealed
	return s.flush()
}

func (s *fileStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, k := range keys {
		if _, ok := s.values[k]; ok {
			delete(s.values, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.flush()
}

func (s *fileStore) Close(_ context.Context) error {
	return nil
}
