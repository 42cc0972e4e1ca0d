// Package sealed encrypts values before they reach an underlying
// persistence.Store. Keys stay in the clear so lookups keep working.
package sealed

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/example/eventshare/internal/persistence"
)

// SaltKey is the reserved key holding the key-derivation salt.
const SaltKey = "__sealed_salt"

var (
	// ErrDecrypt is returned when a stored value cannot be opened, usually
	// because the passphrase differs from the one used to seal it.
	ErrDecrypt = errors.New("sealed: unable to decrypt value")
	// ErrEmptyPassphrase is returned by New when no passphrase is given.
	ErrEmptyPassphrase = errors.New("sealed: passphrase is required")
)

// KeyParams controls argon2id key derivation.
type KeyParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
}

// DefaultKeyParams mirror common argon2id recommendations for interactive use.
var DefaultKeyParams = KeyParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
}

const nonceSize = 24

// Store seals values with XSalsa20-Poly1305 under a passphrase derived key.
type Store struct {
	inner persistence.Store
	key   [32]byte
}

var _ persistence.Store = (*Store)(nil)

// New wraps inner with DefaultKeyParams.
func New(ctx context.Context, inner persistence.Store, passphrase string) (*Store, error) {
	return NewWithParams(ctx, inner, passphrase, DefaultKeyParams)
}

// NewWithParams derives the sealing key from passphrase and the salt stored in
// inner, creating and persisting a fresh salt on first use.
func NewWithParams(ctx context.Context, inner persistence.Store, passphrase string, params KeyParams) (*Store, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	if inner == nil {
		return nil, fmt.Errorf("sealed: inner store is nil")
	}

	salt, err := loadOrCreateSalt(ctx, inner, params.SaltLength)
	if err != nil {
		return nil, err
	}

	derived := argon2.IDKey([]byte(passphrase), salt, params.Iterations, params.Memory, params.Parallelism, 32)
	s := &Store{inner: inner}
	copy(s.key[:], derived)
	return s, nil
}

func loadOrCreateSalt(ctx context.Context, inner persistence.Store, length uint32) ([]byte, error) {
	encoded, err := inner.Get(ctx, SaltKey)
	if err == nil {
		salt, decodeErr := base64.RawStdEncoding.DecodeString(encoded)
		if decodeErr != nil {
			return nil, fmt.Errorf("sealed: corrupt salt: %w", decodeErr)
		}
		return salt, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return nil, fmt.Errorf("sealed: read salt: %w", err)
	}

	if length == 0 {
		length = DefaultKeyParams.SaltLength
	}
	salt := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("sealed: generate salt: %w", err)
	}
	if err := inner.Set(ctx, SaltKey, base64.RawStdEncoding.EncodeToString(salt)); err != nil {
		return nil, fmt.Errorf("sealed: persist salt: %w", err)
	}
	return salt, nil
}

// Get opens the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if key == SaltKey {
		return "", persistence.ErrInvalidKey
	}
	encoded, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return s.open(encoded)
}

// Set seals value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == SaltKey {
		return persistence.ErrInvalidKey
	}
	sealed, err := s.seal(value)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, sealed)
}

// Delete removes keys. The salt is never removed.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	filtered := make([]string, 0, len(keys))
	for _, key := range keys {
		if key != SaltKey {
			filtered = append(filtered, key)
		}
	}
	return s.inner.Delete(ctx, filtered...)
}

// Clear removes every key except the salt, so values written afterwards can
// still be opened with the same passphrase.
func (s *Store) Clear(ctx context.Context) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}
	return s.inner.Delete(ctx, keys...)
}

// Keys lists stored keys without the reserved salt key.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.inner.Keys(ctx)
	if err != nil {
		return nil, err
	}
	visible := keys[:0]
	for _, key := range keys {
		if key != SaltKey {
			visible = append(visible, key)
		}
	}
	return visible, nil
}

func (s *Store) seal(value string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("sealed: generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, &s.key)
	return base64.RawStdEncoding.EncodeToString(box), nil
}

func (s *Store) open(encoded string) (string, error) {
	box, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return "", ErrDecrypt
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
