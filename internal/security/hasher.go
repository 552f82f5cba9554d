package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	HashDriverArgon2id = "argon2id"
	HashDriverBcrypt   = "bcrypt"
)

var (
	ErrInvalidSecret = errors.New("secret must not be empty")
	ErrInvalidHash   = errors.New("invalid secret hash")
)

// SecretHasher produces self-contained one-way encodings of passwords and pins.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, encoded string) (bool, error)
}

// ContextHasher is implemented by hashers that may block waiting for capacity.
type ContextHasher interface {
	HashContext(ctx context.Context, secret string) (string, error)
	VerifyContext(ctx context.Context, secret, encoded string) (bool, error)
}

// HashSecret uses the context-aware path when the hasher provides one.
func HashSecret(ctx context.Context, h SecretHasher, secret string) (string, error) {
	if ch, ok := h.(ContextHasher); ok {
		return ch.HashContext(ctx, secret)
	}
	return h.Hash(secret)
}

func VerifySecret(ctx context.Context, h SecretHasher, secret, encoded string) (bool, error) {
	if ch, ok := h.(ContextHasher); ok {
		return ch.VerifyContext(ctx, secret, encoded)
	}
	return h.Verify(secret, encoded)
}

// MultiHasher hashes with the configured driver and verifies any encoding
// produced by a supported driver, so stored hashes survive a driver switch.
type MultiHasher struct {
	driver string
	argon  *Argon2idHasher
	bcrypt *BcryptHasher
}

func NewSecretHasher(driver string, workFactor int) (*MultiHasher, error) {
	h := &MultiHasher{
		driver: strings.ToLower(strings.TrimSpace(driver)),
		argon:  NewArgon2idHasher(DefaultArgon2idParams()),
		bcrypt: NewBcryptHasher(DefaultBcryptCost),
	}
	switch h.driver {
	case HashDriverArgon2id:
		if workFactor > 0 {
			params := DefaultArgon2idParams()
			params.Time = uint32(workFactor) // #nosec G115 -- positive, validated by config.
			h.argon = NewArgon2idHasher(params)
		}
	case HashDriverBcrypt:
		if workFactor > 0 {
			if workFactor < MinBcryptCost || workFactor > MaxBcryptCost {
				return nil, fmt.Errorf("bcrypt cost must be within [%d,%d]", MinBcryptCost, MaxBcryptCost)
			}
			h.bcrypt = NewBcryptHasher(workFactor)
		}
	default:
		return nil, fmt.Errorf("unsupported hash driver %q", driver)
	}
	return h, nil
}

func (h *MultiHasher) Driver() string {
	return h.driver
}

func (h *MultiHasher) Hash(secret string) (string, error) {
	if h.driver == HashDriverArgon2id {
		return h.argon.Hash(secret)
	}
	return h.bcrypt.Hash(secret)
}

func (h *MultiHasher) Verify(secret, encoded string) (bool, error) {
	switch {
	case strings.HasPrefix(encoded, argonPrefix):
		return h.argon.Verify(secret, encoded)
	case isBcryptEncoding(encoded):
		return h.bcrypt.Verify(secret, encoded)
	default:
		if secret == "" {
			return false, ErrInvalidSecret
		}
		return false, ErrInvalidHash
	}
}
