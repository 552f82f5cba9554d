package service

import (
	"errors"

	"github.com/reviewhub/credential-service/internal/repository"
	"github.com/reviewhub/credential-service/internal/security"
)

var (
	ErrInvalidSecret       = security.ErrInvalidSecret
	ErrPersistenceConflict = repository.ErrPersistenceConflict

	ErrNoActivePin        = errors.New("no active pin")
	ErrPinExpired         = errors.New("pin expired")
	ErrPinMismatch        = errors.New("pin mismatch")
	ErrDispatchFailed     = errors.New("pin dispatch failed")
	ErrUnknownPinPurpose  = errors.New("unknown pin purpose")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrCredentialExists   = errors.New("credential already exists")
	ErrWeakPassword       = errors.New("password does not meet policy requirements")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

// IsPinRejection reports whether err is one of the pin outcomes callers must
// not distinguish to end users.
func IsPinRejection(err error) bool {
	return errors.Is(err, ErrNoActivePin) ||
		errors.Is(err, ErrPinExpired) ||
		errors.Is(err, ErrPinMismatch) ||
		errors.Is(err, ErrCredentialNotFound)
}
