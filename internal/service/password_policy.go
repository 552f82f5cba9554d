package service

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	digitRe     = regexp.MustCompile(`[0-9]`)
	specialRe   = regexp.MustCompile(`[^A-Za-z0-9]`)
)

const (
	minPasswordLength = 12
	minNameLength     = 2
	maxNameLength     = 20
	minUserNameLength = 5
	maxUserNameLength = 20
)

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength || !uppercaseRe.MatchString(password) ||
		!lowercaseRe.MatchString(password) || !digitRe.MatchString(password) || !specialRe.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}

func validateLength(field, value string, lo, hi int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < lo || n > hi {
		return fmt.Errorf("%w: %s must be between %d and %d characters", ErrInvalidInput, field, lo, hi)
	}
	return nil
}
