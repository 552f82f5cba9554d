package service

import (
	"fmt"
	"time"

	"github.com/reviewhub/credential-service/internal/config"
	"github.com/reviewhub/credential-service/internal/domain"
)

const maxPinTTL = 24 * time.Hour

// ExpiryPolicy owns the validity window of each pin purpose. It holds no state
// besides its TTL table and clock.
type ExpiryPolicy struct {
	ttls map[domain.PinPurpose]time.Duration
	now  func() time.Time
}

func NewExpiryPolicy(ttls map[domain.PinPurpose]time.Duration, now func() time.Time) (*ExpiryPolicy, error) {
	if now == nil {
		now = time.Now
	}
	copied := make(map[domain.PinPurpose]time.Duration, len(ttls))
	for purpose, ttl := range ttls {
		if !purpose.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPinPurpose, purpose)
		}
		if ttl <= 0 || ttl > maxPinTTL {
			return nil, fmt.Errorf("ttl for %s must be within (0, %s], got %s", purpose, maxPinTTL, ttl)
		}
		copied[purpose] = ttl
	}
	return &ExpiryPolicy{ttls: copied, now: now}, nil
}

func NewExpiryPolicyFromConfig(cfg *config.Config) (*ExpiryPolicy, error) {
	return NewExpiryPolicy(map[domain.PinPurpose]time.Duration{
		domain.PinPurposeEmailVerification: cfg.AuthEmailPinTTL,
		domain.PinPurposePasswordReset:     cfg.AuthPasswordResetPinTTL,
	}, nil)
}

func (p *ExpiryPolicy) TTL(purpose domain.PinPurpose) (time.Duration, error) {
	ttl, ok := p.ttls[purpose]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPinPurpose, purpose)
	}
	return ttl, nil
}

func (p *ExpiryPolicy) Issue(purpose domain.PinPurpose) (issuedAt, expiresAt time.Time, err error) {
	ttl, err := p.TTL(purpose)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	issuedAt = p.Now()
	return issuedAt, issuedAt.Add(ttl), nil
}

// IsValid is exclusive at the boundary: a pin checked exactly at expiresAt is expired.
func (p *ExpiryPolicy) IsValid(expiresAt, now time.Time) bool {
	return now.Before(expiresAt)
}

func (p *ExpiryPolicy) Now() time.Time {
	return p.now().UTC()
}
