package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/reviewhub/credential-service/internal/config"
	"github.com/reviewhub/credential-service/internal/domain"
	"github.com/reviewhub/credential-service/internal/observability"
	"github.com/reviewhub/credential-service/internal/repository"
	"github.com/reviewhub/credential-service/internal/security"
)

// CredentialService owns the credential record state machine. Every mutation
// runs under the identity lock and inside one transaction; pins are
// dispatched only after that transaction commits.
type CredentialService struct {
	tx              repository.Transactor
	reads           repository.Repositories
	hasher          security.SecretHasher
	pins            security.PinGenerator
	expiry          *ExpiryPolicy
	dispatcher      PinDispatcher
	locker          IdentityLocker
	decoy           *security.Decoy
	logger          *slog.Logger
	notifierDriver  string
	notifierTimeout time.Duration
	verifyBaseURL   string
	resetBaseURL    string
}

func NewCredentialService(
	cfg *config.Config,
	tx repository.Transactor,
	reads repository.Repositories,
	hasher security.SecretHasher,
	pins security.PinGenerator,
	expiry *ExpiryPolicy,
	dispatcher PinDispatcher,
	locker IdentityLocker,
	logger *slog.Logger,
) *CredentialService {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.NotifierTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CredentialService{
		tx:              tx,
		reads:           reads,
		hasher:          hasher,
		pins:            pins,
		expiry:          expiry,
		dispatcher:      dispatcher,
		locker:          locker,
		decoy:           security.NewDecoy(hasher),
		logger:          logger,
		notifierDriver:  cfg.NotifierDriver,
		notifierTimeout: timeout,
		verifyBaseURL:   cfg.AuthEmailVerifyBaseURL,
		resetBaseURL:    cfg.AuthPasswordResetBaseURL,
	}
}

// issuedPin is a freshly generated pin and its hash, prepared before any lock
// is taken so hashing stays out of the critical section.
type issuedPin struct {
	plain string
	hash  string
}

// Register creates the credential for an existing user row and issues the
// first email verification pin.
func (s *CredentialService) Register(ctx context.Context, identity, password string) error {
	return s.register(ctx, identity, password, func(ctx context.Context, repos repository.Repositories) (*domain.User, error) {
		user, err := repos.Users.FindByID(ctx, identity)
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: no user for identity", ErrInvalidInput)
		}
		return user, err
	})
}

// RegisterUser inserts the user row and its credential in the same transaction.
func (s *CredentialService) RegisterUser(ctx context.Context, user *domain.User, password string) error {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.register(ctx, user.ID, password, func(ctx context.Context, repos repository.Repositories) (*domain.User, error) {
		if err := repos.Users.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	})
}

func (s *CredentialService) register(
	ctx context.Context,
	identity, password string,
	owner func(ctx context.Context, repos repository.Repositories) (*domain.User, error),
) error {
	const flow = "register"
	if password == "" {
		observability.RecordCredentialFlowEvent(ctx, flow, "invalid_secret")
		return ErrInvalidSecret
	}
	if err := validatePassword(password); err != nil {
		observability.RecordCredentialFlowEvent(ctx, flow, "weak_password")
		return err
	}
	passwordHash, err := security.HashSecret(ctx, s.hasher, password)
	if err != nil {
		return err
	}
	pin, err := s.preparePin(ctx)
	if err != nil {
		return err
	}

	unlock, err := s.locker.Lock(ctx, identity)
	if err != nil {
		return err
	}
	defer unlock()

	var notification PinNotification
	err = s.withRetry(ctx, flow, func() error {
		return s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
			user, err := owner(ctx, repos)
			if err != nil {
				return err
			}
			if err := repos.Credentials.Create(ctx, &domain.Credential{
				Identity:     identity,
				PasswordHash: passwordHash,
			}); err != nil {
				return err
			}
			notification, err = s.storePin(ctx, repos, user, domain.PinPurposeEmailVerification, pin)
			return err
		})
	})
	if errors.Is(err, repository.ErrDuplicate) {
		observability.RecordCredentialFlowEvent(ctx, flow, "exists")
		return ErrCredentialExists
	}
	if err != nil {
		observability.RecordCredentialFlowEvent(ctx, flow, "error")
		return err
	}
	observability.RecordCredentialFlowEvent(ctx, flow, "committed")
	return s.dispatch(ctx, domain.PinPurposeEmailVerification, notification)
}

// ResendVerification replaces the email verification pin. Verified identities
// are left alone and nothing is sent.
func (s *CredentialService) ResendVerification(ctx context.Context, identity string) error {
	return s.reissue(ctx, "resend_verification", identity, domain.PinPurposeEmailVerification)
}

func (s *CredentialService) RequestPasswordReset(ctx context.Context, identity string) error {
	return s.reissue(ctx, "request_password_reset", identity, domain.PinPurposePasswordReset)
}

func (s *CredentialService) reissue(ctx context.Context, flow, identity string, purpose domain.PinPurpose) error {
	pin, err := s.preparePin(ctx)
	if err != nil {
		return err
	}
	unlock, err := s.locker.Lock(ctx, identity)
	if err != nil {
		return err
	}
	defer unlock()

	var (
		notification PinNotification
		skipped      bool
	)
	err = s.withRetry(ctx, flow, func() error {
		skipped = false
		return s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
			cred, err := repos.Credentials.FindForUpdate(ctx, identity)
			if err != nil {
				return mapCredentialErr(err)
			}
			if purpose == domain.PinPurposeEmailVerification && cred.EmailVerified() {
				skipped = true
				return nil
			}
			user, err := repos.Users.FindByID(ctx, identity)
			if err != nil {
				return mapCredentialErr(err)
			}
			notification, err = s.storePin(ctx, repos, user, purpose, pin)
			return err
		})
	})
	if err != nil {
		observability.RecordCredentialFlowEvent(ctx, flow, outcomeLabel(err))
		return err
	}
	if skipped {
		observability.RecordCredentialFlowEvent(ctx, flow, "already_verified")
		return nil
	}
	observability.RecordCredentialFlowEvent(ctx, flow, "committed")
	return s.dispatch(ctx, purpose, notification)
}

func (s *CredentialService) VerifyEmail(ctx context.Context, identity, pin string) error {
	return s.consumePin(ctx, "verify_email", identity, domain.PinPurposeEmailVerification, pin,
		func(ctx context.Context, repos repository.Repositories, now time.Time) error {
			return repos.Credentials.MarkEmailVerified(ctx, identity, now)
		})
}

// ResetPassword hashes the new password before opening the transaction, then
// swaps the hash, bumps PasswordChangedAt and deletes the slot atomically.
func (s *CredentialService) ResetPassword(ctx context.Context, identity, pin, newPassword string) error {
	if newPassword == "" {
		return ErrInvalidSecret
	}
	if err := validatePassword(newPassword); err != nil {
		observability.RecordCredentialFlowEvent(ctx, "reset_password", "weak_password")
		return err
	}
	hash, err := security.HashSecret(ctx, s.hasher, newPassword)
	if err != nil {
		return err
	}
	return s.consumePin(ctx, "reset_password", identity, domain.PinPurposePasswordReset, pin,
		func(ctx context.Context, repos repository.Repositories, now time.Time) error {
			return repos.Credentials.UpdatePassword(ctx, identity, hash, now)
		})
}

func (s *CredentialService) consumePin(
	ctx context.Context,
	flow, identity string,
	purpose domain.PinPurpose,
	pin string,
	onSuccess func(ctx context.Context, repos repository.Repositories, now time.Time) error,
) error {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		observability.RecordCredentialFlowEvent(ctx, flow, "invalid_secret")
		return ErrInvalidSecret
	}
	unlock, err := s.locker.Lock(ctx, identity)
	if err != nil {
		return err
	}
	defer unlock()

	// rejection is committed alongside any slot cleanup; it is reported
	// only after the transaction succeeds.
	var rejection error
	err = s.withRetry(ctx, flow, func() error {
		rejection = nil
		return s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
			if _, err := repos.Credentials.FindForUpdate(ctx, identity); err != nil {
				return mapCredentialErr(err)
			}
			slot, err := repos.Pins.FindForUpdate(ctx, identity, purpose)
			if errors.Is(err, repository.ErrPinSlotNotFound) {
				rejection = ErrNoActivePin
				return nil
			}
			if err != nil {
				return err
			}

			now := s.expiry.Now()
			if !s.expiry.IsValid(slot.ExpiresAt, now) {
				rejection = ErrPinExpired
				return repos.Pins.Delete(ctx, identity, purpose)
			}

			ok, err := security.VerifySecret(ctx, s.hasher, pin, slot.PinHash)
			if err != nil {
				return err
			}
			if !ok {
				rejection = ErrPinMismatch
				return nil
			}
			if err := repos.Pins.Delete(ctx, identity, purpose); err != nil {
				return err
			}
			return onSuccess(ctx, repos, now)
		})
	})
	if err != nil {
		observability.RecordCredentialFlowEvent(ctx, flow, outcomeLabel(err))
		return err
	}
	switch {
	case errors.Is(rejection, ErrNoActivePin):
		s.decoy.Verify(ctx, pin)
		observability.RecordPinLifecycleEvent(ctx, string(purpose), "missing")
	case errors.Is(rejection, ErrPinExpired):
		observability.RecordPinLifecycleEvent(ctx, string(purpose), "expired")
	case errors.Is(rejection, ErrPinMismatch):
		observability.RecordPinLifecycleEvent(ctx, string(purpose), "mismatch")
	default:
		observability.RecordPinLifecycleEvent(ctx, string(purpose), "consumed")
	}
	observability.RecordCredentialFlowEvent(ctx, flow, outcomeLabel(rejection))
	return rejection
}

// ChangePassword replaces the password after checking the current one and
// drops any outstanding reset pin.
func (s *CredentialService) ChangePassword(ctx context.Context, identity, currentPassword, newPassword string) error {
	const flow = "change_password"
	if currentPassword == "" || newPassword == "" {
		return ErrInvalidSecret
	}
	if err := validatePassword(newPassword); err != nil {
		observability.RecordCredentialFlowEvent(ctx, flow, "weak_password")
		return err
	}
	newHash, err := security.HashSecret(ctx, s.hasher, newPassword)
	if err != nil {
		return err
	}
	unlock, err := s.locker.Lock(ctx, identity)
	if err != nil {
		return err
	}
	defer unlock()

	err = s.withRetry(ctx, flow, func() error {
		return s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
			cred, err := repos.Credentials.FindForUpdate(ctx, identity)
			if err != nil {
				return mapCredentialErr(err)
			}
			ok, err := security.VerifySecret(ctx, s.hasher, currentPassword, cred.PasswordHash)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInvalidCredentials
			}
			if err := repos.Credentials.UpdatePassword(ctx, identity, newHash, s.expiry.Now()); err != nil {
				return err
			}
			return repos.Pins.Delete(ctx, identity, domain.PinPurposePasswordReset)
		})
	})
	observability.RecordCredentialFlowEvent(ctx, flow, outcomeLabel(err))
	return err
}

// CheckPassword compares a candidate password against the stored hash without
// locking the record.
func (s *CredentialService) CheckPassword(ctx context.Context, identity, password string) error {
	if password == "" {
		return ErrInvalidSecret
	}
	hash, err := s.reads.Credentials.FindPasswordHash(ctx, identity)
	if errors.Is(err, repository.ErrCredentialNotFound) {
		s.decoy.Verify(ctx, password)
		observability.RecordCredentialFlowEvent(ctx, "check_password", "invalid_credentials")
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	ok, err := security.VerifySecret(ctx, s.hasher, password, hash)
	if err != nil {
		return err
	}
	if !ok {
		observability.RecordCredentialFlowEvent(ctx, "check_password", "invalid_credentials")
		return ErrInvalidCredentials
	}
	observability.RecordCredentialFlowEvent(ctx, "check_password", "success")
	return nil
}

func (s *CredentialService) preparePin(ctx context.Context) (issuedPin, error) {
	plain, err := s.pins.Generate()
	if err != nil {
		return issuedPin{}, fmt.Errorf("generate pin: %w", err)
	}
	hash, err := security.HashSecret(ctx, s.hasher, plain)
	if err != nil {
		return issuedPin{}, err
	}
	return issuedPin{plain: plain, hash: hash}, nil
}

// storePin overwrites the slot for purpose. The timestamps are taken under the
// lock so the stored window always matches the last pin written.
func (s *CredentialService) storePin(
	ctx context.Context,
	repos repository.Repositories,
	user *domain.User,
	purpose domain.PinPurpose,
	pin issuedPin,
) (PinNotification, error) {
	issuedAt, expiresAt, err := s.expiry.Issue(purpose)
	if err != nil {
		return PinNotification{}, err
	}
	if err := repos.Pins.Upsert(ctx, &domain.PinSlot{
		Identity:  user.ID,
		Purpose:   purpose,
		PinHash:   pin.hash,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}); err != nil {
		return PinNotification{}, err
	}
	actionURL, err := s.actionURL(purpose, user.Email, pin.plain)
	if err != nil {
		return PinNotification{}, err
	}
	observability.RecordPinLifecycleEvent(ctx, string(purpose), "issued")
	return PinNotification{
		Identity:  user.ID,
		Email:     user.Email,
		Pin:       pin.plain,
		ExpiresAt: expiresAt,
		ActionURL: actionURL,
	}, nil
}

func (s *CredentialService) actionURL(purpose domain.PinPurpose, email, pin string) (string, error) {
	base := s.verifyBaseURL
	if purpose == domain.PinPurposePasswordReset {
		base = s.resetBaseURL
	}
	if strings.TrimSpace(base) == "" {
		return "", nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid %s base url: %w", purpose, err)
	}
	q := u.Query()
	q.Set("email", email)
	q.Set("pin", pin)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// dispatch sends the pin after commit. It is detached from the caller's
// cancellation and bounded by the notifier timeout; the slot stays committed
// whatever the outcome.
func (s *CredentialService) dispatch(ctx context.Context, purpose domain.PinPurpose, n PinNotification) error {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifierTimeout)
	defer cancel()

	start := time.Now()
	var err error
	switch purpose {
	case domain.PinPurposePasswordReset:
		err = s.dispatcher.SendPasswordResetPin(dctx, n)
	default:
		err = s.dispatcher.SendVerificationPin(dctx, n)
	}
	if err != nil {
		observability.RecordPinDispatch(ctx, string(purpose), s.notifierDriver, "error", time.Since(start))
		s.logger.WarnContext(ctx, "pin dispatch failed",
			"identity", n.Identity,
			"purpose", string(purpose),
			"driver", s.notifierDriver,
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}
	observability.RecordPinDispatch(ctx, string(purpose), s.notifierDriver, "success", time.Since(start))
	return nil
}

// withRetry runs fn again once when the store reports a serialization
// failure, deadlock or busy database.
func (s *CredentialService) withRetry(ctx context.Context, op string, fn func() error) error {
	err := fn()
	if !errors.Is(err, ErrPersistenceConflict) {
		return err
	}
	observability.RecordPersistenceConflict(ctx, op, "retried")
	s.logger.InfoContext(ctx, "retrying after persistence conflict", "operation", op, "error", err)
	err = fn()
	if errors.Is(err, ErrPersistenceConflict) {
		observability.RecordPersistenceConflict(ctx, op, "exhausted")
	}
	return err
}

func mapCredentialErr(err error) error {
	if errors.Is(err, repository.ErrCredentialNotFound) || errors.Is(err, repository.ErrUserNotFound) {
		return ErrCredentialNotFound
	}
	return err
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNoActivePin):
		return "no_active_pin"
	case errors.Is(err, ErrPinExpired):
		return "expired"
	case errors.Is(err, ErrPinMismatch):
		return "mismatch"
	case errors.Is(err, ErrCredentialNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrPersistenceConflict):
		return "conflict"
	default:
		return "error"
	}
}
