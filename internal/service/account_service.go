package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reviewhub/credential-service/internal/domain"
	"github.com/reviewhub/credential-service/internal/repository"
	"github.com/reviewhub/credential-service/internal/security"
)

type SignUpInput struct {
	Email     string
	UserName  string
	FirstName string
	LastName  string
	Password  string
}

func (in SignUpInput) validate() error {
	if err := validateEmail(repository.NormalizeEmail(in.Email)); err != nil {
		return err
	}
	if err := validateLength("user_name", in.UserName, minUserNameLength, maxUserNameLength); err != nil {
		return err
	}
	if err := validateLength("first_name", in.FirstName, minNameLength, maxNameLength); err != nil {
		return err
	}
	return validateLength("last_name", in.LastName, minNameLength, maxNameLength)
}

type LoginCheck struct {
	User          *domain.User
	EmailVerified bool
}

type UserProfile struct {
	User              *domain.User
	EmailVerifiedAt   *time.Time
	PasswordChangedAt *time.Time
}

// AccountService resolves emails to identities for the HTTP surface and
// delegates every credential change to CredentialService.
// Unknown emails get the same answer and the same hashing work as known ones.
type AccountService struct {
	reads       repository.Repositories
	credentials CredentialServiceInterface
	decoy       *security.Decoy
}

func NewAccountService(reads repository.Repositories, credentials CredentialServiceInterface, hasher security.SecretHasher) *AccountService {
	return &AccountService{reads: reads, credentials: credentials, decoy: security.NewDecoy(hasher)}
}

// SignUp creates the user, its credential and the first verification pin. When
// only the dispatch fails the user is returned together with ErrDispatchFailed.
func (s *AccountService) SignUp(ctx context.Context, in SignUpInput) (*domain.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:                uuid.NewString(),
		Email:             repository.NormalizeEmail(in.Email),
		UserName:          strings.TrimSpace(in.UserName),
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		ProfilePictureURL: domain.DefaultProfilePictureURL,
		IsActive:          true,
	}
	err := s.credentials.RegisterUser(ctx, user, in.Password)
	if errors.Is(err, ErrDispatchFailed) {
		return user, err
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ResendVerification answers nil for unknown emails so callers cannot discover
// which addresses are registered.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.lookup(ctx, email)
	if err != nil {
		return ignoreUnknown(err)
	}
	return ignoreUnknown(s.credentials.ResendVerification(ctx, user.ID))
}

func (s *AccountService) ConfirmEmail(ctx context.Context, email, pin string) error {
	if strings.TrimSpace(pin) == "" {
		return ErrInvalidSecret
	}
	user, err := s.lookup(ctx, email)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			s.decoy.Verify(ctx, pin)
		}
		return err
	}
	return s.credentials.VerifyEmail(ctx, user.ID, pin)
}

func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.lookup(ctx, email)
	if err != nil {
		return ignoreUnknown(err)
	}
	return ignoreUnknown(s.credentials.RequestPasswordReset(ctx, user.ID))
}

// ResetPassword applies the password policy before the email is resolved. A
// known email costs one hash plus one pin check, so an unknown one runs the
// decoy twice.
func (s *AccountService) ResetPassword(ctx context.Context, email, pin, newPassword string) error {
	if newPassword == "" || strings.TrimSpace(pin) == "" {
		return ErrInvalidSecret
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.lookup(ctx, email)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			s.decoy.Verify(ctx, newPassword)
			s.decoy.Verify(ctx, pin)
		}
		return err
	}
	return s.credentials.ResetPassword(ctx, user.ID, pin, newPassword)
}

func (s *AccountService) CheckLogin(ctx context.Context, email, password string) (*LoginCheck, error) {
	if password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.lookup(ctx, email)
	if errors.Is(err, ErrCredentialNotFound) {
		s.decoy.Verify(ctx, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		s.decoy.Verify(ctx, password)
		return nil, ErrInvalidCredentials
	}
	if err := s.credentials.CheckPassword(ctx, user.ID, password); err != nil {
		if errors.Is(err, ErrInvalidSecret) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	cred, err := s.reads.Credentials.FindByIdentity(ctx, user.ID)
	if err != nil {
		return nil, mapCredentialErr(err)
	}
	return &LoginCheck{User: user, EmailVerified: cred.EmailVerified()}, nil
}

func (s *AccountService) GetUser(ctx context.Context, id string) (*UserProfile, error) {
	user, err := s.reads.Users.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, mapCredentialErr(err)
	}
	cred, err := s.reads.Credentials.FindByIdentity(ctx, user.ID)
	if err != nil {
		return nil, mapCredentialErr(err)
	}
	return &UserProfile{
		User:              user,
		EmailVerifiedAt:   cred.EmailVerifiedAt,
		PasswordChangedAt: cred.PasswordChangedAt,
	}, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	return s.credentials.ChangePassword(ctx, strings.TrimSpace(id), currentPassword, newPassword)
}

func (s *AccountService) lookup(ctx context.Context, email string) (*domain.User, error) {
	email = repository.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	user, err := s.reads.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, mapCredentialErr(err)
	}
	return user, nil
}

func ignoreUnknown(err error) error {
	if errors.Is(err, ErrCredentialNotFound) || errors.Is(err, ErrInvalidInput) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("account: %w", err)
	}
	return nil
}
