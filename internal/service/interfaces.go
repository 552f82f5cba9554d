package service

import (
	"context"

	"github.com/reviewhub/credential-service/internal/domain"
)

//go:generate mockgen -destination=gomock/mock_interfaces.go -package=gomock github.com/reviewhub/credential-service/internal/service CredentialServiceInterface,AccountServiceInterface

type CredentialServiceInterface interface {
	Register(ctx context.Context, identity, password string) error
	RegisterUser(ctx context.Context, user *domain.User, password string) error
	ResendVerification(ctx context.Context, identity string) error
	VerifyEmail(ctx context.Context, identity, pin string) error
	RequestPasswordReset(ctx context.Context, identity string) error
	ResetPassword(ctx context.Context, identity, pin, newPassword string) error
	ChangePassword(ctx context.Context, identity, currentPassword, newPassword string) error
	CheckPassword(ctx context.Context, identity, password string) error
}

type AccountServiceInterface interface {
	SignUp(ctx context.Context, in SignUpInput) (*domain.User, error)
	ResendVerification(ctx context.Context, email string) error
	ConfirmEmail(ctx context.Context, email, pin string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, pin, newPassword string) error
	CheckLogin(ctx context.Context, email, password string) (*LoginCheck, error)
	GetUser(ctx context.Context, id string) (*UserProfile, error)
	ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error
}
