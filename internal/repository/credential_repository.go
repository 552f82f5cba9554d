package repository

import (
	"context"
	"errors"
	"time"

	"github.com/reviewhub/credential-service/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCredentialNotFound = errors.New("credential not found")

type CredentialRepository interface {
	Create(ctx context.Context, credential *domain.Credential) error
	// FindByIdentity is the default projection and never loads PasswordHash.
	FindByIdentity(ctx context.Context, identity string) (*domain.Credential, error)
	// FindForUpdate loads the full row and locks it until the transaction ends.
	FindForUpdate(ctx context.Context, identity string) (*domain.Credential, error)
	FindPasswordHash(ctx context.Context, identity string) (string, error)
	UpdatePassword(ctx context.Context, identity, hash string, changedAt time.Time) error
	MarkEmailVerified(ctx context.Context, identity string, at time.Time) error
}

type GormCredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &GormCredentialRepository{db: db}
}

func (r *GormCredentialRepository) Create(ctx context.Context, credential *domain.Credential) error {
	return ClassifyError(r.db.WithContext(ctx).Create(credential).Error)
}

func (r *GormCredentialRepository) FindByIdentity(ctx context.Context, identity string) (*domain.Credential, error) {
	var c domain.Credential
	err := r.db.WithContext(ctx).Omit("password_hash").Where("identity = ?", identity).First(&c).Error
	if err != nil {
		return nil, notFound(err, ErrCredentialNotFound)
	}
	return &c, nil
}

func (r *GormCredentialRepository) FindForUpdate(ctx context.Context, identity string) (*domain.Credential, error) {
	var c domain.Credential
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("identity = ?", identity).
		First(&c).Error
	if err != nil {
		return nil, notFound(ClassifyError(err), ErrCredentialNotFound)
	}
	return &c, nil
}

func (r *GormCredentialRepository) FindPasswordHash(ctx context.Context, identity string) (string, error) {
	var c domain.Credential
	err := r.db.WithContext(ctx).Select("identity", "password_hash").Where("identity = ?", identity).First(&c).Error
	if err != nil {
		return "", notFound(err, ErrCredentialNotFound)
	}
	return c.PasswordHash, nil
}

// UpdatePassword refuses to move PasswordChangedAt backwards; a guarded miss is
// reported as a conflict so the caller re-reads and retries.
func (r *GormCredentialRepository) UpdatePassword(ctx context.Context, identity, hash string, changedAt time.Time) error {
	changedAt = changedAt.UTC()
	res := r.db.WithContext(ctx).Model(&domain.Credential{}).
		Where("identity = ?", identity).
		Where("password_changed_at IS NULL OR password_changed_at <= ?", changedAt).
		Updates(map[string]any{
			"password_hash":       hash,
			"password_changed_at": changedAt,
			"updated_at":          changedAt,
		})
	if res.Error != nil {
		return ClassifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPersistenceConflict
	}
	return nil
}

func (r *GormCredentialRepository) MarkEmailVerified(ctx context.Context, identity string, at time.Time) error {
	at = at.UTC()
	res := r.db.WithContext(ctx).Model(&domain.Credential{}).
		Where("identity = ? AND email_verified_at IS NULL", identity).
		Updates(map[string]any{"email_verified_at": at, "updated_at": at})
	return ClassifyError(res.Error)
}
