package repository

import (
	"context"
	"errors"
	"time"

	"github.com/reviewhub/credential-service/internal/domain"
	"github.com/reviewhub/credential-service/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPinSlotNotFound = errors.New("pin slot not found")

type PinSlotRepository interface {
	// Upsert replaces any existing slot for the same identity and purpose.
	Upsert(ctx context.Context, slot *domain.PinSlot) error
	FindForUpdate(ctx context.Context, identity string, purpose domain.PinPurpose) (*domain.PinSlot, error)
	Delete(ctx context.Context, identity string, purpose domain.PinPurpose) error
	DeleteExpired(ctx context.Context, now time.Time, batchSize int) (int64, error)
}

type GormPinSlotRepository struct {
	db *gorm.DB
}

func NewPinSlotRepository(db *gorm.DB) PinSlotRepository {
	return &GormPinSlotRepository{db: db}
}

func (r *GormPinSlotRepository) Upsert(ctx context.Context, slot *domain.PinSlot) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity"}, {Name: "purpose"}},
		DoUpdates: clause.AssignmentColumns([]string{"pin_hash", "issued_at", "expires_at"}),
	}).Create(slot).Error
	observability.RecordRepositoryOperation(ctx, "pin_slot", "upsert", outcome(err))
	return ClassifyError(err)
}

func (r *GormPinSlotRepository) FindForUpdate(ctx context.Context, identity string, purpose domain.PinPurpose) (*domain.PinSlot, error) {
	var slot domain.PinSlot
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("identity = ? AND purpose = ?", identity, purpose).
		First(&slot).Error
	if err != nil {
		return nil, notFound(ClassifyError(err), ErrPinSlotNotFound)
	}
	return &slot, nil
}

func (r *GormPinSlotRepository) Delete(ctx context.Context, identity string, purpose domain.PinPurpose) error {
	err := r.db.WithContext(ctx).
		Where("identity = ? AND purpose = ?", identity, purpose).
		Delete(&domain.PinSlot{}).Error
	observability.RecordRepositoryOperation(ctx, "pin_slot", "delete", outcome(err))
	return ClassifyError(err)
}

// DeleteExpired removes at most batchSize slots whose window has closed.
// Verification never depends on it; expired slots are rejected on read.
func (r *GormPinSlotRepository) DeleteExpired(ctx context.Context, now time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	scoped := r.db.WithContext(ctx)
	var keys []domain.PinSlot
	err := scoped.Model(&domain.PinSlot{}).
		Select("identity", "purpose").
		Where("expires_at <= ?", now.UTC()).
		Order("expires_at ASC").
		Limit(batchSize).
		Find(&keys).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "pin_slot", "purge", "error")
		return 0, err
	}
	var deleted int64
	for _, k := range keys {
		res := scoped.
			Where("identity = ? AND purpose = ? AND expires_at <= ?", k.Identity, k.Purpose, now.UTC()).
			Delete(&domain.PinSlot{})
		if res.Error != nil {
			observability.RecordRepositoryOperation(ctx, "pin_slot", "purge", "error")
			return deleted, res.Error
		}
		deleted += res.RowsAffected
	}
	observability.RecordRepositoryOperation(ctx, "pin_slot", "purge", "success")
	return deleted, nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
