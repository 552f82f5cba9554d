package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/reviewhub/credential-service/internal/domain"
	"github.com/reviewhub/credential-service/internal/observability"
	"github.com/reviewhub/credential-service/internal/repository"
)

type PurgeReport struct {
	Deleted int64 `json:"deleted"`
	Batches int   `json:"batches"`
	Noop    bool  `json:"noop"`
}

// PurgeExpiredPins deletes slots whose window closed at or before now. It is
// housekeeping only: expired slots are already rejected when read.
func PurgeExpiredPins(ctx context.Context, db *gorm.DB, now time.Time, batchSize int) (*PurgeReport, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(ctx, "purge", time.Since(start))
	}()
	if batchSize <= 0 {
		batchSize = 500
	}

	pins := repository.NewPinSlotRepository(db)
	report := &PurgeReport{}
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		n, err := pins.DeleteExpired(ctx, now, batchSize)
		if err != nil {
			observability.RecordDatabaseStartupEvent(ctx, "purge", "error")
			return report, err
		}
		report.Deleted += n
		report.Batches++
		if n < int64(batchSize) {
			break
		}
	}
	report.Noop = report.Deleted == 0
	observability.RecordPinPurgeDeletedRows(ctx, "all", report.Deleted)
	observability.RecordDatabaseStartupEvent(ctx, "purge", "success")
	return report, nil
}

// VerifyEmail marks the account behind email as verified and drops any
// outstanding verification pin. Operators use it when mail delivery is broken.
func VerifyEmail(ctx context.Context, db *gorm.DB, email string, now time.Time) error {
	normalized := repository.NormalizeEmail(email)
	if normalized == "" {
		return fmt.Errorf("email is required")
	}
	return repository.NewTransactor(db).WithinTx(ctx, func(repos repository.Repositories) error {
		u, err := repos.Users.FindByEmail(ctx, normalized)
		if err != nil {
			return err
		}
		if _, err := repos.Credentials.FindForUpdate(ctx, u.ID); err != nil {
			return err
		}
		if err := repos.Credentials.MarkEmailVerified(ctx, u.ID, now); err != nil {
			return err
		}
		return repos.Pins.Delete(ctx, u.ID, domain.PinPurposeEmailVerification)
	})
}
