package database

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/reviewhub/credential-service/internal/database/migrations"
	"github.com/reviewhub/credential-service/internal/domain"
	"github.com/reviewhub/credential-service/internal/observability"
)

// AutoMigrate syncs the gorm models without versioning. Tests and throwaway
// SQLite files use it; real deployments go through MigrateVersioned.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Credential{}, &domain.PinSlot{})
}

type MigrationState struct {
	Version   int64     `json:"version"`
	Name      string    `json:"name"`
	Applied   bool      `json:"applied"`
	AppliedAt time.Time `json:"applied_at,omitzero"`
}

func newProvider(db *gorm.DB) (*goose.Provider, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	dialect, dir := goose.DialectPostgres, "postgres"
	if db.Dialector.Name() == "sqlite" {
		dialect, dir = goose.DialectSQLite3, "sqlite"
	}
	fsys, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(dialect, sqlDB, fsys)
}

// MigrateVersioned applies every pending embedded migration and returns the
// versions it ran.
func MigrateVersioned(ctx context.Context, db *gorm.DB) ([]int64, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(ctx, "migrate", time.Since(start))
	}()

	provider, err := newProvider(db)
	if err != nil {
		observability.RecordDatabaseStartupEvent(ctx, "migrate", "error")
		return nil, err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		observability.RecordDatabaseStartupEvent(ctx, "migrate", "error")
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	applied := make([]int64, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Version)
	}
	observability.RecordDatabaseStartupEvent(ctx, "migrate", "success")
	return applied, nil
}

func MigrationStatus(ctx context.Context, db *gorm.DB) ([]MigrationState, error) {
	provider, err := newProvider(db)
	if err != nil {
		return nil, err
	}
	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}
	out := make([]MigrationState, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationState{
			Version:   s.Source.Version,
			Name:      s.Source.Path,
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		})
	}
	return out, nil
}

// PendingMigrations lists what MigrateVersioned would apply without touching
// the schema.
func PendingMigrations(ctx context.Context, db *gorm.DB) ([]MigrationState, error) {
	all, err := MigrationStatus(ctx, db)
	if err != nil {
		return nil, err
	}
	var pending []MigrationState
	for _, s := range all {
		if !s.Applied {
			pending = append(pending, s)
		}
	}
	return pending, nil
}
