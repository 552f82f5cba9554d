package database

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/reviewhub/credential-service/internal/config"
	"github.com/reviewhub/credential-service/internal/domain"
	"github.com/reviewhub/credential-service/internal/repository"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open(&config.Config{DatabaseURL: fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared", name)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestIsSQLite(t *testing.T) {
	if !IsSQLite("sqlite://dev.db") || IsSQLite("postgres://u:p@localhost/db") {
		t.Fatal("unexpected driver detection")
	}
	if got := sqliteDSN("sqlite://"); !strings.Contains(got, ":memory:") {
		t.Fatalf("expected in-memory dsn, got %q", got)
	}
	if got := sqliteDSN("sqlite://dev.db"); got != "dev.db?_foreign_keys=on&_busy_timeout=5000" {
		t.Fatalf("unexpected dsn %q", got)
	}
}

func TestMigrateVersionedAppliesEmbeddedSchemaOnce(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()

	pending, err := PendingMigrations(ctx, db)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending migrations, got %d", len(pending))
	}

	applied, err := MigrateVersioned(ctx, db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if len(applied) != 3 || applied[0] != 1 || applied[2] != 3 {
		t.Fatalf("unexpected applied versions %v", applied)
	}
	again, err := MigrateVersioned(ctx, db)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no-op second run, got %v", again)
	}

	status, err := MigrationStatus(ctx, db)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, s := range status {
		if !s.Applied {
			t.Fatalf("expected %s applied", s.Name)
		}
	}

	repos := repository.NewRepositories(db)
	if err := repos.Users.Create(ctx, &domain.User{ID: "id-1", Email: "ana@example.com", UserName: "ana_lima", FirstName: "Ana", LastName: "Lima", IsActive: true}); err != nil {
		t.Fatalf("schema rejected user insert: %v", err)
	}
	if err := repos.Credentials.Create(ctx, &domain.Credential{Identity: "id-1", PasswordHash: "hash"}); err != nil {
		t.Fatalf("schema rejected credential insert: %v", err)
	}

	dob := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)
	idVerified := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	if err := repos.Users.Create(ctx, &domain.User{ID: "id-2", Email: "bia@example.com", UserName: "bia_lima", FirstName: "Bia", LastName: "Lima", DOB: &dob, IDVerifiedAt: &idVerified, IsActive: true}); err != nil {
		t.Fatalf("schema rejected identity dates: %v", err)
	}
	stored, err := repos.Users.FindByID(ctx, "id-2")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if stored.DOB == nil || stored.DOB.Year() != 1990 || stored.DOB.Month() != time.April || stored.DOB.Day() != 12 {
		t.Fatalf("unexpected dob %v", stored.DOB)
	}
	if stored.IDVerifiedAt == nil || !stored.IDVerifiedAt.Equal(idVerified) {
		t.Fatalf("unexpected id_verified_at %v", stored.IDVerifiedAt)
	}
	plain, err := repos.Users.FindByID(ctx, "id-1")
	if err != nil || plain.DOB != nil || plain.IDVerifiedAt != nil {
		t.Fatalf("expected nullable identity dates, got %+v err=%v", plain, err)
	}
}

func seedSlot(t *testing.T, db *gorm.DB, id, email string, expiresAt time.Time) {
	t.Helper()
	ctx := t.Context()
	repos := repository.NewRepositories(db)
	if err := repos.Users.Create(ctx, &domain.User{ID: id, Email: email, UserName: "reviewer", FirstName: "Ana", LastName: "Lima", IsActive: true}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := repos.Credentials.Create(ctx, &domain.Credential{Identity: id, PasswordHash: "hash"}); err != nil {
		t.Fatalf("create credential: %v", err)
	}
	if err := repos.Pins.Upsert(ctx, &domain.PinSlot{
		Identity:  id,
		Purpose:   domain.PinPurposeEmailVerification,
		PinHash:   "pin-hash",
		IssuedAt:  expiresAt.Add(-15 * time.Minute),
		ExpiresAt: expiresAt,
	}); err != nil {
		t.Fatalf("upsert slot: %v", err)
	}
}

func TestPurgeExpiredPinsDeletesOnlyClosedWindows(t *testing.T) {
	db := openTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedSlot(t, db, "id-1", "a@example.com", now.Add(-time.Minute))
	seedSlot(t, db, "id-2", "b@example.com", now)
	seedSlot(t, db, "id-3", "c@example.com", now.Add(time.Minute))

	report, err := PurgeExpiredPins(t.Context(), db, now, 1)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if report.Deleted != 2 || report.Noop {
		t.Fatalf("expected 2 deleted, got %+v", report)
	}
	var left []domain.PinSlot
	if err := db.Find(&left).Error; err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 1 || left[0].Identity != "id-3" {
		t.Fatalf("expected only the open slot left, got %+v", left)
	}

	report, err = PurgeExpiredPins(t.Context(), db, now, 0)
	if err != nil || !report.Noop {
		t.Fatalf("expected noop second purge, got %+v err=%v", report, err)
	}
}

func TestVerifyEmailOverride(t *testing.T) {
	db := openTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedSlot(t, db, "id-1", "ana@example.com", now.Add(time.Hour))

	if err := VerifyEmail(t.Context(), db, " ANA@example.com ", now); err != nil {
		t.Fatalf("verify: %v", err)
	}
	var cred domain.Credential
	if err := db.Where("identity = ?", "id-1").First(&cred).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if cred.EmailVerifiedAt == nil {
		t.Fatal("expected email verified")
	}
	var slots int64
	db.Model(&domain.PinSlot{}).Count(&slots)
	if slots != 0 {
		t.Fatal("expected verification slot dropped")
	}

	if err := VerifyEmail(t.Context(), db, "nobody@example.com", now); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := VerifyEmail(t.Context(), db, "  ", now); err == nil {
		t.Fatal("expected empty email rejected")
	}
}
