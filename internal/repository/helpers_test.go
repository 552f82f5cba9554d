package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/reviewhub/credential-service/internal/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&domain.User{}, &domain.Credential{}, &domain.PinSlot{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedIdentity(t *testing.T, db *gorm.DB, id, email string) {
	t.Helper()
	repos := NewRepositories(db)
	ctx := t.Context()
	if err := repos.Users.Create(ctx, &domain.User{ID: id, Email: email, UserName: "reviewer", FirstName: "Ana", LastName: "Lima", IsActive: true}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := repos.Credentials.Create(ctx, &domain.Credential{Identity: id, PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderpl"}); err != nil {
		t.Fatalf("create credential: %v", err)
	}
}
