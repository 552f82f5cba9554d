package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/reviewhub/credential-service/internal/config"
	"github.com/reviewhub/credential-service/internal/observability"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqliteScheme = "sqlite://"

// IsSQLite reports whether dsn selects the embedded SQLite driver used for
// local development.
func IsSQLite(dsn string) bool {
	return strings.HasPrefix(strings.TrimSpace(dsn), sqliteScheme)
}

func Open(cfg *config.Config) (*gorm.DB, error) {
	start := time.Now()
	ctx := context.Background()
	defer func() {
		observability.RecordDatabaseStartupDuration(ctx, "open", time.Since(start))
	}()

	var dialector gorm.Dialector
	if IsSQLite(cfg.DatabaseURL) {
		dialector = sqlite.Open(sqliteDSN(cfg.DatabaseURL))
	} else {
		dialector = postgres.Open(cfg.DatabaseURL)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		observability.RecordDatabaseStartupEvent(ctx, "open", "error")
		return nil, fmt.Errorf("open database: %w", err)
	}
	if IsSQLite(cfg.DatabaseURL) {
		sqlDB, err := db.DB()
		if err != nil {
			observability.RecordDatabaseStartupEvent(ctx, "open", "error")
			return nil, err
		}
		// SQLite serializes writers; one connection keeps transactions from
		// tripping over each other with SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	}
	observability.RecordDatabaseStartupEvent(ctx, "open", "success")
	return db, nil
}

func sqliteDSN(url string) string {
	path := strings.TrimPrefix(strings.TrimSpace(url), sqliteScheme)
	if path == "" || path == ":memory:" {
		return "file::memory:?cache=shared&_foreign_keys=on"
	}
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on&_busy_timeout=5000"
	}
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}
