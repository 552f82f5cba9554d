package common

import (
	"context"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/reviewhub/credential-service/internal/config"
	"github.com/reviewhub/credential-service/internal/database"
	"github.com/reviewhub/credential-service/internal/observability"
	"github.com/reviewhub/credential-service/internal/tools/ui"
)

// Exit code used by every credctl command when its action fails.
const ExitFailure = 3

type Options struct {
	EnvFile string
	Timeout time.Duration
	CI      bool
}

// Run executes fn either with a bubbletea progress view or, in CI mode, with
// a plain deadline and a JSON result on stdout.
func Run(opts *Options, tool, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	start := time.Now()
	var (
		details []string
		err     error
	)
	if opts.CI {
		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		details, err = fn(ctx)
		cancel()
		PrintCIResult(err == nil, title, details, err)
	} else {
		details, err = ui.Run(title, opts.Timeout, fn)
	}

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	ctx := context.Background()
	observability.RecordToolCommandRun(ctx, tool, title, outcome)
	observability.RecordToolCommandDuration(ctx, tool, title, outcome, time.Since(start))
	return details, err
}

// Exit terminates with ExitFailure when err is set; cobra's own error output
// is left for flag problems.
func Exit(err error) error {
	if err != nil {
		os.Exit(ExitFailure)
	}
	return nil
}

// OpenDatabase loads envFile, validates config and opens the configured
// database. The caller owns closing it via CloseDatabase.
func OpenDatabase(envFile string) (*config.Config, *gorm.DB, error) {
	if err := LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func CloseDatabase(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
