package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reviewhub/credential-service/internal/database"
	"github.com/reviewhub/credential-service/internal/tools/common"
)

const toolName = "migrate"

func NewRootCommand() *cobra.Command {
	opts := &common.Options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Versioned schema migrations",
	}
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.CI, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newUpCommand(opts),
		newStatusCommand(opts),
		newPlanCommand(opts),
	)
	return cmd
}

func newUpCommand(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := common.Run(opts, toolName, "migrate up", func(ctx context.Context) ([]string, error) {
				cfg, db, err := common.OpenDatabase(opts.EnvFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDatabase(db)

				applied, err := database.MigrateVersioned(ctx, db)
				if err != nil {
					return nil, err
				}
				details := []string{"service: " + cfg.OTELServiceName}
				if len(applied) == 0 {
					return append(details, "schema already current"), nil
				}
				for _, v := range applied {
					details = append(details, fmt.Sprintf("applied version %05d", v))
				}
				return details, nil
			})
			return common.Exit(err)
		},
	}
}

func newStatusCommand(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := common.Run(opts, toolName, "migrate status", func(ctx context.Context) ([]string, error) {
				_, db, err := common.OpenDatabase(opts.EnvFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDatabase(db)

				states, err := database.MigrationStatus(ctx, db)
				if err != nil {
					return nil, err
				}
				return formatStates(states), nil
			})
			return common.Exit(err)
		},
	}
}

func newPlanCommand(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show pending migrations without applying them",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := common.Run(opts, toolName, "migrate plan", func(ctx context.Context) ([]string, error) {
				_, db, err := common.OpenDatabase(opts.EnvFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDatabase(db)

				pending, err := database.PendingMigrations(ctx, db)
				if err != nil {
					return nil, err
				}
				if len(pending) == 0 {
					return []string{"nothing to apply"}, nil
				}
				return append(formatStates(pending), "no mutation executed in plan mode"), nil
			})
			return common.Exit(err)
		},
	}
}

func formatStates(states []database.MigrationState) []string {
	out := make([]string, 0, len(states))
	for _, s := range states {
		line := fmt.Sprintf("%05d %s: pending", s.Version, s.Name)
		if s.Applied {
			line = fmt.Sprintf("%05d %s: applied", s.Version, s.Name)
			if !s.AppliedAt.IsZero() {
				line += " at " + s.AppliedAt.UTC().Format(time.RFC3339)
			}
		}
		out = append(out, line)
	}
	return out
}
