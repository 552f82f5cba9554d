package pin

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reviewhub/credential-service/internal/database"
	"github.com/reviewhub/credential-service/internal/tools/common"
)

const toolName = "pin"

func NewRootCommand() *cobra.Command {
	opts := &common.Options{}
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "Pin slot housekeeping",
	}
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.CI, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(newPurgeExpiredCommand(opts))
	return cmd
}

func newPurgeExpiredCommand(opts *common.Options) *cobra.Command {
	var (
		batchSize int
		grace     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "purge-expired",
		Short: "Delete pin slots whose validity window has closed",
		Long: "Delete pin slots whose validity window has closed. Expired slots are already " +
			"rejected on read; purging only reclaims storage.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize <= 0 {
				return fmt.Errorf("--batch-size must be > 0")
			}
			if grace < 0 {
				return fmt.Errorf("--grace must not be negative")
			}
			_, err := common.Run(opts, toolName, "pin purge-expired", func(ctx context.Context) ([]string, error) {
				_, db, err := common.OpenDatabase(opts.EnvFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDatabase(db)

				cutoff := time.Now().UTC().Add(-grace)
				report, err := database.PurgeExpiredPins(ctx, db, cutoff, batchSize)
				if err != nil {
					return nil, err
				}
				if report.Noop {
					return []string{"no expired pin slots", "cutoff: " + cutoff.Format(time.RFC3339)}, nil
				}
				return []string{
					fmt.Sprintf("deleted %d slot(s) in %d batch(es)", report.Deleted, report.Batches),
					"cutoff: " + cutoff.Format(time.RFC3339),
				}, nil
			})
			return common.Exit(err)
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 500, "rows deleted per statement")
	cmd.Flags().DurationVar(&grace, "grace", 0, "keep slots that expired less than this long ago")
	return cmd
}
