package account

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/reviewhub/credential-service/internal/database"
	"github.com/reviewhub/credential-service/internal/tools/common"
)

const toolName = "account"

func NewRootCommand() *cobra.Command {
	opts := &common.Options{}
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Operator overrides for individual accounts",
	}
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.CI, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(newVerifyEmailCommand(opts))
	return cmd
}

func newVerifyEmailCommand(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-email <email>",
		Short: "Mark an account's email as verified without a pin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			_, err := common.Run(opts, toolName, "account verify-email", func(ctx context.Context) ([]string, error) {
				_, db, err := common.OpenDatabase(opts.EnvFile)
				if err != nil {
					return nil, err
				}
				defer common.CloseDatabase(db)

				if err := database.VerifyEmail(ctx, db, email, time.Now().UTC()); err != nil {
					return nil, err
				}
				return []string{"email marked verified", "outstanding verification pin removed"}, nil
			})
			return common.Exit(err)
		},
	}
}
