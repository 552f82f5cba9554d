package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/reviewhub/credential-service/internal/tools/account"
	"github.com/reviewhub/credential-service/internal/tools/migrate"
	"github.com/reviewhub/credential-service/internal/tools/pin"
)

func main() {
	root := &cobra.Command{
		Use:          "credctl",
		Short:        "Operator tooling for the credential service",
		SilenceUsage: true,
	}
	root.AddCommand(
		migrate.NewRootCommand(),
		pin.NewRootCommand(),
		account.NewRootCommand(),
	)
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
