package commands

import (
	"log/slog"
	"uaforge/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Renders, validates and stores user agents for the crawled releases.",
	Run: func(cmd *cobra.Command, args []string) {
		service, _, cleanup := openService()
		defer cleanup()

		result, err := service.Generate(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to generate user agents", err)
		}

		slog.Info("generation finished",
			"generated", result.Generated,
			"rejected", result.Rejected,
		)
	},
}
