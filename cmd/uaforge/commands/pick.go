package commands

import (
	"fmt"
	"uaforge/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pickCmd)
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Prints one random user agent from the stored set.",
	Run: func(cmd *cobra.Command, args []string) {
		service, _, cleanup := openService()
		defer cleanup()

		ua, err := service.Pick(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to pick a user agent", err)
		}

		fmt.Println(ua)
	},
}
