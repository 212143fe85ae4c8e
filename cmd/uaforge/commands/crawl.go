package commands

import (
	"log/slog"
	"time"
	"uaforge/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Fetches the current release listing and replaces the stored release records.",
	Run: func(cmd *cobra.Command, args []string) {
		service, _, cleanup := openService()
		defer cleanup()

		t1 := time.Now()
		count, err := service.Crawl(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to crawl the release listing", err)
		}

		slog.Info("crawl finished",
			"releases", count,
			"seconds", time.Since(t1).Seconds(),
		)
	},
}
