package commands

import (
	"os"
	"time"
	"uaforge/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints the stored user agent set.",
	Run: func(cmd *cobra.Command, args []string) {
		service, _, cleanup := openService()
		defer cleanup()

		rows, err := service.List(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list user agents", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"User Agent", "Version", "Generated At"})
		for _, r := range rows {
			t.AppendRow(table.Row{
				r.Value,
				r.Version,
				time.Unix(r.GeneratedAt, 0).Format(time.DateTime),
			})
		}
		t.Render()
	},
}
