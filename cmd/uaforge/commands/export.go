package commands

import (
	"log/slog"
	"uaforge/lib/serviceutil"
	"uaforge/services/agents"

	"github.com/spf13/cobra"
)

var exportOut *string
var exportFormat *string

func init() {
	exportOut = exportCmd.Flags().String("out", "", "The file to write the set to. Defaults to the configured export path.")
	exportFormat = exportCmd.Flags().String("format", "", "Either 'lines' or 'json'. Defaults to the configured export format.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--out <path>] [--format lines|json]",
	Short: "Writes the stored user agent set to a flat file.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cfg, cleanup := openService()
		defer cleanup()

		path := cfg.Export.Path
		if *exportOut != "" {
			path = *exportOut
		}
		formatName := cfg.Export.Format
		if *exportFormat != "" {
			formatName = *exportFormat
		}
		format, err := agents.ParseFormat(formatName)
		if err != nil {
			serviceutil.Fatal("invalid export format", err)
		}

		count, err := service.Export(cmd.Context(), path, format)
		if err != nil {
			serviceutil.Fatal("failed to export user agents", err)
		}

		slog.Info("export finished", "path", path, "entries", count)
	},
}
