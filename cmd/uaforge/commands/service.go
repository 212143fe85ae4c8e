package commands

import (
	"errors"
	"os"
	"uaforge/lib/configutil"
	"uaforge/lib/configutil/sqldb"
	"uaforge/lib/restyutil"
	"uaforge/lib/scrapers/firefox"
	"uaforge/lib/serviceutil"
	"uaforge/services/agents"
	"uaforge/services/agents/db"
)

type SourceConfig struct {
	FeedUrl     string `json:"feed_url"`
	ReleasesUrl string `json:"releases_url"`
	// Rendered enables the headless-browser fallback for pages that
	// only build their release list with scripts.
	Rendered bool `json:"rendered"`
	// DebugDir dumps every HTTP exchange into this directory when set.
	DebugDir string `json:"debug_dir"`
}

type GeneratorConfig struct {
	// the oldest major version that still generates identifiers
	MinMajor int `json:"min_major"`
}

type ExportConfig struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

type Config struct {
	Database  sqldb.Struct    `json:"database"`
	Source    SourceConfig    `json:"source"`
	Generator GeneratorConfig `json:"generator"`
	Export    ExportConfig    `json:"export"`
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		serviceutil.Fatal("failed to read config", err)
	}

	if cfg.Database.File == "" && cfg.Database.Url == "" {
		cfg.Database.File = "uaforge.db"
	}
	if cfg.Export.Path == "" {
		cfg.Export.Path = "useragents.txt"
	}
	if cfg.Export.Format == "" {
		cfg.Export.Format = string(agents.FormatLines)
	}
	return cfg
}

func openService() (agents.Service, Config, func()) {
	cfg := readConfig()

	var debugOutput restyutil.Output
	if cfg.Source.DebugDir != "" {
		debugOutput = restyutil.NewFilesystemOutput(cfg.Source.DebugDir)
	}

	client, err := firefox.NewClient(firefox.ClientOptions{
		FeedUrl:     cfg.Source.FeedUrl,
		ReleasesUrl: cfg.Source.ReleasesUrl,
		Rendered:    cfg.Source.Rendered,
		DebugOutput: debugOutput,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize release client", err)
	}

	database, err := cfg.Database.OpenDB(db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}

	service := agents.NewService(database, agents.Options{
		Source:     client,
		SourceName: client.FeedUrl,
		MinMajor:   cfg.Generator.MinMajor,
	})

	return service, cfg, func() { database.Close() }
}
