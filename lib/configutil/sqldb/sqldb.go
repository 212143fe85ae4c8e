package sqldb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Struct is the database section of a config file. when `url` is set the
// store lives on a remote libsql/turso instance, otherwise `file` names a
// local sqlite database.
type Struct struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Struct) OpenDB(schema string) (*sql.DB, error) {
	db, err := config.open()
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return db, nil
}

func (config Struct) open() (*sql.DB, error) {
	if config.Url != "" {
		link := config.Url
		if config.AuthToken != "" {
			link = fmt.Sprintf("%s?authToken=%s", link, config.AuthToken)
		}
		return sql.Open("libsql", link)
	}

	if config.File == "" {
		return nil, fmt.Errorf("a database path was not specified")
	}
	if config.File != ":memory:" {
		os.MkdirAll(filepath.Dir(config.File), 0777)
	}

	db, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	return db, nil
}
