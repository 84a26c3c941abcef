package storage

import (
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"jk-calendar/internal/config"
)

type SQLiteProvider struct {
	SQLProvider
}

func NewSQLiteProvider(config *config.Storage) (provider *SQLiteProvider) {
	// Foreign keys are off by default in SQLite; the cascade rules in the
	// schema depend on them.
	dsn := config.SQLite.Path
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}
	sql := NewSQLProvider(config, "sqlite3", dsn)
	if sql == nil {
		return nil
	}
	return &SQLiteProvider{
		SQLProvider: *sql,
	}
}
