package storage

import (
	_ "github.com/lib/pq"

	"jk-calendar/internal/config"
)

type PostgresProvider struct {
	SQLProvider
}

func NewPostgresProvider(config *config.Storage) (provider *PostgresProvider) {
	sql := NewSQLProvider(config, "postgres", config.PostgreSQL.URL)
	if sql == nil {
		return nil
	}
	return &PostgresProvider{
		SQLProvider: *sql,
	}
}
