package config

type Storage struct {
	SQLite     *SQLiteStorage     `mapstructure:"local,omitempty"`
	PostgreSQL *PostgreSQLStorage `mapstructure:"postgresql,omitempty"`
}

type SQLiteStorage struct {
	Path string `mapstructure:"path,omitempty"`
}

type PostgreSQLStorage struct {
	URL string `mapstructure:"url,omitempty"`
}
