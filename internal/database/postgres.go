package database

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var postgresDefaultOptions = map[string]string{
	"sslmode":          "disable",
	"application_name": "entrybox",
}

func openPostgres(cfg Config, gormCfg *gorm.Config) (*gorm.DB, error) {
	dsn, err := buildPostgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(postgres.Open(dsn), gormCfg)
}

// buildPostgresDSN renders a libpq keyword/value connection string. An
// explicit DSN (including postgres:// URLs) is passed through untouched.
func buildPostgresDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("postgres: user and database name are required")
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	params := []dsnOption{
		{Key: "host", Value: host},
		{Key: "port", Value: strconv.Itoa(port)},
		{Key: "user", Value: cfg.User},
		{Key: "dbname", Value: cfg.Name},
	}
	if cfg.Password != "" {
		params = append(params, dsnOption{Key: "password", Value: cfg.Password})
	}
	params = append(params, mergeOptions(postgresDefaultOptions, cfg.Options)...)

	var b strings.Builder
	for i, param := range params {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(param.Key)
		b.WriteByte('=')
		b.WriteString(quoteKeywordValue(param.Value))
	}
	return b.String(), nil
}
