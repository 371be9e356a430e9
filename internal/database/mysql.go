package database

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// parseTime and loc=UTC keep DATETIME columns round-tripping as UTC time.Time.
var mysqlDefaultOptions = map[string]string{
	"charset":   "utf8mb4",
	"parseTime": "True",
	"loc":       "UTC",
}

func openMySQL(cfg Config, gormCfg *gorm.Config) (*gorm.DB, error) {
	dsn, err := buildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(mysql.Open(dsn), gormCfg)
}

// buildMySQLDSN renders a go-sql-driver DSN. Option values are query-escaped
// because the driver unescapes them while parsing.
func buildMySQLDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("mysql: user and database name are required")
	}

	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	var b strings.Builder
	b.WriteString(cfg.User)
	if cfg.Password != "" {
		b.WriteByte(':')
		b.WriteString(cfg.Password)
	}
	b.WriteString("@tcp(")
	b.WriteString(host)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(port))
	b.WriteString(")/")
	b.WriteString(cfg.Name)

	for i, opt := range mergeOptions(mysqlDefaultOptions, cfg.Options) {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(opt.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(opt.Value))
	}
	return b.String(), nil
}
