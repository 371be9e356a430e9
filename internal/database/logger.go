package database

import (
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"
	"moul.io/zapgorm2"

	"github.com/charlesng35/entrybox/pkg/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

func newGormLogger(level string) gormlogger.Interface {
	l := zapgorm2.New(logger.Logger().Named("gorm"))
	l.SlowThreshold = slowQueryThreshold
	l.IgnoreRecordNotFoundError = true
	return l.LogMode(parseLogLevel(level))
}

func parseLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent", "off":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
