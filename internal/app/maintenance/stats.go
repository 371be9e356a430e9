package maintenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/entrybox/internal/database"
	"github.com/charlesng35/entrybox/pkg/logger"
	"github.com/charlesng35/entrybox/pkg/metrics"
)

const defaultStatsSpec = "@every 1m"

// StatsCollector periodically records the row count of every served table.
type StatsCollector struct {
	db       *gorm.DB
	tables   []database.Table
	cron     *cron.Cron
	schedule string
	log      *zap.Logger
	record   func(table database.Table, rows int64)
}

// Option customises the StatsCollector.
type Option func(*StatsCollector)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(collector *StatsCollector) {
		if c != nil {
			collector.cron = c
		}
	}
}

// WithSchedule overrides the cron specification.
func WithSchedule(spec string) Option {
	return func(collector *StatsCollector) {
		if spec != "" {
			collector.schedule = spec
		}
	}
}

// WithRecorder replaces the gauge update, used by tests to observe counts.
func WithRecorder(record func(table database.Table, rows int64)) Option {
	return func(collector *StatsCollector) {
		if record != nil {
			collector.record = record
		}
	}
}

// NewStatsCollector constructs a collector for the given tables.
func NewStatsCollector(db *gorm.DB, tables []database.Table, opts ...Option) *StatsCollector {
	collector := &StatsCollector{
		db:       db,
		tables:   append([]database.Table(nil), tables...),
		schedule: defaultStatsSpec,
		log:      logger.WithModule("maintenance"),
		record: func(table database.Table, rows int64) {
			metrics.TableRows.WithLabelValues(string(table)).Set(float64(rows))
		},
	}

	for _, opt := range opts {
		opt(collector)
	}

	if collector.cron == nil {
		collector.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return collector
}

// Start registers the collection job and launches the scheduler.
func (s *StatsCollector) Start() error {
	if s.db == nil || len(s.tables) == 0 {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("table stats collection failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("stats collector: schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the scheduler. The returned context is done once running jobs finish.
func (s *StatsCollector) Stop() context.Context {
	if s.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.cron.Stop()
}

// RunOnce counts every table once. A failing table does not stop the others.
func (s *StatsCollector) RunOnce(ctx context.Context) error {
	if s.db == nil {
		return errors.New("stats collector: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	for _, table := range s.tables {
		var rows int64
		if err := s.db.WithContext(ctx).Table(string(table)).Count(&rows).Error; err != nil {
			errs = multierr.Append(errs, fmt.Errorf("count %s: %w", table, err))
			continue
		}
		s.record(table, rows)
	}

	return errs
}
