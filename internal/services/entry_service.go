package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/charlesng35/entrybox/internal/models"
	"github.com/charlesng35/entrybox/pkg/metrics"
)

var (
	// ErrEntryNotFound indicates the requested key does not exist.
	ErrEntryNotFound = errors.New("entry service: entry not found")
)

// EntryService stores key/value entries, one row per key.
type EntryService struct {
	db            *gorm.DB
	maxKeyBytes   int
	maxValueBytes int
}

// EntryOption customises an EntryService.
type EntryOption func(*EntryService)

// WithEntryLimits bounds key and value sizes in bytes. Zero disables the value
// limit. Keys are always capped at models.MaxKeyLength.
func WithEntryLimits(maxKeyBytes, maxValueBytes int) EntryOption {
	return func(s *EntryService) {
		s.maxKeyBytes = maxKeyBytes
		s.maxValueBytes = maxValueBytes
	}
}

// NewEntryService constructs an entry service once a database handle is supplied.
func NewEntryService(db *gorm.DB, opts ...EntryOption) (*EntryService, error) {
	if db == nil {
		return nil, errors.New("entry service: db is required")
	}
	svc := &EntryService{db: db}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.maxKeyBytes <= 0 || svc.maxKeyBytes > models.MaxKeyLength {
		svc.maxKeyBytes = models.MaxKeyLength
	}
	return svc, nil
}

// Put stores value under key, overwriting any existing value. It reports
// whether a new row was created.
func (s *EntryService) Put(ctx context.Context, key, value string) (*models.Entry, bool, error) {
	if s == nil {
		return nil, false, errors.New("entry service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	if err := checkBytes("key", key, s.maxKeyBytes, true); err != nil {
		return nil, false, err
	}
	if err := checkBytes("value", value, s.maxValueBytes, false); err != nil {
		return nil, false, err
	}

	var (
		entry   models.Entry
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where(columnEquals("key", key)).Take(&entry).Error
		switch {
		case err == nil:
			if err := tx.Model(&entry).Update("value", value).Error; err != nil {
				return err
			}
			entry.Value = value
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		entry = models.Entry{Key: key, Value: value}
		err = tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(&entry).Error
		})
		if err == nil {
			created = true
			return nil
		}
		if !isUniqueConstraintError(err) {
			return err
		}

		// Another writer inserted the key after our lookup.
		if err := tx.Model(&models.Entry{}).Where(columnEquals("key", key)).Update("value", value).Error; err != nil {
			return err
		}
		entry = models.Entry{}
		return tx.Where(columnEquals("key", key)).Take(&entry).Error
	})
	if err != nil {
		metrics.EntryUpserts.WithLabelValues("error").Inc()
		return nil, false, persistenceError("entry service: put", err)
	}

	if created {
		metrics.EntryUpserts.WithLabelValues("created").Inc()
	} else {
		metrics.EntryUpserts.WithLabelValues("updated").Inc()
	}
	return &entry, created, nil
}

// Get returns the entry stored under key.
func (s *EntryService) Get(ctx context.Context, key string) (*models.Entry, error) {
	if s == nil {
		return nil, errors.New("entry service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	var entry models.Entry
	err := s.db.WithContext(ctx).Where(columnEquals("key", key)).Take(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, persistenceError("entry service: get", err)
	}
	return &entry, nil
}
