package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/charlesng35/entrybox/internal/models"
	"github.com/charlesng35/entrybox/pkg/metrics"
)

// MessageService creates, lists and purges messages.
type MessageService struct {
	db              *gorm.DB
	now             func() time.Time
	maxContentBytes int
}

// MessageOption customises a MessageService.
type MessageOption func(*MessageService)

// WithMaxContentBytes bounds message content in bytes. Zero disables the limit.
func WithMaxContentBytes(limit int) MessageOption {
	return func(s *MessageService) {
		s.maxContentBytes = limit
	}
}

// WithClock overrides the clock used for message timestamps.
func WithClock(now func() time.Time) MessageOption {
	return func(s *MessageService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMessageService constructs a message service once a database handle is supplied.
func NewMessageService(db *gorm.DB, opts ...MessageOption) (*MessageService, error) {
	if db == nil {
		return nil, errors.New("message service: db is required")
	}
	svc := &MessageService{db: db, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create stores a new message. Content is kept byte for byte.
func (s *MessageService) Create(ctx context.Context, content string) (*models.Message, error) {
	if s == nil {
		return nil, errors.New("message service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	if err := checkBytes("content", content, s.maxContentBytes, false); err != nil {
		return nil, err
	}

	message := models.Message{
		Content:   content,
		Timestamp: s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, persistenceError("message service: create", err)
	}

	metrics.MessagesCreated.Inc()
	return &message, nil
}

// List returns every message in insertion order.
func (s *MessageService) List(ctx context.Context) ([]models.Message, error) {
	if s == nil {
		return nil, errors.New("message service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	messages := make([]models.Message, 0)
	err := s.db.WithContext(ctx).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "timestamp"}},
			{Column: clause.Column{Name: "id"}},
		}}).
		Find(&messages).Error
	if err != nil {
		return nil, persistenceError("message service: list", err)
	}
	return messages, nil
}

// DeleteAll removes every message in one transaction and returns the count.
func (s *MessageService) DeleteAll(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, errors.New("message service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Message{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, persistenceError("message service: delete all", err)
	}

	metrics.MessagesDeleted.Add(float64(deleted))
	return deleted, nil
}
