package models

import "time"

// MaxKeyLength is the width of the entries.key column in bytes.
const MaxKeyLength = 512

// Entry is a key/value record. At most one row exists per key.
type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Key       string    `gorm:"size:512;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default table name.
func (Entry) TableName() string {
	return "entries"
}
