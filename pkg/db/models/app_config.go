package models

import "time"

// AppConfig is a typed key-value row for opaque configuration blobs such as
// the serialized table layout.
type AppConfig struct {
	Key       string    `gorm:"type:text;primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"type:timestamptz;default:now()" json:"updated_at"`
}
