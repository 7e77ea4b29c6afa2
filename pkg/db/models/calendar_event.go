package models

import (
	"time"

	"github.com/google/uuid"
)

// CalendarEvent tracks the external event mirroring a reservation. Written
// after the reservation commit, so orphans can exist transiently and are
// garbage-collected during removal.
type CalendarEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReservationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"reservation_id"`
	EventID       string    `gorm:"type:text;not null" json:"event_id"`
	CreatedAt     time.Time `gorm:"type:timestamptz;default:now()" json:"created_at"`
}
