package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/osoriodev/tablebook-backend/pkg/enums"
)

// Reservation occupies one (table_number, start_time) slot. The composite
// unique index is the storage-level backstop against double booking; the
// service-level availability check remains the first line of defense.
type Reservation struct {
	ID          uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID  uuid.UUID               `gorm:"type:uuid;not null" json:"customer_id"`
	Customer    *Customer               `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	TableNumber int                     `gorm:"not null;uniqueIndex:uq_reservations_table_slot" json:"table_number"`
	StartTime   time.Time               `gorm:"type:timestamptz;not null;uniqueIndex:uq_reservations_table_slot" json:"start_time"`
	Note        string                  `gorm:"type:text" json:"note"`
	Status      enums.ReservationStatus `gorm:"type:text;not null;default:'pending'" json:"status"`

	// CalendarEventID is filled in after the mirror event is created; a
	// reservation may legitimately exist without one.
	CalendarEventID *string `gorm:"type:text" json:"calendar_event_id,omitempty"`

	// CalendarTokenCiphertext holds the caller's calendar token encrypted at
	// rest. Never serialized.
	CalendarTokenCiphertext string `gorm:"type:text;not null" json:"-"`

	CreatedAt time.Time `gorm:"type:timestamptz;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;default:now()" json:"updated_at"`
}
