package reservations

import (
	"time"

	"github.com/google/uuid"

	"github.com/osoriodev/tablebook-backend/pkg/enums"
)

// CreateInput carries a new reservation request into the lifecycle manager.
// CalendarToken is the caller's plaintext token; it is encrypted before any
// row is written and never stored or returned as-is.
type CreateInput struct {
	CustomerName  string
	PhoneNumber   string
	PartySize     int
	TableNumber   int
	StartTime     time.Time
	Note          string
	CalendarToken string
}

// RemoveInput identifies the reservation to tear down by its slot.
type RemoveInput struct {
	TableNumber   int
	StartTime     time.Time
	CalendarToken string
}

// ListParams filters the joined reservation listing.
type ListParams struct {
	TodayOnly bool
}

// ReservationView is the customer-joined row returned to the UI.
type ReservationView struct {
	ID              uuid.UUID               `json:"id"`
	CustomerID      uuid.UUID               `json:"customer_id"`
	CustomerName    string                  `json:"name"`
	PhoneNumber     string                  `json:"phone_number"`
	PartySize       int                     `json:"party_size"`
	TableNumber     int                     `json:"table_number"`
	StartTime       time.Time               `json:"start_time"`
	Note            string                  `json:"note"`
	Status          enums.ReservationStatus `json:"status"`
	CalendarEventID string                  `json:"calendar_event_id,omitempty"`
}
