package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/osoriodev/tablebook-backend/internal/calendar"
	"github.com/osoriodev/tablebook-backend/pkg/db/models"
	"github.com/osoriodev/tablebook-backend/pkg/enums"
)

// Repository exposes persistence helpers for customers, reservations and
// calendar event tracking rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateCustomer(ctx context.Context, customer *models.Customer) error
	CreateReservation(ctx context.Context, reservation *models.Reservation) error
	SetCalendarEventID(ctx context.Context, reservationID uuid.UUID, eventID string) error
	CreateCalendarEvent(ctx context.Context, event *models.CalendarEvent) error

	FindBySlot(ctx context.Context, tableNumber int, startTime time.Time) (*models.Reservation, error)
	CountBySlot(ctx context.Context, tableNumber int, startTime time.Time) (int64, error)
	CountByPhoneAndSlot(ctx context.Context, phoneNumber string, startTime time.Time) (int64, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)

	DeleteReservation(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	DeleteCalendarEventByReservation(ctx context.Context, reservationID uuid.UUID) error
	DeleteOrphanCalendarEvents(ctx context.Context) (int64, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus, now time.Time) (int64, error)
	List(ctx context.Context, from, to *time.Time) ([]models.Reservation, error)
	FindExpired(ctx context.Context, activeCutoff, pendingCutoff time.Time) ([]models.Reservation, error)
}

// AvailabilityChecker answers the read-only booking questions consulted
// before any mutation.
type AvailabilityChecker interface {
	IsTableBooked(ctx context.Context, tableNumber int, startTime time.Time) (bool, error)
	HasExistingReservation(ctx context.Context, phoneNumber string, startTime time.Time) (bool, error)
	WithTx(tx *gorm.DB) AvailabilityChecker
}

// Syncer mirrors reservations into the external calendar. Implementations
// must bound their own timeouts; failures are non-fatal to reservation state.
type Syncer interface {
	CreateEvent(ctx context.Context, token string, event calendar.Event) (string, error)
	DeleteEvent(ctx context.Context, token, eventID string) error
}

// TokenCipher guards calendar tokens at rest.
type TokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
