package reservations

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Availability answers whether a slot or a customer is already booked. Matching
// is exact on start time; adjacent or overlapping slots do not collide.
type Availability struct {
	repo Repository
}

func NewAvailability(repo Repository) *Availability {
	return &Availability{repo: repo}
}

func (a *Availability) WithTx(tx *gorm.DB) AvailabilityChecker {
	if tx == nil {
		return a
	}
	return &Availability{repo: a.repo.WithTx(tx)}
}

// IsTableBooked reports whether the table already has a reservation at exactly
// startTime.
func (a *Availability) IsTableBooked(ctx context.Context, tableNumber int, startTime time.Time) (bool, error) {
	count, err := a.repo.CountBySlot(ctx, tableNumber, startTime)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasExistingReservation reports whether the phone number already holds a
// reservation at exactly startTime, regardless of table.
func (a *Availability) HasExistingReservation(ctx context.Context, phoneNumber string, startTime time.Time) (bool, error) {
	count, err := a.repo.CountByPhoneAndSlot(ctx, phoneNumber, startTime)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
