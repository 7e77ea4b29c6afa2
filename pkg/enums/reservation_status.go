package enums

import (
	"fmt"
	"strings"
)

// ReservationStatus distinguishes which expiry window applies to a
// reservation: pending rows are purged after a short no-show grace period,
// active rows hold the table for the full slot.
type ReservationStatus string

const (
	ReservationStatusPending ReservationStatus = "pending"
	ReservationStatusActive  ReservationStatus = "active"
)

func (s ReservationStatus) Valid() bool {
	return s == ReservationStatusPending || s == ReservationStatusActive
}

// ParseReservationStatus normalizes and validates a raw status value.
func ParseReservationStatus(raw string) (ReservationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(ReservationStatusPending):
		return ReservationStatusPending, nil
	case string(ReservationStatusActive):
		return ReservationStatusActive, nil
	default:
		return "", fmt.Errorf("unknown reservation status %q", raw)
	}
}
