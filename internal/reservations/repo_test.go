package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/osoriodev/tablebook-backend/pkg/db/models"
	"github.com/osoriodev/tablebook-backend/pkg/enums"
	pkgerrors "github.com/osoriodev/tablebook-backend/pkg/errors"
)

func setupReservationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	customers := `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone_number TEXT NOT NULL,
  party_size INTEGER NOT NULL,
  created_at DATETIME
);`
	reservations := `
CREATE TABLE IF NOT EXISTS reservations (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  table_number INTEGER NOT NULL,
  start_time DATETIME NOT NULL,
  note TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  calendar_event_id TEXT,
  calendar_token_ciphertext TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT uq_reservations_table_slot UNIQUE (table_number, start_time)
);`
	calendarEvents := `
CREATE TABLE IF NOT EXISTS calendar_events (
  id TEXT PRIMARY KEY,
  reservation_id TEXT NOT NULL UNIQUE,
  event_id TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, gdb.Exec(customers).Error)
	require.NoError(t, gdb.Exec(reservations).Error)
	require.NoError(t, gdb.Exec(calendarEvents).Error)
	require.NoError(t, gdb.Exec("DELETE FROM calendar_events").Error)
	require.NoError(t, gdb.Exec("DELETE FROM reservations").Error)
	require.NoError(t, gdb.Exec("DELETE FROM customers").Error)
	return gdb
}

func newCustomer(t *testing.T, gdb *gorm.DB, name, phone string, partySize int) *models.Customer {
	t.Helper()

	customer := &models.Customer{
		ID:          uuid.New(),
		Name:        name,
		PhoneNumber: phone,
		PartySize:   partySize,
	}
	require.NoError(t, gdb.Create(customer).Error)
	return customer
}

func newReservation(t *testing.T, gdb *gorm.DB, customer *models.Customer, table int, start time.Time, status enums.ReservationStatus) *models.Reservation {
	t.Helper()

	reservation := &models.Reservation{
		ID:                      uuid.New(),
		CustomerID:              customer.ID,
		TableNumber:             table,
		StartTime:               start,
		Status:                  status,
		CalendarTokenCiphertext: "ct",
	}
	require.NoError(t, gdb.Create(reservation).Error)
	return reservation
}

func TestCreateReservationRejectsDuplicateSlot(t *testing.T) {
	gdb := setupReservationsTestDB(t)
	repo := &repository{db: gdb}
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	customer := newCustomer(t, gdb, "Ana Flores", "+1-555-0001", 4)
	newReservation(t, gdb, customer, 5, start, enums.ReservationStatusPending)

	other := newCustomer(t, gdb, "Luis Rey", "+1-555-0002", 2)
	err := repo.CreateReservation(ctx, &models.Reservation{
		CustomerID:              other.ID,
		TableNumber:             5,
		StartTime:               start,
		Status:                  enums.ReservationStatusPending,
		CalendarTokenCiphertext: "ct",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestCountByPhoneAndSlotJoinsCustomers(t *testing.T) {
	gdb := setupReservationsTestDB(t)
	repo := &repository{db: gdb}
	ctx := context.Background()

	start := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	ana := newCustomer(t, gdb, "Ana Flores", "+1-555-0001", 4)
	newReservation(t, gdb, ana, 5, start, enums.ReservationStatusPending)

	count, err := repo.CountByPhoneAndSlot(ctx, "+1-555-0001", start)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.CountByPhoneAndSlot(ctx, "+1-555-0001", start.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.CountByPhoneAndSlot(ctx, "+1-555-0099", start)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFindBySlotNotFound(t *testing.T) {
	gdb := setupReservationsTestDB(t)
	repo := &repository{db: gdb}

	_, err := repo.FindBySlot(context.Background(), 9, time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestFindExpiredWindows(t *testing.T) {
	gdb := setupReservationsTestDB(t)
	repo := &repository{db: gdb}
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	ana := newCustomer(t, gdb, "Ana Flores", "+1-555-0001", 4)

	staleActive := newReservation(t, gdb, ana, 1, now.Add(-3*time.Hour), enums.ReservationStatusActive)
	stalePending := newReservation(t, gdb, ana, 2, now.Add(-30*time.Minute), enums.ReservationStatusPending)
	freshActive := newReservation(t, gdb, ana, 3, now.Add(-30*time.Minute), enums.ReservationStatusActive)
	freshPending := newReservation(t, gdb, ana, 4, now.Add(-10*time.Minute), enums.ReservationStatusPending)

	expired, err := repo.FindExpired(ctx, now.Add(-2*time.Hour), now.Add(-20*time.Minute))
	require.NoError(t, err)

	ids := make(map[uuid.UUID]bool, len(expired))
	for _, row := range expired {
		ids[row.ID] = true
	}
	assert.True(t, ids[staleActive.ID])
	assert.True(t, ids[stalePending.ID])
	assert.False(t, ids[freshActive.ID])
	assert.False(t, ids[freshPending.ID])
}

func TestListPreloadsCustomerAndFiltersWindow(t *testing.T) {
	gdb := setupReservationsTestDB(t)
	repo := &repository{db: gdb}
	ctx := context.Background()

	ana := newCustomer(t, gdb, "Ana Flores", "+1-555-0001", 4)
	today := time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)
	tomorrow := today.Add(24 * time.Hour)
	newReservation(t, gdb, ana, 5, today, enums.ReservationStatusPending)
	newReservation(t, gdb, ana, 6, tomorrow, enums.ReservationStatusPending)

	dayStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	rows, err := repo.List(ctx, &dayStart, &dayEnd)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].TableNumber)
	require.NotNil(t, rows[0].Customer)
	assert.Equal(t, "Ana Flores", rows[0].Customer.Name)

	rows, err = repo.List(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDeleteOrphanCalendarEvents(t *testing.T) {
	gdb := setupReservationsTestDB(t)
	repo := &repository{db: gdb}
	ctx := context.Background()

	ana := newCustomer(t, gdb, "Ana Flores", "+1-555-0001", 4)
	kept := newReservation(t, gdb, ana, 5, time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC), enums.ReservationStatusPending)

	require.NoError(t, repo.CreateCalendarEvent(ctx, &models.CalendarEvent{
		ReservationID: kept.ID,
		EventID:       "evt-kept",
	}))
	require.NoError(t, repo.CreateCalendarEvent(ctx, &models.CalendarEvent{
		ReservationID: uuid.New(),
		EventID:       "evt-orphan",
	}))

	removed, err := repo.DeleteOrphanCalendarEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var remaining []models.CalendarEvent
	require.NoError(t, gdb.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "evt-kept", remaining[0].EventID)
}

func TestUpdateStatusReportsMissingRow(t *testing.T) {
	gdb := setupReservationsTestDB(t)
	repo := &repository{db: gdb}
	ctx := context.Background()

	ana := newCustomer(t, gdb, "Ana Flores", "+1-555-0001", 4)
	reservation := newReservation(t, gdb, ana, 5, time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC), enums.ReservationStatusPending)

	now := time.Date(2025, 6, 1, 19, 5, 0, 0, time.UTC)
	rows, err := repo.UpdateStatus(ctx, reservation.ID, enums.ReservationStatusActive, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.UpdateStatus(ctx, uuid.New(), enums.ReservationStatusActive, now)
	require.NoError(t, err)
	assert.Zero(t, rows)
}
