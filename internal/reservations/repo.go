package reservations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/osoriodev/tablebook-backend/pkg/db"
	"github.com/osoriodev/tablebook-backend/pkg/db/models"
	"github.com/osoriodev/tablebook-backend/pkg/enums"
	pkgerrors "github.com/osoriodev/tablebook-backend/pkg/errors"
)

type repository struct {
	db *gorm.DB
}

// NewRepository wires the reservation tables to the shared database client.
func NewRepository(client *db.Client) Repository {
	return &repository{db: client.DB()}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating customer")
	}
	return nil
}

func (r *repository) CreateReservation(ctx context.Context, reservation *models.Reservation) error {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		if db.IsUniqueViolation(err, "uq_reservations_table_slot") {
			return pkgerrors.New(pkgerrors.CodeConflict, "table already booked")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating reservation")
	}
	return nil
}

func (r *repository) SetCalendarEventID(ctx context.Context, reservationID uuid.UUID, eventID string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", reservationID).
		Update("calendar_event_id", eventID).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording calendar event id")
	}
	return nil
}

func (r *repository) CreateCalendarEvent(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "tracking calendar event")
	}
	return nil
}

func (r *repository) FindBySlot(ctx context.Context, tableNumber int, startTime time.Time) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Where("table_number = ? AND start_time = ?", tableNumber, startTime).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "table is not booked at this time")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding reservation by slot")
	}
	return &reservation, nil
}

func (r *repository) CountBySlot(ctx context.Context, tableNumber int, startTime time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("table_number = ? AND start_time = ?", tableNumber, startTime).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting slot reservations")
	}
	return count, nil
}

func (r *repository) CountByPhoneAndSlot(ctx context.Context, phoneNumber string, startTime time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Joins("JOIN customers ON customers.id = reservations.customer_id").
		Where("customers.phone_number = ? AND reservations.start_time = ?", phoneNumber, startTime).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting customer reservations")
	}
	return count, nil
}

func (r *repository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting reservations for customer")
	}
	return count, nil
}

func (r *repository) DeleteReservation(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Reservation{})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "deleting reservation")
	}
	return res.RowsAffected, nil
}

func (r *repository) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Customer{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting customer")
	}
	return nil
}

func (r *repository) DeleteCalendarEventByReservation(ctx context.Context, reservationID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Delete(&models.CalendarEvent{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting calendar event tracking row")
	}
	return nil
}

func (r *repository) DeleteOrphanCalendarEvents(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("reservation_id NOT IN (?)",
			r.db.Model(&models.Reservation{}).Select("id")).
		Delete(&models.CalendarEvent{})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "deleting orphan calendar events")
	}
	return res.RowsAffected, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": now})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "updating reservation status")
	}
	return res.RowsAffected, nil
}

func (r *repository) List(ctx context.Context, from, to *time.Time) ([]models.Reservation, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Preload("Customer").
		Order("start_time ASC")
	if from != nil {
		q = q.Where("start_time >= ?", *from)
	}
	if to != nil {
		q = q.Where("start_time < ?", *to)
	}

	var rows []models.Reservation
	if err := q.Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing reservations")
	}
	return rows, nil
}

// FindExpired returns reservations past their occupancy window: anything whose
// slot started before activeCutoff, plus pending rows older than pendingCutoff
// that were never confirmed.
func (r *repository) FindExpired(ctx context.Context, activeCutoff, pendingCutoff time.Time) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.db.WithContext(ctx).
		Where("start_time <= ? OR (start_time <= ? AND status = ?)",
			activeCutoff, pendingCutoff, enums.ReservationStatusPending).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding expired reservations")
	}
	return rows, nil
}
