package reservations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/osoriodev/tablebook-backend/internal/calendar"
	"github.com/osoriodev/tablebook-backend/pkg/config"
	"github.com/osoriodev/tablebook-backend/pkg/db/models"
	"github.com/osoriodev/tablebook-backend/pkg/enums"
	pkgerrors "github.com/osoriodev/tablebook-backend/pkg/errors"
	"github.com/osoriodev/tablebook-backend/pkg/logger"
)

// Service manages the reservation lifecycle: creation with conflict checks,
// removal with customer cascade, status flips and the expiry sweep.
type Service interface {
	Create(ctx context.Context, in CreateInput) (*ReservationView, error)
	Remove(ctx context.Context, in RemoveInput) error
	SetStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus) error
	List(ctx context.Context, params ListParams) ([]ReservationView, error)
	SweepExpired(ctx context.Context) (int, error)
}

type Params struct {
	Logger       *logger.Logger
	DB           txRunner
	Repo         Repository
	Availability AvailabilityChecker
	Syncer       Syncer
	Cipher       TokenCipher
	Config       config.ReservationsConfig
	Now          func() time.Time
}

type service struct {
	logg         *logger.Logger
	db           txRunner
	repo         Repository
	availability AvailabilityChecker
	syncer       Syncer
	cipher       TokenCipher
	slot         time.Duration
	pendingGrace time.Duration
	now          func() time.Time
}

func NewService(p Params) (Service, error) {
	if p.Logger == nil {
		return nil, fmt.Errorf("reservations service requires a logger")
	}
	if p.DB == nil {
		return nil, fmt.Errorf("reservations service requires a transaction runner")
	}
	if p.Repo == nil {
		return nil, fmt.Errorf("reservations service requires a repository")
	}
	if p.Availability == nil {
		return nil, fmt.Errorf("reservations service requires an availability checker")
	}
	if p.Syncer == nil {
		return nil, fmt.Errorf("reservations service requires a calendar syncer")
	}
	if p.Cipher == nil {
		return nil, fmt.Errorf("reservations service requires a token cipher")
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Config.SlotDuration <= 0 {
		p.Config.SlotDuration = 2 * time.Hour
	}
	if p.Config.PendingGrace <= 0 {
		p.Config.PendingGrace = 20 * time.Minute
	}
	return &service{
		logg:         p.Logger,
		db:           p.DB,
		repo:         p.Repo,
		availability: p.Availability,
		syncer:       p.Syncer,
		cipher:       p.Cipher,
		slot:         p.Config.SlotDuration,
		pendingGrace: p.Config.PendingGrace,
		now:          p.Now,
	}, nil
}

// Create validates the request, checks both conflict rules inside the insert
// transaction and mirrors the reservation into the calendar after commit.
// Calendar failures leave the reservation intact.
func (s *service) Create(ctx context.Context, in CreateInput) (*ReservationView, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	ciphertext, err := s.cipher.Encrypt(in.CalendarToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encrypting calendar token")
	}

	customer := &models.Customer{
		Name:        in.CustomerName,
		PhoneNumber: in.PhoneNumber,
		PartySize:   in.PartySize,
	}
	reservation := &models.Reservation{
		TableNumber:             in.TableNumber,
		StartTime:               in.StartTime,
		Note:                    in.Note,
		Status:                  enums.ReservationStatusPending,
		CalendarTokenCiphertext: ciphertext,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		checker := s.availability.WithTx(tx)

		customerBooked, err := checker.HasExistingReservation(ctx, in.PhoneNumber, in.StartTime)
		if err != nil {
			return err
		}
		tableBooked, err := checker.IsTableBooked(ctx, in.TableNumber, in.StartTime)
		if err != nil {
			return err
		}
		if customerBooked {
			return pkgerrors.New(pkgerrors.CodeConflict, "you already have a reservation at this time")
		}
		if tableBooked {
			return pkgerrors.New(pkgerrors.CodeConflict, "table already booked")
		}

		if err := repo.CreateCustomer(ctx, customer); err != nil {
			return err
		}
		reservation.CustomerID = customer.ID
		return repo.CreateReservation(ctx, reservation)
	})
	if err != nil {
		return nil, err
	}

	s.syncCreated(ctx, in, reservation)

	reservation.Customer = customer
	view := toView(*reservation)
	return &view, nil
}

// syncCreated mirrors a committed reservation into the calendar and records
// the event id. Any failure here is logged and swallowed.
func (s *service) syncCreated(ctx context.Context, in CreateInput, reservation *models.Reservation) {
	event := calendar.Event{
		Title:       fmt.Sprintf("%s - %s", in.CustomerName, in.PhoneNumber),
		Description: eventDescription(in.TableNumber, in.PartySize, in.Note),
		Start:       in.StartTime,
		End:         in.StartTime.Add(s.slot),
	}

	eventID, err := s.syncer.CreateEvent(ctx, in.CalendarToken, event)
	if err != nil {
		s.logg.Error(ctx, "calendar event creation failed", err)
		return
	}

	if err := s.repo.SetCalendarEventID(ctx, reservation.ID, eventID); err != nil {
		s.logg.Error(ctx, "recording calendar event id failed", err)
		return
	}
	reservation.CalendarEventID = &eventID

	err = s.repo.CreateCalendarEvent(ctx, &models.CalendarEvent{
		ReservationID: reservation.ID,
		EventID:       eventID,
	})
	if err != nil {
		s.logg.Error(ctx, "tracking calendar event failed", err)
	}
}

// Remove deletes the reservation occupying the slot, cascades the customer
// when no other reservations reference it and sweeps orphaned tracking rows.
// The mirrored calendar event is deleted best effort after commit.
func (s *service) Remove(ctx context.Context, in RemoveInput) error {
	if err := validateRemove(in); err != nil {
		return err
	}

	var removed *models.Reservation
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		reservation, err := repo.FindBySlot(ctx, in.TableNumber, in.StartTime)
		if err != nil {
			return err
		}
		removed = reservation
		return s.teardown(ctx, repo, reservation)
	})
	if err != nil {
		return err
	}

	s.syncRemoved(ctx, in.CalendarToken, removed)
	return nil
}

// teardown runs the deletion cascade inside the caller's transaction. A zero
// rows-affected delete means another worker got there first and the rest of
// the cascade is skipped.
func (s *service) teardown(ctx context.Context, repo Repository, reservation *models.Reservation) error {
	rows, err := repo.DeleteReservation(ctx, reservation.ID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}

	if err := repo.DeleteCalendarEventByReservation(ctx, reservation.ID); err != nil {
		return err
	}

	remaining, err := repo.CountByCustomer(ctx, reservation.CustomerID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		if err := repo.DeleteCustomer(ctx, reservation.CustomerID); err != nil {
			return err
		}
	}

	orphans, err := repo.DeleteOrphanCalendarEvents(ctx)
	if err != nil {
		return err
	}
	if orphans > 0 {
		s.logg.Info(s.logg.WithField(ctx, "orphans", orphans), "removed orphaned calendar event rows")
	}
	return nil
}

// syncRemoved deletes the mirrored calendar event. The caller's token takes
// precedence; otherwise the token stored with the reservation is decrypted.
func (s *service) syncRemoved(ctx context.Context, callerToken string, reservation *models.Reservation) {
	if reservation == nil || reservation.CalendarEventID == nil {
		return
	}

	token := callerToken
	if token == "" {
		decrypted, err := s.cipher.Decrypt(reservation.CalendarTokenCiphertext)
		if err != nil {
			s.logg.Error(ctx, "decrypting stored calendar token failed", err)
			return
		}
		token = decrypted
	}

	if err := s.syncer.DeleteEvent(ctx, token, *reservation.CalendarEventID); err != nil {
		s.logg.Error(ctx, "calendar event deletion failed", err)
	}
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus) error {
	if !status.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid reservation status")
	}
	rows, err := s.repo.UpdateStatus(ctx, id, status, s.now().UTC())
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]ReservationView, error) {
	var from, to *time.Time
	if params.TodayOnly {
		now := s.now()
		year, month, day := now.Date()
		dayStart := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
		dayEnd := dayStart.Add(24 * time.Hour)
		from, to = &dayStart, &dayEnd
	}

	rows, err := s.repo.List(ctx, from, to)
	if err != nil {
		return nil, err
	}

	views := make([]ReservationView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}
	return views, nil
}

// SweepExpired tears down reservations past their occupancy window. Active
// reservations expire a full slot after their start; pending ones are given
// only the confirmation grace period. Each teardown runs in its own
// transaction so one failure does not block the rest.
func (s *service) SweepExpired(ctx context.Context) (int, error) {
	now := s.now().UTC()
	activeCutoff := now.Add(-s.slot)
	pendingCutoff := now.Add(-s.pendingGrace)

	expired, err := s.repo.FindExpired(ctx, activeCutoff, pendingCutoff)
	if err != nil {
		return 0, err
	}

	var swept int
	var errs error
	for i := range expired {
		reservation := expired[i]
		err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
			return s.teardown(ctx, s.repo.WithTx(tx), &reservation)
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reservation %s: %w", reservation.ID, err))
			continue
		}
		swept++
		s.syncRemoved(ctx, "", &reservation)
	}
	return swept, errs
}

func validateCreate(in CreateInput) error {
	if in.CustomerName == "" || in.PhoneNumber == "" || in.PartySize == 0 ||
		in.TableNumber == 0 || in.StartTime.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			"name, party size, table number, phone number, and reservation time are required")
	}
	if in.PartySize < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "party size must be greater than zero")
	}
	if in.TableNumber < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "table number must be greater than zero")
	}
	if in.CalendarToken == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "calendar token is required")
	}
	return nil
}

func validateRemove(in RemoveInput) error {
	if in.TableNumber == 0 || in.StartTime.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "table number and reservation time are required")
	}
	if in.TableNumber < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "table number must be greater than zero")
	}
	return nil
}

func eventDescription(tableNumber, partySize int, note string) string {
	description := fmt.Sprintf("Table %d, party of %d", tableNumber, partySize)
	if note != "" {
		description += ". " + note
	}
	return description
}

func toView(reservation models.Reservation) ReservationView {
	view := ReservationView{
		ID:          reservation.ID,
		CustomerID:  reservation.CustomerID,
		TableNumber: reservation.TableNumber,
		StartTime:   reservation.StartTime,
		Note:        reservation.Note,
		Status:      reservation.Status,
	}
	if reservation.CalendarEventID != nil {
		view.CalendarEventID = *reservation.CalendarEventID
	}
	if reservation.Customer != nil {
		view.CustomerName = reservation.Customer.Name
		view.PhoneNumber = reservation.Customer.PhoneNumber
		view.PartySize = reservation.Customer.PartySize
	}
	return view
}
