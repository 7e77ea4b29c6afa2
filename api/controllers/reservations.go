package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/osoriodev/tablebook-backend/api/responses"
	"github.com/osoriodev/tablebook-backend/api/validators"
	"github.com/osoriodev/tablebook-backend/internal/reservations"
	"github.com/osoriodev/tablebook-backend/pkg/enums"
	pkgerrors "github.com/osoriodev/tablebook-backend/pkg/errors"
	"github.com/osoriodev/tablebook-backend/pkg/logger"
)

// Field presence and value checks live in the reservations service so the
// error messages come out in a fixed order; the request structs stay untagged.
type createReservationRequest struct {
	Name          string    `json:"name"`
	PhoneNumber   string    `json:"phone_number"`
	PartySize     int       `json:"party_size"`
	TableNumber   int       `json:"table_number"`
	StartTime     time.Time `json:"start_time"`
	Note          string    `json:"note"`
	CalendarToken string    `json:"calendar_token"`
}

type removeReservationRequest struct {
	TableNumber   int       `json:"table_number"`
	StartTime     time.Time `json:"start_time"`
	CalendarToken string    `json:"calendar_token"`
}

type setReservationStatusRequest struct {
	ReservationID uuid.UUID `json:"reservation_id" validate:"required"`
	Status        string    `json:"status" validate:"required"`
}

func CreateReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createReservationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithTable(r.Context(), req.TableNumber)
		view, err := svc.Create(ctx, reservations.CreateInput{
			CustomerName:  req.Name,
			PhoneNumber:   req.PhoneNumber,
			PartySize:     req.PartySize,
			TableNumber:   req.TableNumber,
			StartTime:     req.StartTime,
			Note:          req.Note,
			CalendarToken: req.CalendarToken,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func RemoveReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req removeReservationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithTable(r.Context(), req.TableNumber)
		err := svc.Remove(ctx, reservations.RemoveInput{
			TableNumber:   req.TableNumber,
			StartTime:     req.StartTime,
			CalendarToken: req.CalendarToken,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// ListReservations sweeps expired rows before reading so the listing never
// shows tables that are already free.
func ListReservations(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		today, err := validators.ParseQueryBool(r, "today", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := svc.SweepExpired(r.Context()); err != nil {
			logg.Error(r.Context(), "pre-listing sweep failed", err)
		}

		views, err := svc.List(r.Context(), reservations.ListParams{TodayOnly: today})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

func SetReservationStatus(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setReservationStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseReservationStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "invalid reservation status"))
			return
		}

		if err := svc.SetStatus(r.Context(), req.ReservationID, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{
			"reservation_id": req.ReservationID.String(),
			"status":         string(status),
		})
	}
}
