package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osoriodev/tablebook-backend/api/controllers"
	"github.com/osoriodev/tablebook-backend/api/middleware"
	"github.com/osoriodev/tablebook-backend/internal/layout"
	"github.com/osoriodev/tablebook-backend/internal/reservations"
	"github.com/osoriodev/tablebook-backend/pkg/config"
	"github.com/osoriodev/tablebook-backend/pkg/db"
	"github.com/osoriodev/tablebook-backend/pkg/logger"
	"github.com/osoriodev/tablebook-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	reservationsService reservations.Service,
	layoutService layout.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", controllers.CreateReservation(reservationsService, logg))
			r.Delete("/", controllers.RemoveReservation(reservationsService, logg))
			r.Get("/", controllers.ListReservations(reservationsService, logg))
			r.Post("/status", controllers.SetReservationStatus(reservationsService, logg))
		})

		r.Route("/config/tables/layout", func(r chi.Router) {
			r.Get("/", controllers.GetTableLayout(layoutService, logg))
			r.Put("/", controllers.SaveTableLayout(layoutService, logg))
		})
	})

	return r
}
