package cron

import (
	"context"
	"fmt"

	"github.com/osoriodev/tablebook-backend/pkg/logger"
	"github.com/osoriodev/tablebook-backend/pkg/metrics"
)

type reservationSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

type ExpireReservationsJobParams struct {
	Logger  *logger.Logger
	Sweeper reservationSweeper
	Metrics *metrics.CronJobMetrics
}

// NewExpireReservationsJob builds the job that tears down reservations past
// their occupancy window.
func NewExpireReservationsJob(params ExpireReservationsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("reservation sweeper required")
	}
	return &expireReservationsJob{
		logg:    params.Logger,
		sweeper: params.Sweeper,
		metrics: params.Metrics,
	}, nil
}

type expireReservationsJob struct {
	logg    *logger.Logger
	sweeper reservationSweeper
	metrics *metrics.CronJobMetrics
}

func (j *expireReservationsJob) Name() string { return "expire-reservations" }

func (j *expireReservationsJob) Run(ctx context.Context) error {
	swept, err := j.sweeper.SweepExpired(ctx)
	if j.metrics != nil && swept > 0 {
		j.metrics.AddSwept(j.Name(), swept)
	}
	if err != nil {
		return fmt.Errorf("expire reservations: %w", err)
	}
	if swept > 0 {
		logCtx := j.logg.WithField(ctx, "rows_swept", swept)
		j.logg.Info(logCtx, "expired reservations removed")
	}
	return nil
}
