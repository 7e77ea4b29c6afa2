package cron

import (
	"context"
	"errors"
	"testing"
)

type fakeSweeper struct {
	swept int
	err   error
	calls int
}

func (f *fakeSweeper) SweepExpired(context.Context) (int, error) {
	f.calls++
	return f.swept, f.err
}

func TestExpireReservationsJobReportsSweptCount(t *testing.T) {
	sweeper := &fakeSweeper{swept: 3}
	job, err := NewExpireReservationsJob(ExpireReservationsJobParams{
		Logger:  testLogger(),
		Sweeper: sweeper,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.calls != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.calls)
	}
}

func TestExpireReservationsJobPropagatesErrors(t *testing.T) {
	job, err := NewExpireReservationsJob(ExpireReservationsJobParams{
		Logger:  testLogger(),
		Sweeper: &fakeSweeper{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewExpireReservationsJobRequiresSweeper(t *testing.T) {
	if _, err := NewExpireReservationsJob(ExpireReservationsJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected error without a sweeper")
	}
}
