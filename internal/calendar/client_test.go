package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/osoriodev/tablebook-backend/pkg/config"
	pkgerrors "github.com/osoriodev/tablebook-backend/pkg/errors"
)

func testClient(baseURL string) *Client {
	return NewClient(config.CalendarConfig{
		BaseURL:        baseURL,
		CalendarID:     "primary",
		RequestTimeout: 2 * time.Second,
		RetryMaxWait:   2 * time.Second,
		TimeZone:       "UTC",
	}, nil)
}

func TestCreateEventSendsAuthorizedPayload(t *testing.T) {
	var gotAuth string
	var gotBody eventBody

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/calendars/primary/events" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(eventResponse{ID: "evt-123"})
	}))
	defer server.Close()

	start := time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC)
	eventID, err := testClient(server.URL).CreateEvent(context.Background(), "tok", Event{
		Title:       "Ana Flores - +1-555-0001",
		Description: "table 5, party of 4",
		Start:       start,
		End:         start.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eventID != "evt-123" {
		t.Fatalf("unexpected event id %s", eventID)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody.Start.DateTime != "2024-01-01T19:00:00Z" {
		t.Fatalf("unexpected start %q", gotBody.Start.DateTime)
	}
	if gotBody.End.DateTime != "2024-01-01T21:00:00Z" {
		t.Fatalf("unexpected end %q", gotBody.End.DateTime)
	}
}

func TestCreateEventRetriesTransientFailures(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(eventResponse{ID: "evt-9"})
	}))
	defer server.Close()

	eventID, err := testClient(server.URL).CreateEvent(context.Background(), "tok", Event{
		Title: "x",
		Start: time.Now(),
		End:   time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if eventID != "evt-9" {
		t.Fatalf("unexpected event id %s", eventID)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestCreateEventDoesNotRetryAuthFailure(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "invalid credentials"}})
	}))
	defer server.Close()

	_, err := testClient(server.URL).CreateEvent(context.Background(), "bad", Event{
		Title: "x",
		Start: time.Now(),
		End:   time.Now().Add(time.Hour),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestDeleteEventTreatsGoneAsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/calendars/primary/events/evt-123" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	if err := testClient(server.URL).DeleteEvent(context.Background(), "tok", "evt-123"); err != nil {
		t.Fatalf("expected gone to be treated as success, got %v", err)
	}
}
