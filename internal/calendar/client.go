package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/osoriodev/tablebook-backend/pkg/config"
	pkgerrors "github.com/osoriodev/tablebook-backend/pkg/errors"
	"github.com/osoriodev/tablebook-backend/pkg/logger"
)

// Event is the provider-agnostic payload mirrored into the external calendar.
type Event struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
}

// Client talks to a Google Calendar v3 style events API. Calls are bounded by
// the configured request timeout and retried with exponential backoff on
// transient failures; callers treat any returned error as non-fatal.
type Client struct {
	baseURL    string
	calendarID string
	timeZone   string
	maxWait    time.Duration
	httpClient *http.Client
	logg       *logger.Logger
}

// NewClient builds a calendar client from configuration.
func NewClient(cfg config.CalendarConfig, logg *logger.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		calendarID: cfg.CalendarID,
		timeZone:   cfg.TimeZone,
		maxWait:    cfg.RetryMaxWait,
		httpClient: &http.Client{Timeout: timeout},
		logg:       logg,
	}
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventBody struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

type eventResponse struct {
	ID string `json:"id"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateEvent mirrors a reservation as a calendar event and returns the
// provider event id.
func (c *Client) CreateEvent(ctx context.Context, token string, event Event) (string, error) {
	body := eventBody{
		Summary:     event.Title,
		Description: event.Description,
		Start:       eventTime{DateTime: event.Start.Format(time.RFC3339), TimeZone: c.timeZone},
		End:         eventTime{DateTime: event.End.Format(time.RFC3339), TimeZone: c.timeZone},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode calendar event")
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(c.calendarID))

	var eventID string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			var decoded eventResponse
			if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
				return backoff.Permanent(fmt.Errorf("decode event response: %w", err))
			}
			eventID = decoded.ID
			return nil
		}
		return c.statusError(resp)
	}

	if err := backoff.RetryNotify(operation, c.newBackOff(ctx), c.notifyRetry(ctx)); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create calendar event")
	}
	return eventID, nil
}

// DeleteEvent removes the mirrored event. A 404/410 from the provider means
// the event is already gone and is treated as success.
func (c *Client) DeleteEvent(ctx context.Context, token, eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s",
		c.baseURL, url.PathEscape(c.calendarID), url.PathEscape(eventID))

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
			return nil
		default:
			return c.statusError(resp)
		}
	}

	if err := backoff.RetryNotify(operation, c.newBackOff(ctx), c.notifyRetry(ctx)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete calendar event")
	}
	return nil
}

// statusError classifies HTTP failures: 429 and 5xx are retryable, other 4xx
// are permanent.
func (c *Client) statusError(resp *http.Response) error {
	var decoded apiError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &decoded)

	message := decoded.Error.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	err := fmt.Errorf("calendar api %d: %s", resp.StatusCode, message)

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return err
	}
	return backoff.Permanent(err)
}

func (c *Client) notifyRetry(ctx context.Context) backoff.Notify {
	return func(err error, next time.Duration) {
		if c.logg == nil {
			return
		}
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"retry_in": next.String(),
			"error":    err.Error(),
		})
		c.logg.Warn(logCtx, "calendar request failed, retrying")
	}
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = c.maxWait
	if bo.MaxElapsedTime <= 0 {
		bo.MaxElapsedTime = 30 * time.Second
	}
	return backoff.WithContext(bo, ctx)
}
