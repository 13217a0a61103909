package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotConnected means the credential for a seller is missing, revoked or
// rejected by the provider. Callers surface it distinctly so the UI can
// prompt for reconnection instead of showing a generic failure.
var ErrNotConnected = errors.New("calendar not connected")

// ProviderError wraps an upstream calendar failure (network, quota, 5xx).
// The core never retries these; the caller decides.
type ProviderError struct {
	Op  string
	Err error

	status int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("calendar provider: %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// BusyPeriod is a raw busy interval as reported by the provider. Either
// bound may be absent for open-ended busy blocks.
type BusyPeriod struct {
	Start *time.Time
	End   *time.Time
}

// EventDetails describes a calendar event to create.
type EventDetails struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string
}

// EventUpdate carries partial changes to an existing event; nil fields are
// left untouched.
type EventUpdate struct {
	Summary     *string
	Description *string
	Start       *time.Time
	End         *time.Time
	TimeZone    string
}

// CreatedEvent is the provider's reference to a newly created event.
type CreatedEvent struct {
	EventID     string
	MeetingLink string
}

// Event is a provider-side calendar entry.
type Event struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Status      string
	MeetingLink string
}

// Provider is the external calendar collaborator. The credential is the
// seller's opaque delegated-access token; implementations never persist it.
type Provider interface {
	VerifyConnection(ctx context.Context, credential string) error
	ListBusyIntervals(ctx context.Context, credential string, rangeStart, rangeEnd time.Time) ([]BusyPeriod, error)
	CreateEvent(ctx context.Context, credential string, details EventDetails) (CreatedEvent, error)
	UpdateEvent(ctx context.Context, credential string, eventID string, update EventUpdate) error
	DeleteEvent(ctx context.Context, credential string, eventID string) error
	ListUpcomingEvents(ctx context.Context, credential string, maxResults int) ([]Event, error)
}
