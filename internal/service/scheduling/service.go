package scheduling

import (
	"log/slog"
	"time"

	"bookable/backend/internal/calendar"
	"bookable/backend/internal/store"
)

// Defaults are applied to availability queries that leave the tuning knobs
// unset.
type Defaults struct {
	SlotDurationMinutes int
	WorkdayStartHour    int
	WorkdayEndHour      int
}

type Options struct {
	Defaults Defaults
	// FallbackEnabled gates placeholder-slot synthesis for empty results.
	FallbackEnabled bool
	// Location is the local reference frame for slot generation and the
	// time zone stamped on created events.
	Location *time.Location
}

type Service struct {
	sellers      store.SellerRepository
	appointments store.AppointmentRepository
	provider     calendar.Provider
	log          *slog.Logger

	defaults        Defaults
	fallbackEnabled bool
	loc             *time.Location
	now             func() time.Time
}

func NewService(
	sellers store.SellerRepository,
	appointments store.AppointmentRepository,
	provider calendar.Provider,
	opts Options,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	if opts.Defaults.SlotDurationMinutes <= 0 {
		opts.Defaults.SlotDurationMinutes = 30
	}
	if opts.Defaults.WorkdayStartHour == 0 && opts.Defaults.WorkdayEndHour == 0 {
		opts.Defaults.WorkdayStartHour = 9
		opts.Defaults.WorkdayEndHour = 17
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Service{
		sellers:         sellers,
		appointments:    appointments,
		provider:        provider,
		log:             log.With(slog.String("component", "service.scheduling")),
		defaults:        opts.Defaults,
		fallbackEnabled: opts.FallbackEnabled,
		loc:             opts.Location,
		now:             time.Now,
	}
}
