package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookable/backend/internal/calendar"
	"bookable/backend/internal/domain"
)

type AvailabilityQuery struct {
	SellerEmail string
	RangeStart  time.Time
	RangeEnd    time.Time
	// Zero values take the service defaults.
	SlotDurationMinutes int
	WorkdayStartHour    int
	WorkdayEndHour      int
}

type Availability struct {
	Slots []domain.AvailabilitySlot
	Busy  []domain.TimeInterval
}

// GetAvailability validates the query, fetches the seller's busy periods
// from the calendar provider and computes the bookable slots. A seller
// without an active calendar connection surfaces calendar.ErrNotConnected;
// an upstream failure surfaces a *calendar.ProviderError. Neither is folded
// into an empty-but-successful result.
func (s *Service) GetAvailability(ctx context.Context, q AvailabilityQuery) (Availability, error) {
	email := strings.TrimSpace(q.SellerEmail)
	if email == "" {
		return Availability{}, validationError("sellerEmail is required")
	}
	if q.RangeStart.IsZero() || q.RangeEnd.IsZero() {
		return Availability{}, validationError("startDate and endDate are required")
	}

	duration := q.SlotDurationMinutes
	if duration == 0 {
		duration = s.defaults.SlotDurationMinutes
	}
	if duration <= 0 {
		return Availability{}, validationError("duration must be positive")
	}

	startHour, endHour := q.WorkdayStartHour, q.WorkdayEndHour
	if startHour == 0 {
		startHour = s.defaults.WorkdayStartHour
	}
	if endHour == 0 {
		endHour = s.defaults.WorkdayEndHour
	}
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		return Availability{}, validationError(fmt.Sprintf("workday hours %d-%d are out of range", startHour, endHour))
	}

	seller, err := s.sellers.FindByEmail(ctx, email)
	if err != nil {
		return Availability{}, err
	}
	if !seller.CalendarConnected || seller.RefreshToken == "" {
		return Availability{}, calendar.ErrNotConnected
	}
	if err := s.provider.VerifyConnection(ctx, seller.RefreshToken); err != nil {
		return Availability{}, err
	}

	raw, err := s.provider.ListBusyIntervals(ctx, seller.RefreshToken, q.RangeStart, q.RangeEnd)
	if err != nil {
		return Availability{}, err
	}
	busy := calendar.NormalizeBusyPeriods(raw, q.RangeStart, q.RangeEnd)

	now := s.now()
	rangeStart := q.RangeStart.In(s.loc)
	rangeEnd := q.RangeEnd.In(s.loc)

	slots := domain.GenerateSlots(busy, rangeStart, rangeEnd, duration, startHour, endHour, now)
	if len(slots) == 0 && s.fallbackEnabled && !beforeToday(rangeStart, now.In(s.loc)) {
		slots = domain.FallbackSlots(rangeStart, rangeEnd, duration, now)
	}

	return Availability{Slots: slots, Busy: busy}, nil
}

// beforeToday reports whether t falls on an earlier calendar day than now,
// both taken in the same location.
func beforeToday(t, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return t.Before(today)
}
