package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookable/backend/internal/calendar"
	"bookable/backend/internal/domain"
)

type BookInput struct {
	SellerEmail string
	BuyerID     string
	BuyerEmail  string
	BuyerName   string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
}

type BookingResult struct {
	Appointment domain.Appointment
	EventID     string
	MeetingLink string
}

// Book creates the external calendar event and then persists the
// appointment record. The two steps are not a transaction: an event-create
// failure aborts before anything is persisted, while a persistence failure
// after a successful create leaves an orphaned event on the seller's
// calendar. That case is logged distinctly and a best-effort compensating
// delete is attempted; a failure of the compensation itself is only logged.
//
// Availability is not re-checked here, so two concurrent bookings of the
// same slot can both succeed. That race is an accepted property of the
// current design.
func (s *Service) Book(ctx context.Context, in BookInput) (BookingResult, error) {
	log := s.log.With(slog.String("op", "Book"))

	sellerEmail := strings.TrimSpace(in.SellerEmail)
	if sellerEmail == "" {
		return BookingResult{}, validationError("sellerEmail is required")
	}
	buyerEmail := strings.TrimSpace(in.BuyerEmail)
	if buyerEmail == "" {
		return BookingResult{}, validationError("buyer email is required")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return BookingResult{}, validationError("title is required")
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return BookingResult{}, validationError("startTime and endTime are required")
	}
	if !in.EndTime.After(in.StartTime) {
		return BookingResult{}, validationError("endTime must be after startTime")
	}

	seller, err := s.sellers.FindByEmail(ctx, sellerEmail)
	if err != nil {
		return BookingResult{}, err
	}
	if !seller.CalendarConnected || seller.RefreshToken == "" {
		return BookingResult{}, calendar.ErrNotConnected
	}

	description := in.Description
	if description == "" {
		description = fmt.Sprintf("Appointment with %s", in.BuyerName)
	}

	created, err := s.provider.CreateEvent(ctx, seller.RefreshToken, calendar.EventDetails{
		Summary:     title,
		Description: description,
		Start:       in.StartTime.In(s.loc),
		End:         in.EndTime.In(s.loc),
		TimeZone:    s.loc.String(),
		Attendees:   []string{buyerEmail, sellerEmail},
	})
	if err != nil {
		return BookingResult{}, err
	}

	appt, err := s.appointments.Create(ctx, domain.Appointment{
		BuyerID:     in.BuyerID,
		BuyerEmail:  buyerEmail,
		BuyerName:   in.BuyerName,
		SellerID:    seller.ID.String(),
		SellerEmail: seller.Email,
		SellerName:  seller.Name,
		EventID:     created.EventID,
		Title:       title,
		Description: in.Description,
		StartTime:   in.StartTime.UTC(),
		EndTime:     in.EndTime.UTC(),
		Status:      domain.AppointmentStatusScheduled,
		MeetingLink: created.MeetingLink,
	})
	if err != nil {
		log.Error(
			"orphaned calendar event: appointment persistence failed after event creation",
			slog.Any("err", err),
			slog.String("event_id", created.EventID),
			slog.String("seller_email", seller.Email),
			slog.String("buyer_email", buyerEmail),
		)
		if delErr := s.provider.DeleteEvent(ctx, seller.RefreshToken, created.EventID); delErr != nil {
			log.Error(
				"orphaned calendar event: compensating delete failed",
				slog.Any("err", delErr),
				slog.String("event_id", created.EventID),
				slog.String("seller_email", seller.Email),
			)
		}
		return BookingResult{}, &PersistenceError{EventID: created.EventID, Err: err}
	}

	log.Info(
		"appointment booked",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("event_id", created.EventID),
		slog.String("seller_email", seller.Email),
		slog.String("buyer_email", buyerEmail),
		slog.Time("start_time", appt.StartTime),
		slog.Time("end_time", appt.EndTime),
	)

	return BookingResult{Appointment: appt, EventID: created.EventID, MeetingLink: created.MeetingLink}, nil
}
