package scheduling

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookable/backend/internal/calendar"
	"bookable/backend/internal/domain"
)

// Actor is the authenticated caller of an appointment operation, as
// established by the transport layer.
type Actor struct {
	ID    string
	Email string
	Name  string
	Role  domain.Role
}

func (a Actor) matches(appt domain.Appointment) bool {
	if a.ID != "" && a.ID == appt.BuyerID {
		return true
	}
	email := strings.ToLower(strings.TrimSpace(a.Email))
	if email == "" {
		return false
	}
	return email == strings.ToLower(appt.BuyerEmail) || email == strings.ToLower(appt.SellerEmail)
}

// ListAppointments returns the actor's appointments, scoped by role: sellers
// see appointments where they are the seller party, buyers where they are
// the buyer party. With upcomingOnly set, only appointments ending after the
// current time are returned.
func (s *Service) ListAppointments(ctx context.Context, actor Actor, upcomingOnly bool) ([]domain.Appointment, error) {
	if !domain.ValidRole(actor.Role) {
		return nil, validationError("unknown role")
	}
	partyID := actor.ID
	if actor.Role == domain.RoleSeller {
		seller, err := s.sellers.FindByEmail(ctx, actor.Email)
		if err != nil {
			return nil, err
		}
		partyID = seller.ID.String()
	}
	if upcomingOnly {
		return s.appointments.ListUpcoming(ctx, partyID, actor.Role, s.now())
	}
	return s.appointments.ListByParty(ctx, partyID, actor.Role)
}

// GetAppointment fetches a single appointment. Actors that are neither the
// buyer nor the seller party get ErrForbidden, not ErrNotFound, since the
// record exists.
func (s *Service) GetAppointment(ctx context.Context, actor Actor, id uuid.UUID) (domain.Appointment, error) {
	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !actor.matches(appt) {
		return domain.Appointment{}, ErrForbidden
	}
	return appt, nil
}

// UpdateStatus moves an appointment through its lifecycle. Only scheduled
// appointments may transition, and only to completed or cancelled.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error) {
	if !domain.ValidStatus(status) {
		return domain.Appointment{}, validationError("unknown status")
	}
	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !actor.matches(appt) {
		return domain.Appointment{}, ErrForbidden
	}
	if !domain.CanTransition(appt.Status, status) {
		return domain.Appointment{}, validationError("cannot transition from " + string(appt.Status) + " to " + string(status))
	}
	if err := s.appointments.UpdateStatus(ctx, id, status); err != nil {
		return domain.Appointment{}, err
	}
	appt.Status = status
	s.log.Info("appointment status updated",
		slog.String("appointment_id", id.String()),
		slog.String("status", string(status)),
	)
	return appt, nil
}

// DeleteAppointment removes the stored record. The external calendar event
// is left in place; cancelling the event itself goes through DeleteEvent.
func (s *Service) DeleteAppointment(ctx context.Context, actor Actor, id uuid.UUID) error {
	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.matches(appt) {
		return ErrForbidden
	}
	return s.appointments.Delete(ctx, id)
}

type RescheduleInput struct {
	EventID     string
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
}

// Reschedule applies partial changes to a booked event on the seller's
// calendar and mirrors them onto the stored appointment.
func (s *Service) Reschedule(ctx context.Context, actor Actor, in RescheduleInput) (domain.Appointment, error) {
	if strings.TrimSpace(in.EventID) == "" {
		return domain.Appointment{}, validationError("eventId is required")
	}
	if in.Title == nil && in.Description == nil && in.StartTime == nil && in.EndTime == nil {
		return domain.Appointment{}, validationError("no changes given")
	}
	if in.StartTime != nil && in.EndTime != nil && !in.EndTime.After(*in.StartTime) {
		return domain.Appointment{}, validationError("endTime must be after startTime")
	}

	appt, err := s.appointments.FindByEventID(ctx, in.EventID)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !actor.matches(appt) {
		return domain.Appointment{}, ErrForbidden
	}

	seller, err := s.sellers.FindByEmail(ctx, appt.SellerEmail)
	if err != nil {
		return domain.Appointment{}, err
	}
	if !seller.CalendarConnected || seller.RefreshToken == "" {
		return domain.Appointment{}, calendar.ErrNotConnected
	}

	err = s.provider.UpdateEvent(ctx, seller.RefreshToken, in.EventID, calendar.EventUpdate{
		Summary:     in.Title,
		Description: in.Description,
		Start:       in.StartTime,
		End:         in.EndTime,
		TimeZone:    s.loc.String(),
	})
	if err != nil {
		return domain.Appointment{}, err
	}

	if in.Title != nil {
		appt.Title = *in.Title
	}
	if in.Description != nil {
		appt.Description = *in.Description
	}
	if in.StartTime != nil {
		appt.StartTime = in.StartTime.UTC()
	}
	if in.EndTime != nil {
		appt.EndTime = in.EndTime.UTC()
	}
	return s.appointments.Update(ctx, appt)
}

// DeleteEvent cancels a booked event on the seller's calendar and removes
// the stored appointment.
func (s *Service) DeleteEvent(ctx context.Context, actor Actor, eventID string) error {
	if strings.TrimSpace(eventID) == "" {
		return validationError("eventId is required")
	}
	appt, err := s.appointments.FindByEventID(ctx, eventID)
	if err != nil {
		return err
	}
	if !actor.matches(appt) {
		return ErrForbidden
	}
	seller, err := s.sellers.FindByEmail(ctx, appt.SellerEmail)
	if err != nil {
		return err
	}
	if !seller.CalendarConnected || seller.RefreshToken == "" {
		return calendar.ErrNotConnected
	}
	if err := s.provider.DeleteEvent(ctx, seller.RefreshToken, eventID); err != nil {
		return err
	}
	return s.appointments.Delete(ctx, appt.ID)
}

// ConnectCalendar verifies the given refresh token against the provider and
// stores it for the seller. A token the provider rejects never reaches the
// store.
func (s *Service) ConnectCalendar(ctx context.Context, email, name, refreshToken string) (domain.Seller, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.Seller{}, validationError("email is required")
	}
	if strings.TrimSpace(refreshToken) == "" {
		return domain.Seller{}, validationError("refreshToken is required")
	}
	if err := s.provider.VerifyConnection(ctx, refreshToken); err != nil {
		if err == calendar.ErrNotConnected {
			return domain.Seller{}, validationError("refresh token was rejected by the calendar provider")
		}
		return domain.Seller{}, err
	}
	seller, err := s.sellers.SaveConnection(ctx, email, name, refreshToken)
	if err != nil {
		return domain.Seller{}, err
	}
	s.log.Info("calendar connected", slog.String("seller_email", email))
	seller.RefreshToken = ""
	return seller, nil
}

// DisconnectCalendar drops the stored credential and marks the seller
// disconnected.
func (s *Service) DisconnectCalendar(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return validationError("email is required")
	}
	if err := s.sellers.SetConnected(ctx, email, false); err != nil {
		return err
	}
	s.log.Info("calendar disconnected", slog.String("seller_email", email))
	return nil
}

// ListSellers returns all registered sellers with credentials scrubbed.
func (s *Service) ListSellers(ctx context.Context) ([]domain.Seller, error) {
	sellers, err := s.sellers.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sellers {
		sellers[i].RefreshToken = ""
	}
	return sellers, nil
}

func (s *Service) GetSeller(ctx context.Context, id uuid.UUID) (domain.Seller, error) {
	seller, err := s.sellers.FindByID(ctx, id)
	if err != nil {
		return domain.Seller{}, err
	}
	seller.RefreshToken = ""
	return seller, nil
}

// UpcomingEvents lists the seller's next events straight from the provider.
func (s *Service) UpcomingEvents(ctx context.Context, sellerEmail string, maxResults int) ([]calendar.Event, error) {
	sellerEmail = strings.TrimSpace(sellerEmail)
	if sellerEmail == "" {
		return nil, validationError("sellerEmail is required")
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	seller, err := s.sellers.FindByEmail(ctx, sellerEmail)
	if err != nil {
		return nil, err
	}
	if !seller.CalendarConnected || seller.RefreshToken == "" {
		return nil, calendar.ErrNotConnected
	}
	return s.provider.ListUpcomingEvents(ctx, seller.RefreshToken, maxResults)
}
