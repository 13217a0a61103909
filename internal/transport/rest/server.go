package rest

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"bookable/backend/internal/calendar"
	"bookable/backend/internal/domain"
	"bookable/backend/internal/service/scheduling"
)

type Server struct {
	svc schedulingService
	log *slog.Logger
}

type schedulingService interface {
	GetAvailability(ctx context.Context, q scheduling.AvailabilityQuery) (scheduling.Availability, error)
	Book(ctx context.Context, in scheduling.BookInput) (scheduling.BookingResult, error)
	ConnectCalendar(ctx context.Context, email, name, refreshToken string) (domain.Seller, error)
	DisconnectCalendar(ctx context.Context, email string) error
	UpcomingEvents(ctx context.Context, sellerEmail string, maxResults int) ([]calendar.Event, error)
	Reschedule(ctx context.Context, actor scheduling.Actor, in scheduling.RescheduleInput) (domain.Appointment, error)
	DeleteEvent(ctx context.Context, actor scheduling.Actor, eventID string) error
	ListAppointments(ctx context.Context, actor scheduling.Actor, upcomingOnly bool) ([]domain.Appointment, error)
	GetAppointment(ctx context.Context, actor scheduling.Actor, id uuid.UUID) (domain.Appointment, error)
	UpdateStatus(ctx context.Context, actor scheduling.Actor, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error)
	DeleteAppointment(ctx context.Context, actor scheduling.Actor, id uuid.UUID) error
	ListSellers(ctx context.Context) ([]domain.Seller, error)
	GetSeller(ctx context.Context, id uuid.UUID) (domain.Seller, error)
}

func NewServer(svc schedulingService, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		svc: svc,
		log: log.With(slog.String("component", "rest")),
	}
}
