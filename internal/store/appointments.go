package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bookable/backend/internal/domain"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	FindByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	FindByEventID(ctx context.Context, eventID string) (domain.Appointment, error)
	ListByParty(ctx context.Context, partyID string, role domain.Role) ([]domain.Appointment, error)
	ListUpcoming(ctx context.Context, partyID string, role domain.Role, now time.Time) ([]domain.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) error
	Update(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
