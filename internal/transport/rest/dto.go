package rest

import (
	"time"

	"bookable/backend/internal/calendar"
	"bookable/backend/internal/domain"
)

type slotDTO struct {
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Available  bool      `json:"available"`
	IsFallback bool      `json:"isFallback,omitempty"`
}

type busyDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type availabilityResponse struct {
	Slots     []slotDTO `json:"availableSlots"`
	BusyTimes []busyDTO `json:"busyTimes"`
}

func toAvailabilityResponse(a []domain.AvailabilitySlot, busy []domain.TimeInterval) availabilityResponse {
	slots := make([]slotDTO, 0, len(a))
	for _, s := range a {
		slots = append(slots, slotDTO{
			StartTime:  s.Start,
			EndTime:    s.End,
			Available:  s.Available,
			IsFallback: s.IsFallback,
		})
	}
	busyTimes := make([]busyDTO, 0, len(busy))
	for _, b := range busy {
		busyTimes = append(busyTimes, busyDTO{Start: b.Start, End: b.End})
	}
	return availabilityResponse{Slots: slots, BusyTimes: busyTimes}
}

type bookRequest struct {
	SellerEmail string    `json:"sellerEmail" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"startTime" binding:"required"`
	EndTime     time.Time `json:"endTime" binding:"required"`
}

type bookResponse struct {
	Appointment appointmentDTO `json:"appointment"`
	EventID     string         `json:"eventId"`
	MeetingLink string         `json:"meetingLink,omitempty"`
}

type connectRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type rescheduleRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type appointmentDTO struct {
	ID          string    `json:"id"`
	BuyerID     string    `json:"buyerId"`
	BuyerEmail  string    `json:"buyerEmail"`
	BuyerName   string    `json:"buyerName,omitempty"`
	SellerID    string    `json:"sellerId"`
	SellerEmail string    `json:"sellerEmail"`
	SellerName  string    `json:"sellerName,omitempty"`
	EventID     string    `json:"eventId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Status      string    `json:"status"`
	MeetingLink string    `json:"meetingLink,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toAppointmentDTO(a domain.Appointment) appointmentDTO {
	return appointmentDTO{
		ID:          a.ID.String(),
		BuyerID:     a.BuyerID,
		BuyerEmail:  a.BuyerEmail,
		BuyerName:   a.BuyerName,
		SellerID:    a.SellerID,
		SellerEmail: a.SellerEmail,
		SellerName:  a.SellerName,
		EventID:     a.EventID,
		Title:       a.Title,
		Description: a.Description,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		Status:      string(a.Status),
		MeetingLink: a.MeetingLink,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// sellerDTO never carries the refresh token; the service scrubs it and the
// shape here has no field for it either.
type sellerDTO struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name,omitempty"`
	CalendarConnected bool      `json:"calendarConnected"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func toSellerDTO(s domain.Seller) sellerDTO {
	return sellerDTO{
		ID:                s.ID.String(),
		Email:             s.Email,
		Name:              s.Name,
		CalendarConnected: s.CalendarConnected,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

type eventDTO struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Status      string    `json:"status,omitempty"`
	MeetingLink string    `json:"meetingLink,omitempty"`
}

func toEventDTO(e calendar.Event) eventDTO {
	return eventDTO{
		ID:          e.ID,
		Summary:     e.Summary,
		Description: e.Description,
		StartTime:   e.Start,
		EndTime:     e.End,
		Status:      e.Status,
		MeetingLink: e.MeetingLink,
	}
}
