package rest

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bookable/backend/internal/domain"
	"bookable/backend/internal/service/scheduling"
)

// parseTimeParam accepts RFC 3339 timestamps and bare dates. A bare date
// means midnight UTC of that day.
func parseTimeParam(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func intQuery(c *gin.Context, key string) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s *Server) getAvailability(c *gin.Context) {
	log := s.log.With(slog.String("handler", "getAvailability"))

	startDate, okStart := parseTimeParam(c.Query("startDate"))
	endDate, okEnd := parseTimeParam(c.Query("endDate"))
	if c.Query("startDate") == "" || c.Query("endDate") == "" || !okStart || !okEnd {
		log.Warn("invalid request", slog.String("reason", "bad_dates"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate and endDate must be RFC 3339 timestamps or YYYY-MM-DD dates"})
		return
	}
	duration, ok := intQuery(c, "duration")
	if !ok {
		log.Warn("invalid request", slog.String("reason", "bad_duration"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration must be an integer number of minutes"})
		return
	}
	workdayStart, okWS := intQuery(c, "workdayStart")
	workdayEnd, okWE := intQuery(c, "workdayEnd")
	if !okWS || !okWE {
		log.Warn("invalid request", slog.String("reason", "bad_workday_hours"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "workdayStart and workdayEnd must be integer hours"})
		return
	}

	avail, err := s.svc.GetAvailability(c.Request.Context(), scheduling.AvailabilityQuery{
		SellerEmail:         c.Query("sellerEmail"),
		RangeStart:          startDate,
		RangeEnd:            endDate,
		SlotDurationMinutes: duration,
		WorkdayStartHour:    workdayStart,
		WorkdayEndHour:      workdayEnd,
	})
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Debug("availability computed",
		slog.String("seller_email", c.Query("sellerEmail")),
		slog.Int("slots", len(avail.Slots)),
		slog.Int("busy", len(avail.Busy)),
	)
	c.JSON(http.StatusOK, toAvailabilityResponse(avail.Slots, avail.Busy))
}

func (s *Server) book(c *gin.Context) {
	log := s.log.With(slog.String("handler", "book"))

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "sellerEmail, title, startTime and endTime are required"})
		return
	}
	actor := actorFrom(c)

	result, err := s.svc.Book(c.Request.Context(), scheduling.BookInput{
		SellerEmail: req.SellerEmail,
		BuyerID:     actor.ID,
		BuyerEmail:  actor.Email,
		BuyerName:   actor.Name,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("appointment booked",
		slog.String("appointment_id", result.Appointment.ID.String()),
		slog.String("event_id", result.EventID),
		slog.String("seller_email", req.SellerEmail),
	)
	c.JSON(http.StatusCreated, bookResponse{
		Appointment: toAppointmentDTO(result.Appointment),
		EventID:     result.EventID,
		MeetingLink: result.MeetingLink,
	})
}

func (s *Server) connectCalendar(c *gin.Context) {
	log := s.log.With(slog.String("handler", "connectCalendar"))

	// The connection identity comes from the verified token only; a body
	// must not be able to point the stored credential at another seller.
	actor := actorFrom(c)
	if actor.Role != domain.RoleSeller {
		log.Warn("invalid request", slog.String("reason", "not_a_seller"), slog.String("role", string(actor.Role)))
		c.JSON(http.StatusForbidden, gin.H{"error": "only sellers can connect calendars"})
		return
	}

	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
		return
	}

	seller, err := s.svc.ConnectCalendar(c.Request.Context(), actor.Email, actor.Name, req.RefreshToken)
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("calendar connected", slog.String("seller_email", seller.Email))
	c.JSON(http.StatusOK, toSellerDTO(seller))
}

func (s *Server) disconnectCalendar(c *gin.Context) {
	log := s.log.With(slog.String("handler", "disconnectCalendar"))

	actor := actorFrom(c)
	if actor.Role != domain.RoleSeller {
		log.Warn("invalid request", slog.String("reason", "not_a_seller"), slog.String("role", string(actor.Role)))
		c.JSON(http.StatusForbidden, gin.H{"error": "only sellers can connect calendars"})
		return
	}
	if err := s.svc.DisconnectCalendar(c.Request.Context(), actor.Email); err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("calendar disconnected", slog.String("seller_email", actor.Email))
	c.Status(http.StatusNoContent)
}

func (s *Server) listEvents(c *gin.Context) {
	log := s.log.With(slog.String("handler", "listEvents"))

	sellerEmail := c.Query("sellerEmail")
	if sellerEmail == "" {
		sellerEmail = actorFrom(c).Email
	}
	maxResults, ok := intQuery(c, "maxResults")
	if !ok {
		log.Warn("invalid request", slog.String("reason", "bad_max_results"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "maxResults must be an integer"})
		return
	}

	events, err := s.svc.UpcomingEvents(c.Request.Context(), sellerEmail, maxResults)
	if err != nil {
		writeError(c, log, err)
		return
	}

	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toEventDTO(e))
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

func (s *Server) updateEvent(c *gin.Context) {
	log := s.log.With(slog.String("handler", "updateEvent"), slog.String("event_id", c.Param("eventId")))

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON"})
		return
	}

	appt, err := s.svc.Reschedule(c.Request.Context(), actorFrom(c), scheduling.RescheduleInput{
		EventID:     c.Param("eventId"),
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("event updated", slog.String("appointment_id", appt.ID.String()))
	c.JSON(http.StatusOK, toAppointmentDTO(appt))
}

func (s *Server) deleteEvent(c *gin.Context) {
	log := s.log.With(slog.String("handler", "deleteEvent"), slog.String("event_id", c.Param("eventId")))

	if err := s.svc.DeleteEvent(c.Request.Context(), actorFrom(c), c.Param("eventId")); err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("event deleted")
	c.Status(http.StatusNoContent)
}
