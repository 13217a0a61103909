package rest

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bookable/backend/internal/domain"
)

func (s *Server) listAppointments(c *gin.Context) {
	log := s.log.With(slog.String("handler", "listAppointments"))

	upcomingOnly := c.Query("upcoming") == "true"
	appts, err := s.svc.ListAppointments(c.Request.Context(), actorFrom(c), upcomingOnly)
	if err != nil {
		writeError(c, log, err)
		return
	}

	out := make([]appointmentDTO, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentDTO(a))
	}
	log.Debug("appointments listed", slog.Int("count", len(out)), slog.Bool("upcoming_only", upcomingOnly))
	c.JSON(http.StatusOK, gin.H{"appointments": out})
}

func (s *Server) getAppointment(c *gin.Context) {
	log := s.log.With(slog.String("handler", "getAppointment"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a UUID"})
		return
	}

	appt, err := s.svc.GetAppointment(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, toAppointmentDTO(appt))
}

func (s *Server) updateAppointmentStatus(c *gin.Context) {
	log := s.log.With(slog.String("handler", "updateAppointmentStatus"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a UUID"})
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	appt, err := s.svc.UpdateStatus(c.Request.Context(), actorFrom(c), id, domain.AppointmentStatus(req.Status))
	if err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("appointment status updated",
		slog.String("appointment_id", id.String()),
		slog.String("status", req.Status),
	)
	c.JSON(http.StatusOK, toAppointmentDTO(appt))
}

func (s *Server) deleteAppointment(c *gin.Context) {
	log := s.log.With(slog.String("handler", "deleteAppointment"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a UUID"})
		return
	}

	if err := s.svc.DeleteAppointment(c.Request.Context(), actorFrom(c), id); err != nil {
		writeError(c, log, err)
		return
	}

	log.Info("appointment deleted", slog.String("appointment_id", id.String()))
	c.Status(http.StatusNoContent)
}

func (s *Server) listSellers(c *gin.Context) {
	log := s.log.With(slog.String("handler", "listSellers"))

	sellers, err := s.svc.ListSellers(c.Request.Context())
	if err != nil {
		writeError(c, log, err)
		return
	}

	out := make([]sellerDTO, 0, len(sellers))
	for _, seller := range sellers {
		out = append(out, toSellerDTO(seller))
	}
	c.JSON(http.StatusOK, gin.H{"sellers": out})
}

func (s *Server) getSeller(c *gin.Context) {
	log := s.log.With(slog.String("handler", "getSeller"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a UUID"})
		return
	}

	seller, err := s.svc.GetSeller(c.Request.Context(), id)
	if err != nil {
		writeError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, toSellerDTO(seller))
}
