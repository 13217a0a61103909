package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookable/backend/internal/calendar"
	"bookable/backend/internal/service/scheduling"
	"bookable/backend/internal/store"
)

// writeError maps service errors onto HTTP responses. The not-connected
// case gets its own code so the frontend can show a "connect your calendar"
// prompt instead of a plain not-found page.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	var vErr *scheduling.ValidationError
	if errors.As(err, &vErr) {
		log.Warn("invalid request", slog.Any("err", err))
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
		return
	}
	if errors.Is(err, calendar.ErrNotConnected) {
		log.Info("calendar not connected")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "calendar not connected for this seller",
			"code":  "CALENDAR_NOT_CONNECTED",
		})
		return
	}
	if errors.Is(err, store.ErrConflict) {
		log.Info("conflict")
		c.JSON(http.StatusConflict, gin.H{"error": "this time slot was just booked"})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		log.Info("not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if errors.Is(err, scheduling.ErrForbidden) {
		log.Warn("forbidden")
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a party to this appointment"})
		return
	}
	var pErr *calendar.ProviderError
	if errors.As(err, &pErr) {
		log.Error("calendar provider failed", slog.Any("err", err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "calendar provider is unavailable"})
		return
	}
	var persistErr *scheduling.PersistenceError
	if errors.As(err, &persistErr) {
		log.Error("persistence failed after event creation", slog.Any("err", err), slog.String("event_id", persistErr.EventID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking could not be saved"})
		return
	}
	log.Error("request failed", slog.Any("err", err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
