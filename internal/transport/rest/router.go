package rest

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	JWTSecret          string
	CORSAllowedOrigins []string
}

// NewRouter wires the HTTP surface: an unauthenticated health probe and the
// authenticated /api group.
func NewRouter(s *Server, cfg RouterConfig, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", RequireAuth(cfg.JWTSecret, log))
	{
		api.GET("/calendar/availability", s.getAvailability)
		api.POST("/calendar/book", s.book)
		api.POST("/calendar/connect", s.connectCalendar)
		api.DELETE("/calendar/connect", s.disconnectCalendar)
		api.GET("/calendar/events", s.listEvents)
		api.PATCH("/calendar/events/:eventId", s.updateEvent)
		api.DELETE("/calendar/events/:eventId", s.deleteEvent)

		api.GET("/appointments", s.listAppointments)
		api.GET("/appointments/:id", s.getAppointment)
		api.PATCH("/appointments/:id", s.updateAppointmentStatus)
		api.DELETE("/appointments/:id", s.deleteAppointment)

		api.GET("/sellers", s.listSellers)
		api.GET("/sellers/:id", s.getSeller)
	}

	return r
}
