package routes

import (
	"net/http"
	"time"

	"receptionist/handlers"
	"receptionist/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the handlers the router needs.
type HandlerBundle struct {
	Voice        *handlers.VoiceHandler
	Chat         *handlers.ChatHandler
	Appointments *handlers.AppointmentHandler
	Meta         *handlers.MetaHandler
}

// RegisterVoiceRoutes registers the telephony webhooks. These are called by
// the telephony provider, not by browsers.
func RegisterVoiceRoutes(r *gin.Engine, hb *HandlerBundle) {
	voiceGroup := r.Group("/voice")
	{
		voiceGroup.POST("/incoming", hb.Voice.IncomingCallHandler)
		voiceGroup.POST("/respond", hb.Voice.SpeechHandler)
		voiceGroup.POST("/no-input", hb.Voice.NoInputHandler)
		voiceGroup.POST("/status", hb.Voice.StatusHandler)
	}
}

// RegisterAPIRoutes registers the chat and appointment API.
func RegisterAPIRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api")
	{
		api.POST("/chat", hb.Chat.ChatHandler)
		api.GET("/services", hb.Meta.ServicesHandler)
		api.GET("/config", hb.Meta.ConfigHandler)

		api.POST("/appointments", hb.Appointments.CreateAppointmentHandler)
		api.GET("/appointments", hb.Appointments.ListAppointmentsHandler)
		api.GET("/appointments/availability", hb.Appointments.AvailabilityHandler)
		api.GET("/callers/:phone/appointments", hb.Appointments.CallerAppointmentsHandler)

		// Admin-only operations.
		admin := api.Group("")
		admin.Use(middleware.JWTAuthAdminMiddleware())
		admin.PATCH("/appointments/:id/status", hb.Appointments.UpdateStatusHandler)
		admin.GET("/calls", hb.Meta.CallsHandler)
		admin.GET("/stats", hb.Meta.StatsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *HandlerBundle) {
	r.GET("/health", hb.Meta.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterVoiceRoutes(r, hb)
	RegisterAPIRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
