// File: handlers/appointment.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	appointmentRepo "receptionist/database/repository/appointment"
	"receptionist/models"
	"receptionist/services/voice"
	"receptionist/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultListLimit = 50

// AppointmentHandler serves the appointment management API.
type AppointmentHandler struct {
	Voice  *voice.Service
	Ledger appointmentRepo.Repository
	Logger *zap.Logger
}

func NewAppointmentHandler(svc *voice.Service, ledger appointmentRepo.Repository, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Voice: svc, Ledger: ledger, Logger: logger}
}

// CreateAppointmentHandler books an appointment through the same validation
// and conflict path as a spoken booking.
func (h *AppointmentHandler) CreateAppointmentHandler(c *gin.Context) {
	var input models.AppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid appointment request", err.Error())
		return
	}

	id, err := h.Voice.CreateAppointmentDirect(c.Request.Context(), input)
	if errors.Is(err, appointmentRepo.ErrSlotTaken) {
		utils.JSONError(c, http.StatusConflict, "Time slot is already booked", "")
		return
	}
	if errors.Is(err, voice.ErrSlotUnavailable) {
		utils.JSONError(c, http.StatusConflict, "Requested time is not available", "")
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Could not create appointment", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ListAppointmentsHandler lists appointments, optionally filtered by date.
func (h *AppointmentHandler) ListAppointmentsHandler(c *gin.Context) {
	if date := c.Query("date"); date != "" {
		appts, err := h.Ledger.GetForDate(c.Request.Context(), date)
		if err != nil {
			h.Logger.Error("Failed to list appointments", zap.String("date", date), zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Could not fetch appointments", "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"appointments": appts, "count": len(appts)})
		return
	}

	limit := int64(defaultListLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			utils.JSONError(c, http.StatusBadRequest, "Invalid limit", raw)
			return
		}
		limit = parsed
	}
	appts, err := h.Ledger.GetAll(c.Request.Context(), limit)
	if err != nil {
		h.Logger.Error("Failed to list appointments", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Could not fetch appointments", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts, "count": len(appts)})
}

// AvailabilityHandler answers slot queries: ?date=YYYY-MM-DD&service=Name.
func (h *AppointmentHandler) AvailabilityHandler(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "date query parameter is required", "")
		return
	}
	result, err := h.Voice.CheckAvailability(c.Request.Context(), date, c.Query("service"))
	if err != nil {
		h.Logger.Error("Availability query failed", zap.String("date", date), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Could not check availability", "")
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateStatusHandler moves an appointment along the status graph.
func (h *AppointmentHandler) UpdateStatusHandler(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid status request", err.Error())
		return
	}

	err := h.Ledger.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	switch {
	case errors.Is(err, appointmentRepo.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Appointment not found", "")
	case err != nil:
		utils.JSONError(c, http.StatusUnprocessableEntity, "Status change not allowed", err.Error())
	default:
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": body.Status})
	}
}

// CallerAppointmentsHandler lists a caller's appointments, newest first.
func (h *AppointmentHandler) CallerAppointmentsHandler(c *gin.Context) {
	phone := c.Param("phone")
	appts, err := h.Ledger.GetByCallerPhone(c.Request.Context(), phone)
	if err != nil {
		h.Logger.Error("Failed to list caller appointments", zap.String("phone", phone), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Could not fetch appointments", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts, "count": len(appts)})
}
