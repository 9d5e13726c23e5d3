// File: handlers/meta.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"receptionist/config"
	appointmentRepo "receptionist/database/repository/appointment"
	calllogRepo "receptionist/database/repository/calllog"
	"receptionist/models"
	"receptionist/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const statsWindow = 100

// MetaHandler serves business info, call logs, and dashboard statistics.
type MetaHandler struct {
	Ledger   appointmentRepo.Repository
	CallLogs calllogRepo.Repository
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewMetaHandler(ledger appointmentRepo.Repository, callLogs calllogRepo.Repository, logger *zap.Logger) *MetaHandler {
	return &MetaHandler{Ledger: ledger, CallLogs: callLogs, Logger: logger, Now: time.Now}
}

// ServicesHandler lists the bookable services.
func (h *MetaHandler) ServicesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": config.Business.Services})
}

// ConfigHandler exposes the business configuration the receptionist speaks
// from.
func (h *MetaHandler) ConfigHandler(c *gin.Context) {
	c.JSON(http.StatusOK, config.Business)
}

// HealthHandler is the liveness probe.
func (h *MetaHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": h.Now().Format(time.RFC3339),
	})
}

// CallsHandler lists recent call logs.
func (h *MetaHandler) CallsHandler(c *gin.Context) {
	limit := int64(defaultListLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			utils.JSONError(c, http.StatusBadRequest, "Invalid limit", raw)
			return
		}
		limit = parsed
	}
	calls, err := h.CallLogs.GetRecent(c.Request.Context(), limit)
	if err != nil {
		h.Logger.Error("Failed to list calls", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Could not fetch call logs", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": calls, "count": len(calls)})
}

// StatsHandler summarizes recent activity for the dashboard.
func (h *MetaHandler) StatsHandler(c *gin.Context) {
	appts, err := h.Ledger.GetAll(c.Request.Context(), statsWindow)
	if err != nil {
		h.Logger.Error("Failed to load appointments for stats", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Could not compute stats", "")
		return
	}
	calls, err := h.CallLogs.GetRecent(c.Request.Context(), statsWindow)
	if err != nil {
		h.Logger.Error("Failed to load calls for stats", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Could not compute stats", "")
		return
	}

	today := h.Now().Format("2006-01-02")
	todayCount := 0
	byStatus := map[string]int{
		models.StatusScheduled: 0,
		models.StatusConfirmed: 0,
		models.StatusCancelled: 0,
		models.StatusCompleted: 0,
		models.StatusNoShow:    0,
	}
	for _, a := range appts {
		if a.AppointmentDate == today {
			todayCount++
		}
		if _, ok := byStatus[a.Status]; ok {
			byStatus[a.Status]++
		}
	}
	completedCalls := 0
	for _, call := range calls {
		if call.Status == models.CallCompleted {
			completedCalls++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_appointments":     len(appts),
		"today_appointments":     todayCount,
		"total_calls":            len(calls),
		"completed_calls":        completedCalls,
		"appointments_by_status": byStatus,
	})
}
