// File: handlers/chat.go
package handlers

import (
	"net/http"

	"receptionist/models"
	"receptionist/services/receptionist"
	"receptionist/utils"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves the web chat endpoint.
type ChatHandler struct {
	Receptionist *receptionist.Service
}

func NewChatHandler(svc *receptionist.Service) *ChatHandler {
	return &ChatHandler{Receptionist: svc}
}

func (h *ChatHandler) ChatHandler(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid chat request", err.Error())
		return
	}
	resp := h.Receptionist.HandleMessage(c.Request.Context(), req.Message, req.History)
	c.JSON(http.StatusOK, resp)
}
