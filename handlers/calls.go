package handlers

import (
	"net/http"

	"phonedesk/services/session"

	"github.com/gin-gonic/gin"
)

// CallsHandler exposes live call sessions for inspection.
type CallsHandler struct {
	Sessions session.Store
}

func NewCallsHandler(sessions session.Store) *CallsHandler {
	return &CallsHandler{Sessions: sessions}
}

func (h *CallsHandler) GetCallHandler(c *gin.Context) {
	callID := c.Param("id")
	s, err := h.Sessions.Get(c.Request.Context(), callID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// Get hands out a fresh session for unknown ids; only saved ones exist.
	if s.Version == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": s})
}
