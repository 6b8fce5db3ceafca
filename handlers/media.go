package handlers

import (
	"context"

	"phonedesk/services/telephony"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// CallServer runs a call over a media stream until it ends.
type CallServer interface {
	Serve(ctx context.Context, stream telephony.MediaStream) error
}

// MediaHandler upgrades Twilio's media connection and hands it to the engine.
type MediaHandler struct {
	Calls    CallServer
	Upgrader websocket.Upgrader
	Logger   *zap.Logger
}

func NewMediaHandler(calls CallServer, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{
		Calls: calls,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		Logger: logger,
	}
}

// MediaStreamHandler blocks for the lifetime of the call.
func (h *MediaHandler) MediaStreamHandler(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("Media upgrade failed", zap.Error(err))
		return
	}
	stream := telephony.NewTwilioStream(conn, h.Logger)
	if err := h.Calls.Serve(c.Request.Context(), stream); err != nil {
		h.Logger.Error("Call ended with error", zap.Error(err))
	}
}
