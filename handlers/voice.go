package handlers

import (
	"context"
	"errors"
	"net/http"

	catalogRepo "phonedesk/database/repository/catalog"
	"phonedesk/models"
	"phonedesk/services/telephony"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BusinessResolver finds the business answering a dialed number.
type BusinessResolver interface {
	BusinessByPhone(ctx context.Context, phone string) (*models.Business, error)
}

// VoiceHandler answers Twilio's incoming-call webhook.
type VoiceHandler struct {
	Businesses    BusinessResolver
	PublicBaseURL string
	Logger        *zap.Logger
}

func NewVoiceHandler(businesses BusinessResolver, publicBaseURL string, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{
		Businesses:    businesses,
		PublicBaseURL: publicBaseURL,
		Logger:        logger,
	}
}

// IncomingCallHandler connects the call to the media stream of the business
// that owns the dialed number.
func (h *VoiceHandler) IncomingCallHandler(c *gin.Context) {
	to := c.PostForm("To")
	from := c.PostForm("From")
	callID := c.PostForm("CallSid")

	b, err := h.Businesses.BusinessByPhone(c.Request.Context(), to)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrBusinessNotFound) {
			h.Logger.Warn("Call for unknown number", zap.String("to", to), zap.String("callID", callID))
		} else {
			h.Logger.Error("Failed to resolve business", zap.String("to", to), zap.Error(err))
		}
		c.Data(http.StatusOK, "application/xml", []byte(telephony.HangupTwiML()))
		return
	}

	twiml, err := telephony.StreamTwiML(
		telephony.MediaURL(h.PublicBaseURL, "/twilio/media"),
		[2]string{"businessId", b.ID},
		[2]string{"from", from},
	)
	if err != nil {
		h.Logger.Error("Failed to render TwiML", zap.Error(err))
		c.Data(http.StatusOK, "application/xml", []byte(telephony.HangupTwiML()))
		return
	}
	h.Logger.Info("Incoming call", zap.String("callID", callID), zap.String("businessID", b.ID))
	c.Data(http.StatusOK, "application/xml", []byte(twiml))
}
