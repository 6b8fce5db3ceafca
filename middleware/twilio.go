package middleware

import (
	"net/http"
	"strings"

	"phonedesk/services/telephony"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TwilioSignatureMiddleware rejects webhooks not signed with the account's
// auth token. The signed URL is rebuilt from the public base URL because the
// service usually sits behind a proxy.
func TwilioSignatureMiddleware(authToken, publicBaseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authToken == "" {
			c.Next()
			return
		}
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form body"})
			return
		}
		fullURL := strings.TrimRight(publicBaseURL, "/") + c.Request.URL.RequestURI()
		signature := c.GetHeader("X-Twilio-Signature")
		if !telephony.ValidSignature(authToken, fullURL, c.Request.PostForm, signature) {
			zap.L().Warn("Rejected unsigned webhook", zap.String("path", c.Request.URL.Path), zap.String("ip", clientIP(c)))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
			return
		}
		c.Next()
	}
}
