package routes

import (
	"net/http"
	"time"

	"phonedesk/handlers"
	"phonedesk/middleware"
	"phonedesk/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterTwilioRoutes registers the telephony webhooks.
func RegisterTwilioRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	twilio := r.Group("/twilio")
	{
		twilio.POST("/voice", middleware.TwilioSignatureMiddleware(hb.TwilioAuthToken, hb.PublicBaseURL), hb.IncomingCallHandler)
		twilio.GET("/media", hb.MediaStreamHandler)
	}
}

// RegisterAdminRoutes registers operator endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.Use(middleware.RateLimitMiddleware(hb.MaxRequestsPerMin))
		api.Use(middleware.AdminKeyMiddleware(hb.AdminAPIKey))
		api.POST("/dictionary/reload", hb.ReloadDictionaryHandler)
		api.GET("/calls/:id", hb.GetCallHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint backed by the last
// dependency ping.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		h := utils.GetHealthStatus()
		status := http.StatusOK
		state := "ok"
		if !h.Healthy() {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": h})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterTwilioRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
