package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers and what the routes need to guard them.
type HandlerBundle struct {
	// Twilio endpoints
	IncomingCallHandler gin.HandlerFunc
	MediaStreamHandler  gin.HandlerFunc

	// Operator endpoints
	GetCallHandler          gin.HandlerFunc
	ReloadDictionaryHandler gin.HandlerFunc

	TwilioAuthToken   string
	PublicBaseURL     string
	AdminAPIKey       string
	MaxRequestsPerMin int
}
