package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"phonedesk/services/telephony"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() { gin.SetMode(gin.TestMode) }

func router(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.POST("/twilio/voice", mw, func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/api/x", mw, func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestTwilioSignature(t *testing.T) {
	const token = "secret"
	r := router(TwilioSignatureMiddleware(token, "https://desk.example.com/"))
	form := url.Values{"CallSid": {"CA1"}, "To": {"+31201234567"}}

	post := func(sig string) int {
		req := httptest.NewRequest(http.MethodPost, "/twilio/voice", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Twilio-Signature", sig)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	valid := telephony.Signature(token, "https://desk.example.com/twilio/voice", form)
	assert.Equal(t, http.StatusOK, post(valid))
	assert.Equal(t, http.StatusForbidden, post("bogus"))
	assert.Equal(t, http.StatusForbidden, post(""))
}

func TestTwilioSignatureDisabledWithoutToken(t *testing.T) {
	r := router(TwilioSignatureMiddleware("", "https://desk.example.com"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/twilio/voice", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminKey(t *testing.T) {
	cases := []struct {
		key, header string
		want        int
	}{
		{"k3y", "Bearer k3y", http.StatusOK},
		{"k3y", "Bearer nope", http.StatusUnauthorized},
		{"k3y", "", http.StatusUnauthorized},
		{"", "Bearer ", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		r := router(AdminKeyMiddleware(tc.key))
		req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.want, w.Code, tc.header)
	}
}

func TestRateLimitPerIP(t *testing.T) {
	r := router(RateLimitMiddleware(2))
	get := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, get("1.2.3.4"))
	assert.Equal(t, http.StatusOK, get("1.2.3.4"))
	assert.Equal(t, http.StatusTooManyRequests, get("1.2.3.4"))
	assert.Equal(t, http.StatusOK, get("5.6.7.8"))
}
