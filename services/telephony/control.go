// File: services/telephony/control.go
package telephony

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

// CallControl acts on a live call outside the media stream.
type CallControl interface {
	Hangup(ctx context.Context, callID string) error
	Transfer(ctx context.Context, callID, number string) error
}

// APIError is an error reply from the Twilio REST API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twilio error %d: %s", e.Code, e.Message)
}

// TwilioControl updates calls through the REST API.
type TwilioControl struct {
	accountSID string
	authToken  string
	baseURL    string
	client     *http.Client
	backoff    retry.Backoff
}

func NewTwilioControl(accountSID, authToken string) *TwilioControl {
	return &TwilioControl{
		accountSID: accountSID,
		authToken:  authToken,
		baseURL:    twilioBaseURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		backoff:    retry.WithMaxRetries(3, retry.NewExponential(250*time.Millisecond)),
	}
}

// Hangup ends the call.
func (t *TwilioControl) Hangup(ctx context.Context, callID string) error {
	return t.update(ctx, callID, url.Values{"Status": {"completed"}})
}

// Transfer replaces the call's instructions with a dial to number.
func (t *TwilioControl) Transfer(ctx context.Context, callID, number string) error {
	twiml, err := DialTwiML(number)
	if err != nil {
		return err
	}
	return t.update(ctx, callID, url.Values{"Twiml": {twiml}})
}

func (t *TwilioControl) update(ctx context.Context, callID string, data url.Values) error {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Calls/%s.json", t.baseURL, t.accountSID, callID)
	return retry.Do(ctx, t.backoff, func(ctx context.Context) error {
		err := t.post(ctx, endpoint, data)
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (t *TwilioControl) post(ctx context.Context, endpoint string, data url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil {
			apiErr.Message = string(body)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	return nil
}
