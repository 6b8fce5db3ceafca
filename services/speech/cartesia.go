// File: services/speech/cartesia.go
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	cartesiaBaseURL = "https://api.cartesia.ai"
	cartesiaVersion = "2025-04-16"
	cartesiaModel   = "sonic-2"
)

// StatusError is a non-200 reply from a speech provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("speech provider returned %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether the request is worth repeating.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Cartesia synthesizes telephone audio: raw 8 kHz mu-law, ready for the media stream.
type Cartesia struct {
	apiKey   string
	voiceID  string
	language string
	baseURL  string
	client   *http.Client
}

func NewCartesia(apiKey, voiceID, language string) *Cartesia {
	return &Cartesia{
		apiKey:   apiKey,
		voiceID:  voiceID,
		language: language,
		baseURL:  cartesiaBaseURL,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Voice identifies the voice; cache keys are namespaced by it.
func (c *Cartesia) Voice() string { return c.voiceID }

type cartesiaRequest struct {
	ModelID      string               `json:"model_id"`
	Transcript   string               `json:"transcript"`
	Voice        cartesiaVoice        `json:"voice"`
	OutputFormat cartesiaOutputFormat `json:"output_format"`
	Language     string               `json:"language,omitempty"`
}

type cartesiaVoice struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type cartesiaOutputFormat struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

func (c *Cartesia) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(cartesiaRequest{
		ModelID:      cartesiaModel,
		Transcript:   text,
		Voice:        cartesiaVoice{Mode: "id", ID: c.voiceID},
		OutputFormat: cartesiaOutputFormat{Container: "raw", Encoding: "pcm_mulaw", SampleRate: 8000},
		Language:     c.language,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts/bytes", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Cartesia-Version", cartesiaVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cartesia request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(errBody)}
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return audio, nil
}
