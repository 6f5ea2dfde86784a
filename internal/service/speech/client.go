// Package speech wraps the hosted speech-to-text and text-to-speech
// endpoints. The voice core only ever sees the text contracts; audio
// bytes pass through opaque.
package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	domrepo "WhaleWhisperer/internal/domain/repository"
	"WhaleWhisperer/pkg/config"
	xhttp "WhaleWhisperer/pkg/http"
)

// Client talks to the hosted STT/TTS service.
type Client struct {
	baseURL string
	apiKey  string
	voice   string
	speed   float64
	client  *xhttp.Client
}

// New builds the speech client from config.
func New(cfg *config.Config) *Client {
	timeout := cfg.Speech.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.Speech.BaseURL,
		apiKey:  cfg.Speech.APIKey,
		voice:   cfg.Speech.Voice,
		speed:   cfg.Speech.Speed,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type sttRequest struct {
	Audio string `json:"audio"`
}

type sttResponse struct {
	Text string `json:"text"`
}

// Transcribe sends base64 audio and returns the transcript. An empty
// transcript is a valid result, not an error.
func (c *Client) Transcribe(ctx context.Context, audioB64 string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("speech client not configured")
	}
	var res sttResponse
	if err := c.postJSON(ctx, "/stt", sttRequest{Audio: audioB64}, &res); err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return res.Text, nil
}

type ttsRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"`
}

type ttsResponse struct {
	AudioContent string `json:"audioContent"` // base64
}

// Synthesize renders text as audio bytes.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("speech client not configured")
	}
	var res ttsResponse
	if err := c.postJSON(ctx, "/tts", ttsRequest{Text: text, Voice: c.voice, Speed: c.speed}, &res); err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(res.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	return audio, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, dest interface{}) error {
	headers := map[string]string{"Content-Type": "application/json"}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + path,
		Headers: headers,
		Body:    payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

var (
	_ domrepo.Transcriber = (*Client)(nil)
	_ domrepo.Synthesizer = (*Client)(nil)
)
