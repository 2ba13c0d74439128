package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/softwarewrighter/open-tts/internal/models"
)

// ---------------------------------------------------------------------------
// Typed HTTP client for the voice-cloning services.
// Used by the opentts CLI; also convenient for programmatic access.
// ---------------------------------------------------------------------------

// ErrVoiceNotFound is returned when the server reports an unknown voice.
var ErrVoiceNotFound = errors.New("voice not found")

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New creates a client for a service at baseURL (e.g. "http://localhost:9280").
// apiKey may be empty when the server runs without auth.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		// Synthesis on CPU can take a while; keep the timeout generous.
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	var out models.HealthResponse
	if err := c.getJSON(ctx, "/health", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Info calls GET /info.
func (c *Client) Info(ctx context.Context) (*models.ModelInfo, error) {
	var out models.ModelInfo
	if err := c.getJSON(ctx, "/info", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExtractVoice uploads reference audio for voice extraction. transcript may
// be empty when the server is configured to auto-transcribe; name may be
// empty to extract without persisting.
func (c *Client) ExtractVoice(ctx context.Context, audioPath, transcript, name string) (*models.ExtractResponse, error) {
	audioData, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}
	if transcript != "" {
		if err := form.WriteField("transcript", transcript); err != nil {
			return nil, fmt.Errorf("failed to build multipart form: %w", err)
		}
	}
	if name != "" {
		if err := form.WriteField("name", name); err != nil {
			return nil, fmt.Errorf("failed to build multipart form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/extract_voice", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract_voice request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var out models.ExtractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid extract_voice response: %w", err)
	}
	return &out, nil
}

// Synthesize calls POST /synthesize and returns the WAV audio.
func (c *Client) Synthesize(ctx context.Context, sreq models.SynthesizeRequest) ([]byte, error) {
	payload, err := json.Marshal(sreq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal synthesize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/synthesize", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesize request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrVoiceNotFound, sreq.Name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}
	if len(audioData) == 0 {
		return nil, fmt.Errorf("server returned empty audio")
	}
	return audioData, nil
}

// ListVoices calls GET /voices.
func (c *Client) ListVoices(ctx context.Context) ([]models.VoiceInfo, error) {
	var out models.VoicesResponse
	if err := c.getJSON(ctx, "/voices", &out); err != nil {
		return nil, err
	}
	return out.Voices, nil
}

// DeleteVoice calls DELETE /voices/{name}.
func (c *Client) DeleteVoice(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseURL+"/voices/"+name, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrVoiceNotFound, name)
	}
	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}

// statusError extracts the server's error message when the body carries one.
func (c *Client) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var e models.ErrorResponse
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, e.Error)
	}
	return fmt.Errorf("server returned status %d", resp.StatusCode)
}
