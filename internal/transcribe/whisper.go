package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"
)

// ---------------------------------------------------------------------------
// Whisper transcription.
// /extract_voice normally requires the caller to supply a transcript of the
// reference audio. When an OpenAI key is configured, a missing transcript is
// filled in by Whisper instead of rejecting the request.
// ---------------------------------------------------------------------------

type Whisper struct {
	client *openai.Client
}

func NewWhisper(apiKey string) *Whisper {
	return &Whisper{client: openai.NewClient(apiKey)}
}

// Transcribe sends reference audio to Whisper and returns the transcript.
// filename is only used to hint the container format to the API.
func (w *Whisper) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	log.Printf("[Whisper] Transcribing reference audio (%d bytes)", len(audio))

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audio),
		FilePath: filename,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription failed: %w", err)
	}

	if resp.Text == "" {
		return "", fmt.Errorf("whisper returned empty transcript")
	}

	log.Printf("[Whisper] Transcript: %q", truncate(resp.Text, 80))
	return resp.Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
