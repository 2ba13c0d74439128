package engine

import (
	"context"
	"errors"

	"github.com/softwarewrighter/open-tts/internal/models"
)

// ---------------------------------------------------------------------------
// Engine: common interface over the model backends.
// Both services expose the same REST surface; the mounted engine decides
// how a voice reference is represented (raw audio vs. speaker embedding)
// and how synthesis is delegated to the model runtime.
// ---------------------------------------------------------------------------

// Sentinel errors the HTTP layer maps to 400 responses.
var (
	ErrMissingReference  = errors.New("either name, audio, or embedding is required")
	ErrMissingTranscript = errors.New("transcript required with audio")
)

// Reference is the voice reference material for one synthesis call.
// Reference-audio engines consume WAV+Transcript; embedding engines
// consume Embedding+Shape.
type Reference struct {
	WAV        []byte // normalized 24 kHz mono WAV
	Transcript string
	Embedding  []byte // raw little-endian float32 speaker embedding
	Shape      []int
}

// Request is a single synthesis call.
type Request struct {
	Text     string
	Language string
	Speed    float64
	Ref      Reference
}

// Extraction is the model-specific artifact produced from reference audio.
// Embedding engines return the embedding; reference-audio engines return
// nothing beyond an explanatory note (the normalized audio itself is the
// artifact, and the caller already holds it).
type Extraction struct {
	Embedding []byte
	Shape     []int
	Note      string
}

// Engine is implemented by each model backend.
type Engine interface {
	// ModelID is the stable identifier reported by /health and stored in
	// voice records (e.g. "openvoice_v2").
	ModelID() string

	// Info returns the model card for /info.
	Info() models.ModelInfo

	// ExtractVoice produces the voice artifact from normalized reference
	// audio.
	ExtractVoice(ctx context.Context, wav []byte, transcript string) (*Extraction, error)

	// Synthesize runs one inference call and returns WAV audio.
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}
