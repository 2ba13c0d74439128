package api

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/semaphore"

	"github.com/softwarewrighter/open-tts/internal/audio"
	"github.com/softwarewrighter/open-tts/internal/cache"
	"github.com/softwarewrighter/open-tts/internal/engine"
	"github.com/softwarewrighter/open-tts/internal/models"
	"github.com/softwarewrighter/open-tts/internal/voicestore"
)

// Transcriber fills in a missing transcript on /extract_voice.
// Implemented by the Whisper client; nil disables auto-transcription.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Options carries the optional handler collaborators.
type Options struct {
	Cache         *cache.Cache // nil = caching disabled
	Transcriber   Transcriber  // nil = transcript stays required
	Device        engine.Device
	MaxConcurrent int64 // inference gate permits (0 = 1)
}

type Handler struct {
	engine      engine.Engine
	store       *voicestore.Store
	cache       *cache.Cache
	transcriber Transcriber
	device      engine.Device
	sem         *semaphore.Weighted
}

func NewHandler(eng engine.Engine, store *voicestore.Store, opts Options) *Handler {
	permits := opts.MaxConcurrent
	if permits < 1 {
		permits = 1
	}
	return &Handler{
		engine:      eng,
		store:       store,
		cache:       opts.Cache,
		transcriber: opts.Transcriber,
		device:      opts.Device,
		sem:         semaphore.NewWeighted(permits),
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	var gpu *string
	if h.device.GPU != "" {
		gpu = &h.device.GPU
	}

	respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:        "healthy",
		Model:         h.engine.ModelID(),
		CUDAAvailable: h.device.CUDAAvailable,
		GPU:           gpu,
		Device:        h.device.Name,
	})
}

// Info handles GET /info
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Info())
}

const maxUploadBytes = 32 << 20

// ExtractVoice handles POST /extract_voice
//
// Multipart form fields: audio (WAV file, required), transcript (required
// unless auto-transcription is configured), name (optional; when present
// the voice is persisted for reuse).
func (h *Handler) ExtractVoice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("audio")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read audio file")
		return
	}

	transcript := r.FormValue("transcript")
	name := r.FormValue("name")

	if transcript == "" && h.transcriber != nil {
		transcript, err = h.transcriber.Transcribe(r.Context(), raw, header.Filename)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if transcript == "" {
		respondError(w, http.StatusBadRequest, "Transcript is required")
		return
	}

	if name != "" {
		if err := voicestore.ValidateName(name); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	// Normalize to the model rate before anything touches the audio.
	normalized, duration, err := audio.Normalize(raw, audio.ModelSampleRate)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid audio file: %v", err))
		return
	}

	if err := h.sem.Acquire(r.Context(), 1); err != nil {
		respondError(w, http.StatusServiceUnavailable, "Server busy")
		return
	}
	extraction, err := h.engine.ExtractVoice(r.Context(), normalized, transcript)
	h.sem.Release(1)
	if err != nil {
		log.Printf("[API] Voice extraction failed: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := models.ExtractResponse{
		Success:    true,
		Transcript: transcript,
	}

	var rec *voicestore.Record
	var wavToSave []byte

	if len(extraction.Embedding) > 0 {
		embB64 := base64.StdEncoding.EncodeToString(extraction.Embedding)
		resp.Embedding = embB64
		resp.EmbeddingShape = extraction.Shape

		rec = &voicestore.Record{
			Transcript: transcript,
			Model:      h.engine.ModelID(),
			Embedding:  embB64,
			Shape:      extraction.Shape,
			CreatedAt:  time.Now().UTC(),
		}
	} else {
		audioB64 := base64.StdEncoding.EncodeToString(normalized)
		resp.VoiceID = voiceID(audioB64, transcript)
		resp.Duration = duration
		resp.Note = extraction.Note
		resp.Audio = audioB64

		rec = &voicestore.Record{
			Transcript: transcript,
			Model:      h.engine.ModelID(),
			AudioB64:   audioB64,
			SampleRate: audio.ModelSampleRate,
			Duration:   duration,
			CreatedAt:  time.Now().UTC(),
		}
		wavToSave = normalized
	}

	if name != "" {
		if err := h.store.Save(name, rec, wavToSave); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to save voice")
			return
		}
		resp.SavedAs = name
		log.Printf("[API] Voice saved as: %s", name)
	}

	respondJSON(w, http.StatusOK, resp)
}

// Synthesize handles POST /synthesize
//
// JSON body: text plus one voice reference: a saved voice name, inline
// base64 audio with its transcript, or a base64 speaker embedding. Returns
// the synthesized speech as a WAV attachment.
func (h *Handler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req models.SynthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "JSON body required")
		return
	}

	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "Text is required")
		return
	}

	speed := req.Speed
	if speed == 0 {
		speed = 1.0
	}

	ref, status, err := h.resolveReference(&req)
	if err != nil {
		respondError(w, status, err.Error())
		return
	}

	// Cached results only apply to saved voices: inline references have no
	// stable identity to key on.
	var cacheKey string
	if h.cache != nil && req.Name != "" {
		cacheKey = cache.Key(h.engine.ModelID(), req.Name, req.Text, req.Language, speed)
		if data, err := h.cache.Get(r.Context(), cacheKey); err != nil {
			log.Printf("[API] Cache lookup failed: %v", err)
		} else if data != nil {
			serveWAV(w, data)
			return
		}
	}

	if err := h.sem.Acquire(r.Context(), 1); err != nil {
		respondError(w, http.StatusServiceUnavailable, "Server busy")
		return
	}
	audioData, err := h.engine.Synthesize(r.Context(), engine.Request{
		Text:     req.Text,
		Language: req.Language,
		Speed:    speed,
		Ref:      *ref,
	})
	h.sem.Release(1)

	if err != nil {
		if errors.Is(err, engine.ErrMissingReference) || errors.Is(err, engine.ErrMissingTranscript) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[API] Synthesis failed: %v", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if cacheKey != "" {
		if err := h.cache.Set(r.Context(), cacheKey, audioData); err != nil {
			log.Printf("[API] Cache store failed: %v", err)
		}
	}

	serveWAV(w, audioData)
}

// resolveReference turns the request's voice reference into engine material.
// The returned status is the HTTP code to use when err is non-nil.
func (h *Handler) resolveReference(req *models.SynthesizeRequest) (*engine.Reference, int, error) {
	switch {
	case req.Name != "":
		rec, err := h.store.Load(req.Name)
		if err != nil {
			if errors.Is(err, voicestore.ErrNotFound) {
				return nil, http.StatusNotFound, fmt.Errorf("Voice '%s' not found", req.Name)
			}
			if errors.Is(err, voicestore.ErrInvalidName) {
				return nil, http.StatusBadRequest, err
			}
			return nil, http.StatusInternalServerError, err
		}
		return h.referenceFromRecord(req.Name, rec)

	case req.Audio != "":
		wav, err := base64.StdEncoding.DecodeString(req.Audio)
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("Invalid base64 audio")
		}
		return &engine.Reference{WAV: wav, Transcript: req.Transcript}, 0, nil

	case req.Embedding != "":
		emb, err := base64.StdEncoding.DecodeString(req.Embedding)
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("Invalid base64 embedding")
		}
		shape := req.Shape
		if len(shape) == 0 {
			shape = []int{1, len(emb) / 4}
		}
		return &engine.Reference{Embedding: emb, Shape: shape}, 0, nil

	default:
		return nil, http.StatusBadRequest, engine.ErrMissingReference
	}
}

func (h *Handler) referenceFromRecord(name string, rec *voicestore.Record) (*engine.Reference, int, error) {
	if rec.Embedding != "" {
		emb, err := base64.StdEncoding.DecodeString(rec.Embedding)
		if err != nil {
			return nil, http.StatusInternalServerError, fmt.Errorf("stored embedding is corrupt: %w", err)
		}
		return &engine.Reference{Embedding: emb, Shape: rec.Shape}, 0, nil
	}

	ref := &engine.Reference{Transcript: rec.Transcript}

	// Prefer the raw audio file beside the record; fall back to the
	// base64 copy inside it.
	if p, err := h.store.WAVPath(name); err == nil {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, http.StatusInternalServerError, fmt.Errorf("failed to read voice audio: %w", err)
		}
		ref.WAV = data
	} else if rec.AudioB64 != "" {
		data, err := base64.StdEncoding.DecodeString(rec.AudioB64)
		if err != nil {
			return nil, http.StatusInternalServerError, fmt.Errorf("stored audio is corrupt: %w", err)
		}
		ref.WAV = data
	}

	return ref, 0, nil
}

// ListVoices handles GET /voices
func (h *Handler) ListVoices(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list voices")
		return
	}

	voices := make([]models.VoiceInfo, 0, len(entries))
	for _, e := range entries {
		voices = append(voices, models.VoiceInfo{
			Name:       e.Name,
			Transcript: e.Transcript,
			Duration:   e.Duration,
			Model:      e.Model,
		})
	}

	respondJSON(w, http.StatusOK, models.VoicesResponse{Voices: voices})
}

// DeleteVoice handles DELETE /voices/{name}
func (h *Handler) DeleteVoice(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.store.Delete(name); err != nil {
		if errors.Is(err, voicestore.ErrNotFound) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("Voice '%s' not found", name))
			return
		}
		if errors.Is(err, voicestore.ErrInvalidName) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete voice")
		return
	}

	respondJSON(w, http.StatusOK, models.DeleteResponse{Success: true, Deleted: name})
}

// voiceID derives a short stable identifier from the normalized reference
// material, so re-extracting the same audio+transcript yields the same ID.
func voiceID(audioB64, transcript string) string {
	sum := md5.Sum([]byte(audioB64 + transcript))
	return fmt.Sprintf("%x", sum)[:16]
}

func serveWAV(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", `attachment; filename="output.wav"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}
