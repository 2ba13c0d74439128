package models

// Wire types shared by the HTTP services and the client package.
// Field names and JSON shapes are part of the public API contract,
// so both servers and the opentts CLI depend on this package rather
// than declaring their own copies.

// HealthResponse is returned by GET /health.
// GPU is a pointer so the field serializes as null when no GPU is present.
type HealthResponse struct {
	Status        string  `json:"status"`
	Model         string  `json:"model"`
	CUDAAvailable bool    `json:"cuda_available"`
	GPU           *string `json:"gpu"`
	Device        string  `json:"device"`
}

// ModelInfo is the model card returned by GET /info.
type ModelInfo struct {
	Model              string   `json:"model"`
	License            string   `json:"license"`
	Weights            string   `json:"weights,omitempty"`
	Capabilities       []string `json:"capabilities"`
	SupportedLanguages []string `json:"supported_languages"`
	SampleRate         int      `json:"sample_rate"`
	Note               string   `json:"note,omitempty"`
}

// ExtractResponse is returned by POST /extract_voice.
//
// The populated fields depend on the model behind the service: embedding
// models return Embedding/EmbeddingShape, reference-audio models return
// VoiceID/Duration/Audio/Note. Unset fields are omitted.
type ExtractResponse struct {
	Success        bool    `json:"success"`
	VoiceID        string  `json:"voice_id,omitempty"`
	Duration       float64 `json:"duration,omitempty"`
	Transcript     string  `json:"transcript"`
	Embedding      string  `json:"embedding,omitempty"`
	EmbeddingShape []int   `json:"embedding_shape,omitempty"`
	Audio          string  `json:"audio,omitempty"`
	Note           string  `json:"note,omitempty"`
	SavedAs        string  `json:"saved_as,omitempty"`
}

// SynthesizeRequest is the JSON body of POST /synthesize.
//
// Exactly one voice reference must be provided: a saved voice Name, inline
// base64 Audio (with its Transcript), or a base64 speaker Embedding.
type SynthesizeRequest struct {
	Text       string  `json:"text"`
	Name       string  `json:"name,omitempty"`
	Audio      string  `json:"audio,omitempty"`
	Transcript string  `json:"transcript,omitempty"`
	Embedding  string  `json:"embedding,omitempty"`
	Shape      []int   `json:"shape,omitempty"`
	Language   string  `json:"language,omitempty"`
	Speed      float64 `json:"speed,omitempty"`
}

// VoiceInfo is one entry of GET /voices.
type VoiceInfo struct {
	Name       string  `json:"name"`
	Transcript string  `json:"transcript"`
	Duration   float64 `json:"duration,omitempty"`
	Model      string  `json:"model"`
}

// VoicesResponse is returned by GET /voices.
type VoicesResponse struct {
	Voices []VoiceInfo `json:"voices"`
}

// DeleteResponse is returned by DELETE /voices/{name}.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Deleted string `json:"deleted"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
