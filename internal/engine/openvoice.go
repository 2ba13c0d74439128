package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/softwarewrighter/open-tts/internal/audio"
	"github.com/softwarewrighter/open-tts/internal/models"
)

// ---------------------------------------------------------------------------
// OpenVoice engine: wraps the OpenVoice V2 + MeloTTS runner.
// The runner exposes two subcommands: "extract" pulls a speaker embedding
// from reference audio, "synthesize" generates base speech with MeloTTS and
// applies tone-color conversion toward the target embedding.
// ---------------------------------------------------------------------------

const openVoiceModelID = "openvoice_v2"

// embeddingFloatBytes is the width of one float32 embedding component.
const embeddingFloatBytes = 4

// OpenVoiceConfig configures the exec boundary to the OpenVoice runtime.
type OpenVoiceConfig struct {
	Command  string // runner binary, e.g. "openvoice-runner"
	Language string // default synthesis language when a request names none
	WorkDir  string // scratch directory for per-request files
}

type OpenVoice struct {
	cfg    OpenVoiceConfig
	device Device
}

var _ Engine = (*OpenVoice)(nil)

func NewOpenVoice(cfg OpenVoiceConfig, device Device) *OpenVoice {
	return &OpenVoice{cfg: cfg, device: device}
}

func (e *OpenVoice) ModelID() string { return openVoiceModelID }

func (e *OpenVoice) Info() models.ModelInfo {
	return models.ModelInfo{
		Model:              "OpenVoice V2",
		License:            "MIT",
		Capabilities:       []string{"voice_cloning", "tts"},
		SupportedLanguages: []string{"EN", "ZH", "JP", "KR"},
		SampleRate:         audio.ModelSampleRate,
	}
}

// ExtractVoice runs the runner's embedding extraction over the reference
// audio and returns the raw float32 speaker embedding.
func (e *OpenVoice) ExtractVoice(ctx context.Context, wav []byte, _ string) (*Extraction, error) {
	workDir := filepath.Join(e.cfg.WorkDir, "ov-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	refPath := filepath.Join(workDir, "ref.wav")
	if err := os.WriteFile(refPath, wav, 0644); err != nil {
		return nil, fmt.Errorf("failed to write reference audio: %w", err)
	}

	embPath := filepath.Join(workDir, "se.bin")
	args := []string{
		"extract",
		"--audio", refPath,
		"--output", embPath,
		"--device", e.device.Name,
	}

	log.Printf("[OpenVoice] Extracting speaker embedding (device=%s)", e.device.Name)

	cmd := exec.CommandContext(ctx, e.cfg.Command, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("embedding extraction failed: %w: %s", err, tailOf(out))
	}

	emb, err := os.ReadFile(embPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read speaker embedding: %w", err)
	}
	if len(emb) == 0 || len(emb)%embeddingFloatBytes != 0 {
		return nil, fmt.Errorf("runner produced malformed embedding (%d bytes)", len(emb))
	}

	return &Extraction{
		Embedding: emb,
		Shape:     []int{1, len(emb) / embeddingFloatBytes},
	}, nil
}

// Synthesize generates base speech and converts its tone color toward the
// target embedding, all inside one runner invocation.
func (e *OpenVoice) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if len(req.Ref.Embedding) == 0 {
		return nil, ErrMissingReference
	}

	language := req.Language
	if language == "" {
		language = e.cfg.Language
	}

	workDir := filepath.Join(e.cfg.WorkDir, "ov-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	embPath := filepath.Join(workDir, "se.bin")
	if err := os.WriteFile(embPath, req.Ref.Embedding, 0644); err != nil {
		return nil, fmt.Errorf("failed to write speaker embedding: %w", err)
	}

	outPath := filepath.Join(workDir, "output.wav")
	args := e.buildSynthArgs(req, embPath, language, outPath)

	log.Printf("[OpenVoice] Synthesizing (textLen=%d, language=%s, speed=%.2f, device=%s)",
		len(req.Text), language, req.Speed, e.device.Name)

	cmd := exec.CommandContext(ctx, e.cfg.Command, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("openvoice synthesis failed: %w: %s", err, tailOf(out))
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesized audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("openvoice synthesis produced empty audio")
	}

	log.Printf("[OpenVoice] Speech generated (%d bytes)", len(data))
	return data, nil
}

func (e *OpenVoice) buildSynthArgs(req Request, embPath, language, outPath string) []string {
	return []string{
		"synthesize",
		"--text", req.Text,
		"--embedding", embPath,
		"--language", language,
		"--speed", strconv.FormatFloat(req.Speed, 'f', -1, 64),
		"--output", outPath,
		"--device", e.device.Name,
	}
}
