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
// F5 engine: wraps the F5-TTS inference CLI.
// F5-TTS conditions directly on reference audio during flow-matching
// synthesis, so voice extraction is pure storage: no model call happens
// until /synthesize.
// ---------------------------------------------------------------------------

const (
	f5ModelID = "openf5_tts"
	f5Note    = "F5-TTS uses reference audio directly (no embedding)"
)

// F5Config configures the exec boundary to the F5-TTS runtime.
type F5Config struct {
	Command   string // inference CLI binary, e.g. "f5-tts_infer-cli"
	Model     string // model architecture name passed to the CLI
	CkptFile  string // checkpoint override (empty = CLI default)
	VocabFile string // vocab override (empty = CLI default)
	WorkDir   string // scratch directory for per-request files
}

type F5 struct {
	cfg    F5Config
	device Device
}

var _ Engine = (*F5)(nil)

func NewF5(cfg F5Config, device Device) *F5 {
	return &F5{cfg: cfg, device: device}
}

func (e *F5) ModelID() string { return f5ModelID }

func (e *F5) Info() models.ModelInfo {
	return models.ModelInfo{
		Model:              "OpenF5-TTS",
		License:            "Apache 2.0",
		Weights:            "OpenF5 (Emilia-YODAS trained)",
		Capabilities:       []string{"voice_cloning", "tts", "emotion_preservation"},
		SupportedLanguages: []string{"EN", "ZH"},
		SampleRate:         audio.ModelSampleRate,
		Note:               "Uses flow-matching for high-quality voice cloning",
	}
}

// ExtractVoice is a no-op model-wise: the normalized reference audio the
// caller already holds is the voice artifact.
func (e *F5) ExtractVoice(_ context.Context, _ []byte, _ string) (*Extraction, error) {
	return &Extraction{Note: f5Note}, nil
}

// Synthesize writes the reference audio to a scratch directory and runs the
// inference CLI against it.
func (e *F5) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if len(req.Ref.WAV) == 0 {
		return nil, ErrMissingReference
	}
	if req.Ref.Transcript == "" {
		return nil, ErrMissingTranscript
	}

	workDir := filepath.Join(e.cfg.WorkDir, "f5-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	refPath := filepath.Join(workDir, "ref.wav")
	if err := os.WriteFile(refPath, req.Ref.WAV, 0644); err != nil {
		return nil, fmt.Errorf("failed to write reference audio: %w", err)
	}

	const outputFile = "output.wav"
	args := e.buildArgs(refPath, req, workDir, outputFile)

	log.Printf("[F5] Synthesizing (textLen=%d, speed=%.2f, device=%s)",
		len(req.Text), req.Speed, e.device.Name)

	cmd := exec.CommandContext(ctx, e.cfg.Command, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("f5 inference failed: %w: %s", err, tailOf(out))
	}

	data, err := os.ReadFile(filepath.Join(workDir, outputFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesized audio: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("f5 inference produced empty audio")
	}

	log.Printf("[F5] Speech generated (%d bytes)", len(data))
	return data, nil
}

func (e *F5) buildArgs(refPath string, req Request, outputDir, outputFile string) []string {
	args := []string{
		"--model", e.cfg.Model,
		"--ref_audio", refPath,
		"--ref_text", req.Ref.Transcript,
		"--gen_text", req.Text,
		"--speed", strconv.FormatFloat(req.Speed, 'f', -1, 64),
		"--output_dir", outputDir,
		"--output_file", outputFile,
		"--device", e.device.Name,
	}
	if e.cfg.CkptFile != "" {
		args = append(args, "--ckpt_file", e.cfg.CkptFile)
	}
	if e.cfg.VocabFile != "" {
		args = append(args, "--vocab_file", e.cfg.VocabFile)
	}
	return args
}

// tailOf keeps error output readable when the runtime dumps a long trace.
func tailOf(out []byte) string {
	const max = 512
	if len(out) <= max {
		return string(out)
	}
	return "..." + string(out[len(out)-max:])
}
