package engine

import (
	"context"
	"errors"
	"testing"
)

func testOpenVoice() *OpenVoice {
	return NewOpenVoice(OpenVoiceConfig{
		Command:  "openvoice-runner",
		Language: "EN",
		WorkDir:  "/tmp/test",
	}, Device{Name: "cpu"})
}

func TestOpenVoiceModelID(t *testing.T) {
	if got := testOpenVoice().ModelID(); got != "openvoice_v2" {
		t.Errorf("unexpected model id: %s", got)
	}
}

func TestOpenVoiceInfo(t *testing.T) {
	info := testOpenVoice().Info()
	if info.Model != "OpenVoice V2" {
		t.Errorf("unexpected model name: %s", info.Model)
	}
	if info.License != "MIT" {
		t.Errorf("unexpected license: %s", info.License)
	}
	if len(info.SupportedLanguages) == 0 {
		t.Error("expected supported languages")
	}
}

func TestOpenVoiceSynthesizeRequiresEmbedding(t *testing.T) {
	req := Request{
		Text:  "hi",
		Speed: 1.0,
		Ref:   Reference{WAV: []byte("RIFF"), Transcript: "some words"},
	}
	_, err := testOpenVoice().Synthesize(context.Background(), req)
	if !errors.Is(err, ErrMissingReference) {
		t.Errorf("expected ErrMissingReference, got %v", err)
	}
}

func TestOpenVoiceBuildSynthArgs(t *testing.T) {
	e := testOpenVoice()
	req := Request{Text: "hello", Speed: 0.8}

	args := e.buildSynthArgs(req, "/work/se.bin", "ZH", "/work/output.wav")

	if args[0] != "synthesize" {
		t.Errorf("expected synthesize subcommand, got %s", args[0])
	}
	expectArg(t, args, "--text", "hello")
	expectArg(t, args, "--embedding", "/work/se.bin")
	expectArg(t, args, "--language", "ZH")
	expectArg(t, args, "--speed", "0.8")
	expectArg(t, args, "--output", "/work/output.wav")
	expectArg(t, args, "--device", "cpu")
}

func TestDetectOverride(t *testing.T) {
	d := Detect("cpu")
	if d.Name != "cpu" || d.CUDAAvailable {
		t.Errorf("unexpected device for cpu override: %+v", d)
	}

	d = Detect("cuda:1")
	if d.Name != "cuda:1" || !d.CUDAAvailable {
		t.Errorf("unexpected device for cuda override: %+v", d)
	}
}
