package patch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleSource = `import torch
import torchaudio

def preprocess_ref_audio_text(ref_audio, ref_text):
    audio, sr = torchaudio.load(ref_audio)
    return audio, sr
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "utils_infer.py")
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write sample: %v", err)
	}
	return p
}

func TestApplyPatches(t *testing.T) {
	p := writeSample(t, sampleSource)

	result, err := Apply(p, false)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if result != Patched {
		t.Fatalf("expected Patched, got %v", result)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("failed to read patched file: %v", err)
	}
	content := string(data)

	if strings.Contains(content, "audio, sr = torchaudio.load(ref_audio)") {
		t.Error("torchaudio.load call still present")
	}
	if !strings.Contains(content, "soundfile") {
		t.Error("soundfile replacement missing")
	}
	if !strings.Contains(content, marker) {
		t.Error("patch marker missing")
	}
	// Untouched code survives.
	if !strings.Contains(content, "def preprocess_ref_audio_text") {
		t.Error("surrounding code was damaged")
	}
}

func TestApplyIdempotent(t *testing.T) {
	p := writeSample(t, sampleSource)

	if _, err := Apply(p, false); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	once, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	result, err := Apply(p, false)
	if err != nil {
		t.Fatalf("second apply failed: %v", err)
	}
	if result != AlreadyPatched {
		t.Errorf("expected AlreadyPatched, got %v", result)
	}

	twice, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(once) != string(twice) {
		t.Error("second apply modified the file")
	}
}

func TestApplyNoMatch(t *testing.T) {
	p := writeSample(t, "def unrelated():\n    pass\n")

	result, err := Apply(p, false)
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if result != NoMatch {
		t.Errorf("expected NoMatch, got %v", result)
	}
}

func TestApplyDryRun(t *testing.T) {
	p := writeSample(t, sampleSource)

	result, err := Apply(p, true)
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if result != Patched {
		t.Errorf("expected Patched, got %v", result)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != sampleSource {
		t.Error("dry run modified the file")
	}
}

func TestApplyMissingFile(t *testing.T) {
	if _, err := Apply("/no/such/file.py", false); err == nil {
		t.Error("expected error for missing file")
	}
}
