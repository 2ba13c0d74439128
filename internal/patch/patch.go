// Package patch rewrites the F5-TTS reference-audio loading call to go
// through soundfile instead of torchaudio.load, which breaks under the
// TorchCodec-based torchaudio releases.
package patch

import (
	"fmt"
	"os"
	"strings"
)

// DefaultTarget is the file inside an F5-TTS checkout that performs the
// reference-audio load.
const DefaultTarget = "f5-tts/src/f5_tts/infer/utils_infer.py"

const oldLoad = "audio, sr = torchaudio.load(ref_audio)"

// marker identifies an already-patched file.
const marker = "# Patched: use soundfile instead of torchaudio"

const newLoad = marker + ` (TorchCodec compatibility)
    import soundfile as _sf
    _audio_np, sr = _sf.read(ref_audio)
    audio = torch.from_numpy(_audio_np).float()
    if audio.dim() == 1:
        audio = audio.unsqueeze(0)
    else:
        audio = audio.T`

// Result reports what Apply did.
type Result int

const (
	// Patched: the substitution was performed (or would be, under dry-run).
	Patched Result = iota
	// AlreadyPatched: the file carries the patch marker; nothing to do.
	AlreadyPatched
	// NoMatch: the load call was not found and the file is not patched,
	// likely a different F5-TTS version.
	NoMatch
)

// Apply patches the file at path in place. With dryRun set, the file is
// inspected but not modified.
func Apply(path string, dryRun bool) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NoMatch, fmt.Errorf("failed to read %s: %w", path, err)
	}
	content := string(data)

	if strings.Contains(content, marker) {
		return AlreadyPatched, nil
	}
	if !strings.Contains(content, oldLoad) {
		return NoMatch, nil
	}
	if dryRun {
		return Patched, nil
	}

	patched := strings.Replace(content, oldLoad, newLoad, 1)
	if err := os.WriteFile(path, []byte(patched), 0644); err != nil {
		return NoMatch, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return Patched, nil
}
