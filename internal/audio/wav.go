package audio

import (
	"bytes"
	"fmt"
	"io"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	resampling "github.com/tphakala/go-audio-resampling"
)

// ---------------------------------------------------------------------------
// WAV decode/encode and reference-audio normalization.
// Every reference clip is brought to the model sample rate (24 kHz mono,
// 16-bit PCM) before it is stored or handed to an inference run.
// ---------------------------------------------------------------------------

// ModelSampleRate is the sample rate both model families synthesize at.
const ModelSampleRate = 24000

const encodeBitDepth = 16

// Clip is decoded PCM audio held as float64 samples in [-1, 1],
// interleaved when Channels > 1.
type Clip struct {
	Samples    []float64
	Channels   int
	SampleRate int
}

// Decode parses a WAV file into a Clip.
func Decode(data []byte) (*Clip, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV data: %w", err)
	}
	if buf.Format == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("WAV file contains no audio data")
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = encodeBitDepth
	}
	scale := float64(int64(1) << (bitDepth - 1))

	samples := make([]float64, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = float64(s) / scale
	}

	return &Clip{
		Samples:    samples,
		Channels:   buf.Format.NumChannels,
		SampleRate: buf.Format.SampleRate,
	}, nil
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.Channels == 0 || c.SampleRate == 0 {
		return 0
	}
	frames := len(c.Samples) / c.Channels
	return float64(frames) / float64(c.SampleRate)
}

// DownmixMono averages all channels into one. Mono clips pass through.
func (c *Clip) DownmixMono() *Clip {
	if c.Channels <= 1 {
		return c
	}

	frames := len(c.Samples) / c.Channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < c.Channels; ch++ {
			sum += c.Samples[i*c.Channels+ch]
		}
		mono[i] = sum / float64(c.Channels)
	}

	return &Clip{Samples: mono, Channels: 1, SampleRate: c.SampleRate}
}

// Resample converts the clip to the target sample rate. The clip must be
// mono. Clips already at the target rate pass through.
func (c *Clip) Resample(targetRate int) (*Clip, error) {
	if c.SampleRate == targetRate {
		return c, nil
	}
	if c.Channels != 1 {
		return nil, fmt.Errorf("resample requires mono audio, got %d channels", c.Channels)
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(c.SampleRate),
		OutputRate: float64(targetRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	out, err := rs.Process(c.Samples)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}

	return &Clip{Samples: out, Channels: 1, SampleRate: targetRate}, nil
}

// EncodeWAV serializes the clip as 16-bit PCM WAV.
func (c *Clip) EncodeWAV() ([]byte, error) {
	data := make([]int, len(c.Samples))
	for i, s := range c.Samples {
		// Clamp before conversion: resampling can overshoot slightly.
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		data[i] = int(s * 32767.0)
	}

	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: c.Channels,
			SampleRate:  c.SampleRate,
		},
		Data:           data,
		SourceBitDepth: encodeBitDepth,
	}

	ws := &writeSeeker{}
	enc := wav.NewEncoder(ws, c.SampleRate, encodeBitDepth, c.Channels, 1)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to encode WAV data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize WAV data: %w", err)
	}

	return ws.data, nil
}

// Normalize decodes WAV bytes, downmixes to mono, and resamples to the
// model rate. It returns the re-encoded WAV and its duration in seconds.
func Normalize(data []byte, targetRate int) ([]byte, float64, error) {
	clip, err := Decode(data)
	if err != nil {
		return nil, 0, err
	}

	mono, err := clip.DownmixMono().Resample(targetRate)
	if err != nil {
		return nil, 0, err
	}

	out, err := mono.EncodeWAV()
	if err != nil {
		return nil, 0, err
	}

	return out, mono.Duration(), nil
}

// writeSeeker is an in-memory io.WriteSeeker. The WAV encoder seeks back to
// the header to fix up chunk sizes, so a plain bytes.Buffer cannot be used.
type writeSeeker struct {
	data []byte
	pos  int
}

func (ws *writeSeeker) Write(p []byte) (int, error) {
	if need := ws.pos + len(p); need > len(ws.data) {
		grown := make([]byte, need)
		copy(grown, ws.data)
		ws.data = grown
	}
	copy(ws.data[ws.pos:], p)
	ws.pos += len(p)
	return len(p), nil
}

func (ws *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(ws.pos) + offset
	case io.SeekEnd:
		pos = int64(len(ws.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative seek position: %d", pos)
	}
	ws.pos = int(pos)
	return pos, nil
}
