package voicestore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	rec := &Record{
		Transcript: "hello world",
		Model:      "openf5_tts",
		AudioB64:   "QUJD",
		SampleRate: 24000,
		Duration:   1.5,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.Save("alice", rec, []byte("RIFFfake")))

	got, err := s.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Transcript)
	assert.Equal(t, "openf5_tts", got.Model)
	assert.Equal(t, 24000, got.SampleRate)

	p, err := s.WAVPath("alice")
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFFfake"), data)
}

func TestSaveWithoutAudio(t *testing.T) {
	s := newTestStore(t)

	rec := &Record{
		Transcript: "embedding voice",
		Model:      "openvoice_v2",
		Embedding:  "AAAA",
		Shape:      []int{1, 256},
	}
	require.NoError(t, s.Save("bob", rec, nil))

	got, err := s.Load("bob")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 256}, got.Shape)

	_, err = s.WAVPath("bob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOverwrite(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("v", &Record{Transcript: "first", Model: "m"}, nil))
	require.NoError(t, s.Save("v", &Record{Transcript: "second", Model: "m"}, nil))

	got, err := s.Load("v")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Transcript)
}

func TestListSortedAndSkipsCorrupt(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("zoe", &Record{Transcript: "z", Model: "m"}, nil))
	require.NoError(t, s.Save("amy", &Record{Transcript: "a", Model: "m"}, nil))

	// A corrupt record must not hide the valid ones.
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "bad.json"), []byte("{not json"), 0644))
	// Stray non-JSON files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "readme.txt"), []byte("hi"), 0644))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "amy", entries[0].Name)
	assert.Equal(t, "zoe", entries[1].Name)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("temp", &Record{Transcript: "x", Model: "m"}, []byte("RIFF")))
	require.NoError(t, s.Delete("temp"))

	_, err := s.Load("temp")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoFileExists(t, filepath.Join(s.Dir(), "temp.wav"))

	assert.ErrorIs(t, s.Delete("temp"), ErrNotFound)
}

func TestDeleteWithoutAudio(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("meta", &Record{Transcript: "x", Model: "m"}, nil))
	assert.NoError(t, s.Delete("meta"))
}

func TestValidateName(t *testing.T) {
	valid := []string{"alice", "my-voice", "voice_2", "Voice.v1"}
	for _, name := range valid {
		assert.NoError(t, ValidateName(name), name)
	}

	invalid := []string{"", "a/b", `a\b`, "..", "../escape", "voices/../../etc"}
	for _, name := range invalid {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidName, name)
	}
}

func TestStoreRejectsInvalidNames(t *testing.T) {
	s := newTestStore(t)

	assert.ErrorIs(t, s.Save("../evil", &Record{}, nil), ErrInvalidName)
	_, err := s.Load("../evil")
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, s.Delete("../evil"), ErrInvalidName)
}
