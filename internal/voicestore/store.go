package voicestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Voice store: name-keyed file pairs in a flat directory.
// Each voice is a <name>.json metadata record plus, for reference-audio
// voices, a <name>.wav next to it. Saving under an existing name overwrites.
// ---------------------------------------------------------------------------

var (
	ErrNotFound    = errors.New("voice not found")
	ErrInvalidName = errors.New("invalid voice name")
)

// Record is the persisted metadata for one voice. Reference-audio voices
// carry AudioB64/SampleRate/Duration; embedding voices carry Embedding/Shape.
type Record struct {
	Transcript string    `json:"transcript"`
	Model      string    `json:"model"`
	AudioB64   string    `json:"audio_b64,omitempty"`
	SampleRate int       `json:"sample_rate,omitempty"`
	Duration   float64   `json:"duration,omitempty"`
	Embedding  string    `json:"embedding,omitempty"`
	Shape      []int     `json:"shape,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Entry is a named record, as returned by List.
type Entry struct {
	Name string
	Record
}

type Store struct {
	dir string
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create voice directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// ValidateName rejects empty names and names that could escape the store
// directory.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: name cannot contain path separators", ErrInvalidName)
	}
	return nil
}

func (s *Store) jsonPath(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *Store) wavPath(name string) string {
	return filepath.Join(s.dir, name+".wav")
}

// Save writes the metadata record and, when wav is non-nil, the reference
// audio beside it. An existing voice with the same name is overwritten.
func (s *Store) Save(name string, rec *Record, wav []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal voice record: %w", err)
	}
	if err := os.WriteFile(s.jsonPath(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write voice record: %w", err)
	}

	if wav != nil {
		if err := os.WriteFile(s.wavPath(name), wav, 0644); err != nil {
			return fmt.Errorf("failed to write voice audio: %w", err)
		}
	}

	return nil
}

// Load reads the metadata record for a voice.
func (s *Store) Load(name string) (*Record, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.jsonPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read voice record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse voice record: %w", err)
	}

	return &rec, nil
}

// WAVPath returns the path of the stored reference audio for a voice,
// or ErrNotFound when the voice has no audio file.
func (s *Store) WAVPath(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	p := s.wavPath(name)
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", fmt.Errorf("failed to stat voice audio: %w", err)
	}

	return p, nil
}

// List returns all readable voice records sorted by name. Unreadable files
// are logged and skipped so one corrupt record doesn't hide the rest.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read voice directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
			continue
		}
		name := strings.TrimSuffix(de.Name(), ".json")

		rec, err := s.Load(name)
		if err != nil {
			log.Printf("[VoiceStore] Could not read voice file %s: %v", de.Name(), err)
			continue
		}
		entries = append(entries, Entry{Name: name, Record: *rec})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Delete removes a voice's metadata and, if present, its reference audio.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if err := os.Remove(s.jsonPath(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete voice record: %w", err)
	}

	// The audio file is optional; ignore a missing one.
	if err := os.Remove(s.wavPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete voice audio: %w", err)
	}

	return nil
}
