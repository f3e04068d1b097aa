package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"predtrack-go/internal/sample"
)

// FileStore keeps one JSON file per instrument under a state directory.
type FileStore struct {
	mu    sync.Mutex
	dir   string
	limit int
	log   zerolog.Logger
}

// NewFileStore creates the state directory if needed and returns the store.
func NewFileStore(dir string, limit int, log zerolog.Logger) (*FileStore, error) {
	if dir == "" {
		dir = "data/history"
	}
	if limit <= 0 {
		limit = sample.DefaultLimit
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &FileStore{dir: dir, limit: limit, log: log}, nil
}

func (s *FileStore) path(topicID int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("history_%d.json", topicID))
}

// Load reads the stored history, filtering malformed entries. Any read or
// parse problem yields an empty sequence.
func (s *FileStore) Load(topicID int64) []sample.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(topicID)
}

func (s *FileStore) load(topicID int64) []sample.Sample {
	data, err := os.ReadFile(s.path(topicID))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Int64("topic", topicID).Msg("history read failed")
		}
		return nil
	}
	return decodeSamples(data, s.limit)
}

// Append adds one sample and persists the truncated sequence. Write failures
// are logged and swallowed; the returned sequence is authoritative either way.
func (s *FileStore) Append(topicID int64, smp sample.Sample) []sample.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	samples := truncate(append(s.load(topicID), smp), s.limit)
	data, err := json.Marshal(samples)
	if err != nil {
		s.log.Warn().Err(err).Int64("topic", topicID).Msg("history encode failed")
		return samples
	}
	if err := os.WriteFile(s.path(topicID), data, 0o644); err != nil {
		s.log.Warn().Err(err).Int64("topic", topicID).Msg("history write failed")
	}
	return samples
}

// Clear removes the instrument's history file. Missing files are fine.
func (s *FileStore) Clear(topicID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(topicID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove history: %w", err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}
