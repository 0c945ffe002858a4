package categorizer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/statement-scanner/internal/logging"
)

// learnedFile is the on-disk layout of the learning map.
type learnedFile struct {
	Merchants map[string]string `yaml:"merchants"`
}

// Store keeps the merchant to category choices the user made. Keys are
// lower-cased merchant names. The map is written back to YAML on every
// change. Safe for concurrent use.
type Store struct {
	path    string
	mu      sync.RWMutex
	learned map[string]string
	logger  logging.Logger
}

// OpenStore loads the learning map from path. A missing file yields an empty
// store; an empty path keeps the map in memory only.
func OpenStore(path string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Store{path: path, learned: map[string]string{}, logger: logger}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("no learned categories yet", logging.F(logging.FieldFile, path))
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f learnedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for merchant, category := range f.Merchants {
		s.learned[key(merchant)] = category
	}
	logger.Info("loaded learned categories",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(s.learned)))
	return s, nil
}

func key(merchant string) string {
	return strings.ToLower(strings.TrimSpace(merchant))
}

// Lookup returns the learned category for merchant.
func (s *Store) Lookup(merchant string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.learned[key(merchant)]
	return c, ok
}

// Set records a choice and persists the map.
func (s *Store) Set(merchant, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.learned[key(merchant)] = category
	return s.save()
}

// Len reports how many merchants have been learned.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.learned)
}

// Snapshot returns a copy of the learning map.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.learned))
	for k, v := range s.learned {
		out[k] = v
	}
	return out
}

// save writes through a temp file so readers never see a partial map.
// Callers hold the write lock.
func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(learnedFile{Merchants: s.learned})
	if err != nil {
		return fmt.Errorf("encoding learned categories: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}
