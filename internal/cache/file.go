package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"stylegen/internal/fileutil"
	"stylegen/internal/logging"
)

// fileEntry is one record in the cache file. Value is opaque to the store
// and is written base64-encoded so Get returns exactly what Put stored.
type fileEntry struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// FileStore persists entries as one JSON document, rewritten atomically on
// every Put.
type FileStore struct {
	path    string
	logger  *slog.Logger
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]fileEntry
}

// NewFileStore loads path if it exists. A corrupt file is logged and the
// cache starts empty.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file cache path is required")
	}
	logger = logging.NewComponentLogger(logger, "cache")
	s := &FileStore{
		path:    path,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]fileEntry),
	}
	if err := s.load(); err != nil {
		logger.Warn("failed to load analysis cache",
			logging.String(logging.FieldEventType, "cache_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the cache file if the problem persists"),
			logging.String(logging.FieldImpact, "cache will start empty and images will be re-analyzed"))
	}
	return s, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok || expired(entry.ExpiresAt, s.now()) {
		return nil, false, nil
	}
	return append([]byte(nil), entry.Value...), true, nil
}

// Put stores value and rewrites the cache file.
func (s *FileStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.entries[key] = fileEntry{
		Key:       key,
		Value:     bytes.Clone(value),
		StoredAt:  now,
		ExpiresAt: expiry(now, ttl),
	}
	if err := s.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]fileEntry)
	if err := s.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	s.logger.Debug("cleared analysis cache", logging.String("path", s.path))
	return nil
}

func (s *FileStore) Stats(context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	live := 0
	for _, e := range s.entries {
		if !expired(e.ExpiresAt, now) {
			live++
		}
	}
	return Stats{Backend: "file", Location: s.path, Entries: live}, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	var entries []fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	now := s.now()
	for _, entry := range entries {
		if entry.Key == "" || expired(entry.ExpiresAt, now) {
			continue
		}
		s.entries[entry.Key] = entry
	}
	s.logger.Debug("loaded analysis cache",
		logging.Int("entry_count", len(s.entries)),
		logging.String("path", s.path))
	return nil
}

// save writes the cache to disk atomically. Expired entries are dropped.
func (s *FileStore) save() error {
	now := s.now()
	entries := make([]fileEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		if expired(entry.ExpiresAt, now) {
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}
