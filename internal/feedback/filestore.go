package feedback

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const logFilename = "feedback_data.jsonl"

// FileStore persists entries as an append-only JSONL log. Every accepted entry
// is one line appended under the mutex, so concurrent callers never interleave
// partial writes and existing entries are never rewritten.
type FileStore struct {
	dir    string
	path   string
	mu     sync.Mutex
	logger *logrus.Logger
}

func NewFileStore(dir string, logger *logrus.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create feedback directory: %w", err)
	}
	return &FileStore{
		dir:    dir,
		path:   filepath.Join(dir, logFilename),
		logger: logger,
	}, nil
}

// Record validates the rating, stamps the entry and appends it to the log.
func (s *FileStore) Record(entry Entry) (bool, error) {
	if !validRating(entry.Rating) {
		s.logger.WithField("rating", entry.Rating).Warn("Rejected feedback with out-of-range rating")
		return false, nil
	}

	entry.Timestamp = time.Now().Format(time.RFC3339)
	if entry.ToolsUsed == nil {
		entry.ToolsUsed = []string{}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return false, fmt.Errorf("failed to marshal feedback entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return false, fmt.Errorf("failed to open feedback log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return false, fmt.Errorf("failed to append feedback entry: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": entry.SessionID,
		"rating":     entry.Rating,
	}).Info("Feedback collected")

	return true, nil
}

func (s *FileStore) Stats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return Stats{}, err
	}
	return computeStats(entries), nil
}

func (s *FileStore) Recent(limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	return recentWindow(entries, limit), nil
}

// Export writes the full log as a single JSON snapshot and returns the
// resolved path. The store itself is never mutated.
func (s *FileStore) Export(destination string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return "", err
	}

	if destination == "" {
		destination = filepath.Join(s.dir, exportFilename(time.Now()))
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal feedback export: %w", err)
	}

	if err := os.WriteFile(destination, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write feedback export: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"path":    destination,
		"entries": len(entries),
	}).Info("Feedback exported")

	return destination, nil
}

// load reads the whole log. A missing file is an empty store; an unreadable or
// corrupt file is an error, never silently treated as empty.
func (s *FileStore) load() ([]Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to open feedback log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("feedback log corrupt at line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feedback log: %w", err)
	}

	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
