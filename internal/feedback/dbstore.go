package feedback

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mkhalor/juno/internal/models"
	"github.com/sirupsen/logrus"
)

// RecordStore persists entries through the Postgres feedback repository.
// Inserts are true appends, so it needs no wholesale-rewrite locking; the
// database serializes concurrent writers.
type RecordStore struct {
	repo      models.FeedbackRepository
	exportDir string
	logger    *logrus.Logger
}

func NewRecordStore(repo models.FeedbackRepository, exportDir string, logger *logrus.Logger) *RecordStore {
	return &RecordStore{
		repo:      repo,
		exportDir: exportDir,
		logger:    logger,
	}
}

func (s *RecordStore) Record(entry Entry) (bool, error) {
	if !validRating(entry.Rating) {
		s.logger.WithField("rating", entry.Rating).Warn("Rejected feedback with out-of-range rating")
		return false, nil
	}

	record := &models.FeedbackRecord{
		Timestamp:           time.Now(),
		SessionID:           entry.SessionID,
		UserQuery:           entry.UserQuery,
		BotResponse:         entry.BotResponse,
		Rating:              entry.Rating,
		FeedbackText:        entry.FeedbackText,
		EscalationTriggered: entry.EscalationTriggered,
		ToolsUsed:           models.StringArray(entry.ToolsUsed),
		ResponseTime:        entry.ResponseTime,
	}

	if err := s.repo.Create(record); err != nil {
		return false, fmt.Errorf("failed to store feedback: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": entry.SessionID,
		"rating":     entry.Rating,
	}).Info("Feedback collected")

	return true, nil
}

func (s *RecordStore) Stats() (Stats, error) {
	entries, err := s.loadAll()
	if err != nil {
		return Stats{}, err
	}
	return computeStats(entries), nil
}

func (s *RecordStore) Recent(limit int) ([]Entry, error) {
	records, err := s.repo.GetRecent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent feedback: %w", err)
	}
	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, fromRecord(record))
	}
	return entries, nil
}

func (s *RecordStore) Export(destination string) (string, error) {
	entries, err := s.loadAll()
	if err != nil {
		return "", err
	}

	if destination == "" {
		if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create export directory: %w", err)
		}
		destination = filepath.Join(s.exportDir, exportFilename(time.Now()))
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

func (s *RecordStore) loadAll() ([]Entry, error) {
	records, err := s.repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback log: %w", err)
	}
	entries := make([]Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, fromRecord(record))
	}
	return entries, nil
}

func fromRecord(record models.FeedbackRecord) Entry {
	tools := []string(record.ToolsUsed)
	if tools == nil {
		tools = []string{}
	}
	return Entry{
		Timestamp:           record.Timestamp.Format(time.RFC3339),
		SessionID:           record.SessionID,
		UserQuery:           record.UserQuery,
		BotResponse:         record.BotResponse,
		Rating:              record.Rating,
		FeedbackText:        record.FeedbackText,
		EscalationTriggered: record.EscalationTriggered,
		ToolsUsed:           tools,
		ResponseTime:        record.ResponseTime,
	}
}
