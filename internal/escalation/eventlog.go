package escalation

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// EventLog is an append-only text log of escalated turns. Write-only from the
// core's perspective; nothing in this package reads it back.
type EventLog struct {
	path   string
	mu     sync.Mutex
	logger *logrus.Logger
}

func NewEventLog(path string, logger *logrus.Logger) *EventLog {
	return &EventLog{
		path:   path,
		logger: logger,
	}
}

// Record appends one timestamped line for an escalated turn. Failures are
// returned to the caller rather than swallowed.
func (l *EventLog) Record(sessionID, userText string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create escalation log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open escalation log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s\t%s\t%s\n", time.Now().Format(time.RFC3339), sessionID, userText)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("failed to append escalation event: %w", err)
	}

	l.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
	}).Info("Escalation recorded")

	return nil
}
