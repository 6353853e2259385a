package models

// GORM models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// StringArray for PostgreSQL array support
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	return fmt.Sprintf("{%s}", strings.Join(s, ",")), nil
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case string:
		v = strings.Trim(v, "{}")
		if v == "" {
			*s = StringArray{}
			return nil
		}
		*s = StringArray(strings.Split(v, ","))
	case []byte:
		return s.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
	return nil
}

// FeedbackRecord is the persisted form of one rated interaction. Rows are
// insert-only; there is no update or delete path.
type FeedbackRecord struct {
	ID                  uint        `json:"id" gorm:"primaryKey"`
	Timestamp           time.Time   `json:"timestamp" gorm:"not null"`
	SessionID           string      `json:"session_id" gorm:"index;not null"`
	UserQuery           string      `json:"user_query" gorm:"not null"`
	BotResponse         string      `json:"bot_response"`
	Rating              int         `json:"rating" gorm:"not null;check:rating BETWEEN 1 AND 5"`
	FeedbackText        string      `json:"feedback_text"`
	EscalationTriggered bool        `json:"escalation_triggered" gorm:"default:false"`
	ToolsUsed           StringArray `json:"tools_used" gorm:"type:text[]"`
	ResponseTime        float64     `json:"response_time"`
	CreatedAt           time.Time   `json:"created_at"`
}

func (FeedbackRecord) TableName() string { return "feedback_records" }

func (r *FeedbackRecord) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", r.Rating)
	}
	if r.ResponseTime < 0 {
		return fmt.Errorf("response time cannot be negative")
	}
	return nil
}

func (r *FeedbackRecord) BeforeCreate(tx *gorm.DB) error {
	return r.Validate()
}

// FeedbackRepository is the database access boundary for feedback records.
type FeedbackRepository interface {
	Create(record *FeedbackRecord) error
	GetAll() ([]FeedbackRecord, error)
	GetRecent(limit int) ([]FeedbackRecord, error)
	GetBySession(sessionID string) ([]FeedbackRecord, error)
	Count() (int64, error)
}
