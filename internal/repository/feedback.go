package repository

import (
	"github.com/mkhalor/juno/internal/models"
	"gorm.io/gorm"
)

// FeedbackRepositoryImpl implements models.FeedbackRepository
type FeedbackRepositoryImpl struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) models.FeedbackRepository {
	return &FeedbackRepositoryImpl{db: db}
}

func (r *FeedbackRepositoryImpl) Create(record *models.FeedbackRecord) error {
	return r.db.Create(record).Error
}

func (r *FeedbackRepositoryImpl) GetAll() ([]models.FeedbackRecord, error) {
	var records []models.FeedbackRecord
	err := r.db.Order("id").Find(&records).Error
	return records, err
}

func (r *FeedbackRepositoryImpl) GetRecent(limit int) ([]models.FeedbackRecord, error) {
	var records []models.FeedbackRecord
	err := r.db.Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	// Back to insertion order, oldest of the window first.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (r *FeedbackRepositoryImpl) GetBySession(sessionID string) ([]models.FeedbackRecord, error) {
	var records []models.FeedbackRecord
	err := r.db.Where("session_id = ?", sessionID).
		Order("id").
		Find(&records).Error
	return records, err
}

func (r *FeedbackRepositoryImpl) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.FeedbackRecord{}).Count(&count).Error
	return count, err
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	Feedback models.FeedbackRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		Feedback: NewFeedbackRepository(db),
	}
}
