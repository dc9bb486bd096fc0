package repository

import (
	"exam_tutor_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// CreateWithItems 提交记录与逐题结果在同一事务内落库
func (r *SubmissionRepository) CreateWithItems(submission *model.Submission, items []model.SubmissionItem) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			return err
		}
		for i := range items {
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SubmissionRepository) FindByID(submissionID string) (*model.Submission, error) {
	var s model.Submission
	if err := r.DB.Where("submission_id = ?", submissionID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepository) FindItemByID(itemID uint) (*model.SubmissionItem, error) {
	var item model.SubmissionItem
	if err := r.DB.Where("id = ?", itemID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *SubmissionRepository) UpdateItem(item *model.SubmissionItem) error {
	return r.DB.Save(item).Error
}
