package repository

import (
	"exam_tutor_backend/internal/model"

	"gorm.io/gorm"
)

type PracticeRepository struct {
	DB *gorm.DB
}

func NewPracticeRepository(db *gorm.DB) *PracticeRepository {
	return &PracticeRepository{DB: db}
}

func (r *PracticeRepository) Create(practice *model.IsomorphicPractice) error {
	return r.DB.Create(practice).Error
}

func (r *PracticeRepository) FindByID(practiceID string) (*model.IsomorphicPractice, error) {
	var p model.IsomorphicPractice
	if err := r.DB.Where("practice_id = ?", practiceID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PracticeRepository) Update(practice *model.IsomorphicPractice) error {
	return r.DB.Save(practice).Error
}
