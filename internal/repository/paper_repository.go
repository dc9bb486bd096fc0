package repository

import (
	"exam_tutor_backend/internal/model"

	"gorm.io/gorm"
)

type PaperRepository struct {
	DB *gorm.DB
}

func NewPaperRepository(db *gorm.DB) *PaperRepository {
	return &PaperRepository{DB: db}
}

func (r *PaperRepository) Create(paper *model.Paper) error {
	return r.DB.Create(paper).Error
}

func (r *PaperRepository) FindByID(paperID string) (*model.Paper, error) {
	var p model.Paper
	if err := r.DB.Where("paper_id = ?", paperID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
