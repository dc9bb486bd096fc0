package repository

import (
	"exam_tutor_backend/internal/model"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

// EnsureExists 惰性建档：学生不存在时创建，已存在时不做任何修改
func (r *StudentRepository) EnsureExists(studentID string) error {
	student := model.Student{StudentID: studentID}
	return r.DB.Where("student_id = ?", studentID).FirstOrCreate(&student).Error
}
