package model

import "time"

// IsomorphicPractice 同构再练：错题的同组变式题练习记录。
// 练习题与原题共享 isomorphic_group 且不等于原题。
type IsomorphicPractice struct {
	PracticeID               string `gorm:"primaryKey;type:varchar(36)" json:"practiceId"`
	OriginalSubmissionItemID uint   `gorm:"index" json:"originalSubmissionItemId"`
	StudentID                string `gorm:"size:64;index" json:"studentId"`
	QuestionDBID             string `gorm:"type:varchar(36);column:question_db_id" json:"questionId"`

	StudentAnswer string     `gorm:"type:text" json:"studentAnswer"`
	IsCorrect     bool       `json:"isCorrect"`
	SubmittedAt   *time.Time `json:"submittedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (IsomorphicPractice) TableName() string {
	return "isomorphic_practices"
}
