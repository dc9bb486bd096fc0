package model

import (
	"encoding/json"
	"time"
)

// Submission 一次判卷记录，total_score 等于各 item 分数之和
type Submission struct {
	SubmissionID   string    `gorm:"primaryKey;type:varchar(36)" json:"submissionId"`
	StudentID      string    `gorm:"size:64;index" json:"studentId"`
	PaperID        string    `gorm:"type:varchar(36);index" json:"paperId"`
	TotalScore     float64   `json:"totalScore"`
	TotalQuestions int       `json:"totalQuestions"`
	SubmittedAt    time.Time `gorm:"autoCreateTime" json:"submittedAt"`
}

func (Submission) TableName() string {
	return "submissions"
}

// SubmissionItem 单题判定结果；错题的诊断字段允许在提示升级时原地更新
type SubmissionItem struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SubmissionID string `gorm:"type:varchar(36);index" json:"submissionId"`
	QuestionDBID string `gorm:"type:varchar(36);index;column:question_db_id" json:"questionId"`

	StudentAnswer string  `gorm:"type:text" json:"studentAnswer"`
	IsCorrect     bool    `json:"isCorrect"`
	Score         float64 `json:"score"`

	// AI 诊断
	ErrorType          string          `gorm:"size:50" json:"errorType,omitempty"`
	ExplanationText    string          `gorm:"type:text" json:"explanationText,omitempty"`
	HintLevelRequested int             `gorm:"default:0" json:"hintLevelRequested"`
	CurrentHint        string          `gorm:"type:text" json:"currentHint,omitempty"`
	AnalysisJSON       json.RawMessage `gorm:"type:json" json:"analysisJson,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (SubmissionItem) TableName() string {
	return "submission_items"
}
