package model

import (
	"encoding/json"
	"time"
)

const (
	PaperModeFixed      = "fixed"
	PaperModeEquivalent = "equivalent"
)

// Paper 生成的试卷，question_ids 为有序题目实例 id 列表，生成后不可变
type Paper struct {
	PaperID             string          `gorm:"primaryKey;type:varchar(36)" json:"paperId"`
	StudentID           string          `gorm:"size:64;index" json:"studentId"`
	QuestionBankVersion string          `gorm:"size:32;index" json:"questionBankVersion"`
	GenerationPolicy    string          `gorm:"size:20" json:"generationPolicy"`
	RandomSeed          *int64          `json:"randomSeed,omitempty"`
	ParamsJSON          json.RawMessage `gorm:"type:json" json:"paramsJson,omitempty"`
	QuestionIDs         json.RawMessage `gorm:"type:json" json:"questionIds"`
	CreatedAt           time.Time       `json:"createdAt"`
}

func (Paper) TableName() string {
	return "papers"
}

// QuestionIDList 解析 question_ids 列，保持存储顺序
func (p *Paper) QuestionIDList() []string {
	if len(p.QuestionIDs) == 0 {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(p.QuestionIDs, &ids); err != nil {
		return nil
	}
	return ids
}
