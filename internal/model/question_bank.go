package model

import (
	"encoding/json"
	"time"
)

const (
	QuestionTypeShortAnswer    = "short_answer"
	QuestionTypeMultipleChoice = "multiple_choice"
)

// QuestionBankVersion 题库冻结版本，version_id 为草稿文件内容哈希，冻结后不可变
type QuestionBankVersion struct {
	VersionID   string    `gorm:"primaryKey;type:varchar(32)" json:"versionId"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (QuestionBankVersion) TableName() string {
	return "question_bank_versions"
}

// QuestionOption 选择题选项
type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question 冻结后的题目实例，(version_id, original_id) 唯一，冻结后只读
type Question struct {
	DBID             string          `gorm:"primaryKey;type:varchar(36);column:db_id" json:"id"`
	OriginalID       string          `gorm:"size:191;uniqueIndex:uq_question_version_original,priority:2" json:"originalId"`
	VersionID        string          `gorm:"size:32;index;uniqueIndex:uq_question_version_original,priority:1" json:"versionId"`
	Stem             string          `gorm:"type:text" json:"stem"`
	Type             string          `gorm:"size:50" json:"type"`
	Options          json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	CorrectAnswer    string          `gorm:"type:text" json:"-"`
	Topic            string          `gorm:"size:255;index" json:"topic"`
	Difficulty       int             `json:"difficulty"`
	ReferenceOutline string          `gorm:"type:text" json:"referenceOutline"`
	IsomorphicGroup  string          `gorm:"size:191;index" json:"isomorphicGroup"`
	KnowledgePoints  json.RawMessage `gorm:"type:json" json:"knowledgePoints"`
	CreatedAt        time.Time       `json:"createdAt"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList 解析 options 列，损坏或为空时返回 nil
func (q *Question) OptionList() []QuestionOption {
	if len(q.Options) == 0 {
		return nil
	}
	var opts []QuestionOption
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}

// KnowledgePointList 解析 knowledge_points 列，损坏或为空时返回空列表
func (q *Question) KnowledgePointList() []string {
	if len(q.KnowledgePoints) == 0 {
		return []string{}
	}
	var kps []string
	if err := json.Unmarshal(q.KnowledgePoints, &kps); err != nil {
		return []string{}
	}
	return kps
}
