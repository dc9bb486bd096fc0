package model

import "time"

// Student 学生仅是一个不透明标识，首次请求组卷时惰性创建
type Student struct {
	StudentID string    `gorm:"primaryKey;type:varchar(64)" json:"studentId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Student) TableName() string {
	return "students"
}
