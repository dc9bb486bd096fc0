package service

import (
	"testing"

	"exam_tutor_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCheckAnswerMultipleChoice(t *testing.T) {
	q := &model.Question{Type: model.QuestionTypeMultipleChoice, CorrectAnswer: "A"}

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"精确匹配", "A", true},
		{"小写选项", "a", true},
		{"带空格", "  A  ", true},
		{"错误选项", "B", false},
		{"空答案", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkAnswer(q, tt.answer))
		})
	}
}

func TestCheckAnswerShortAnswer(t *testing.T) {
	tests := []struct {
		name    string
		correct string
		answer  string
		want    bool
	}{
		{"数值相等", "1", "1", true},
		{"数值容差内", "1", "1.0000001", true},
		{"数值容差外", "1", "1.01", false},
		{"小数形式等价", "0.5", "0.50", true},
		{"文本大小写不敏感", "3x^2", "3X^2", true},
		{"文本带空格", "e", "  e  ", true},
		{"文本不匹配", "e", "pi", false},
		{"空答案", "1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &model.Question{Type: model.QuestionTypeShortAnswer, CorrectAnswer: tt.correct}
			assert.Equal(t, tt.want, checkAnswer(q, tt.answer))
		})
	}
}

func TestCheckAnswerUnknownType(t *testing.T) {
	q := &model.Question{Type: "essay", CorrectAnswer: "whatever"}
	assert.False(t, checkAnswer(q, "whatever"))
}

func TestRepeatedErrorAlerts(t *testing.T) {
	t.Run("无重复无提醒", func(t *testing.T) {
		alerts := repeatedErrorAlerts([]string{ErrorTypeConceptual, ErrorTypeCareless})
		assert.Empty(t, alerts)
	})

	t.Run("第二次出现时恰好产生一条", func(t *testing.T) {
		alerts := repeatedErrorAlerts([]string{
			ErrorTypeConceptual,
			ErrorTypeConceptual,
			ErrorTypeConceptual,
		})
		assert.Len(t, alerts, 1)
		assert.Contains(t, alerts[0], "Conceptual Error")
	})

	t.Run("多类重复各一条", func(t *testing.T) {
		alerts := repeatedErrorAlerts([]string{
			ErrorTypeConceptual,
			ErrorTypeCareless,
			ErrorTypeConceptual,
			ErrorTypeCareless,
		})
		assert.Len(t, alerts, 2)
	})

	t.Run("空输入返回空切片", func(t *testing.T) {
		alerts := repeatedErrorAlerts(nil)
		assert.NotNil(t, alerts)
		assert.Empty(t, alerts)
	})
}
