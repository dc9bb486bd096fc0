package service

import (
	"testing"

	"exam_tutor_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCOptionID(t *testing.T) {
	assert.Equal(t, "A", mcOptionID(0))
	assert.Equal(t, "D", mcOptionID(3))
	assert.Equal(t, "Z", mcOptionID(25))
	// 超过 26 个选项后退化为序号
	assert.Equal(t, "27", mcOptionID(26))
}

func TestDifficultyBucket(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"合法整数", 3, "3"},
		{"JSON 数字", float64(5), "5"},
		{"越界整数", 9, "other"},
		{"easy 映射", "easy", "1"},
		{"medium 映射", "Medium", "3"},
		{"hard 映射", "HARD", "5"},
		{"未知字符串", "insane", "other"},
		{"缺失", nil, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, difficultyBucket(tt.in))
		})
	}
}

func TestNormalizeDraftFillsMissingFields(t *testing.T) {
	q := NormalizeDraft(map[string]interface{}{"stem": "What is 1+1?"}, "Arithmetic")

	id, ok := q["id"].(string)
	require.True(t, ok)
	assert.Len(t, id, 32)
	assert.Equal(t, "Arithmetic", q["topic"])
	assert.Equal(t, model.QuestionTypeShortAnswer, q["type"])
	assert.Equal(t, "", q["correct_answer"])
	assert.Equal(t, []interface{}{}, q["knowledge_points"])
}

func TestNormalizeDraftNumericID(t *testing.T) {
	q := NormalizeDraft(map[string]interface{}{"id": float64(42)}, "T")
	assert.Equal(t, "42", q["id"])
}

func TestNormalizeDraftDifficultyWords(t *testing.T) {
	q := NormalizeDraft(map[string]interface{}{"difficulty": "hard"}, "T")
	assert.Equal(t, 5, q["difficulty"])

	q = NormalizeDraft(map[string]interface{}{"difficulty": float64(2)}, "T")
	assert.Equal(t, 2, q["difficulty"])
}

func TestNormalizeDraftStringOptions(t *testing.T) {
	q := NormalizeDraft(map[string]interface{}{
		"type":           "multiple_choice",
		"options":        []interface{}{"1/x", "x", "ln x"},
		"correct_answer": "1/x",
	}, "T")

	opts, ok := q["options"].([]interface{})
	require.True(t, ok)
	require.Len(t, opts, 3)

	first := opts[0].(map[string]interface{})
	assert.Equal(t, "A", first["id"])
	assert.Equal(t, "1/x", first["text"])

	// 答案文本已回写为命中选项的 id
	assert.Equal(t, "A", q["correct_answer"])
}

func TestNormalizeDraftObjectOptionsMissingIDs(t *testing.T) {
	q := NormalizeDraft(map[string]interface{}{
		"type": "multiple_choice",
		"options": []interface{}{
			map[string]interface{}{"text": "yes"},
			map[string]interface{}{"id": "  ", "text": "no"},
		},
		"correct_answer": "no",
	}, "T")

	opts := q["options"].([]interface{})
	assert.Equal(t, "A", opts[0].(map[string]interface{})["id"])
	assert.Equal(t, "B", opts[1].(map[string]interface{})["id"])
	assert.Equal(t, "B", q["correct_answer"])
}

func TestNormalizeDraftMCWithoutOptions(t *testing.T) {
	q := NormalizeDraft(map[string]interface{}{
		"type":           "multiple_choice",
		"correct_answer": " C ",
	}, "T")

	assert.Equal(t, []interface{}{}, q["options"])
	assert.Equal(t, "C", q["correct_answer"])
}

func TestNormalizeDraftKnowledgePoints(t *testing.T) {
	t.Run("逗号字符串拆分", func(t *testing.T) {
		q := NormalizeDraft(map[string]interface{}{"knowledge_points": "limits, derivatives , "}, "T")
		assert.Equal(t, []interface{}{"limits", "derivatives"}, q["knowledge_points"])
	})

	t.Run("列表清洗空项", func(t *testing.T) {
		q := NormalizeDraft(map[string]interface{}{
			"knowledge_points": []interface{}{"a", nil, "", "b"},
		}, "T")
		assert.Equal(t, []interface{}{"a", "b"}, q["knowledge_points"])
	})
}

func TestNormalizeDraftCoercesTextFields(t *testing.T) {
	q := NormalizeDraft(map[string]interface{}{
		"stem":             float64(3),
		"isomorphic_group": float64(7),
	}, "T")
	assert.Equal(t, "3", q["stem"])
	assert.Equal(t, "7", q["isomorphic_group"])
}

func TestSortedBuckets(t *testing.T) {
	buckets := sortedBuckets(map[string]int{"b": 2, "a": 2, "c": 5})
	require.Len(t, buckets, 3)
	// count 降序，同 count 按 key 升序
	assert.Equal(t, DraftStatBucket{Key: "c", Count: 5}, buckets[0])
	assert.Equal(t, DraftStatBucket{Key: "a", Count: 2}, buckets[1])
	assert.Equal(t, DraftStatBucket{Key: "b", Count: 2}, buckets[2])
}

func TestDisplayHelpers(t *testing.T) {
	assert.Equal(t, DefaultTopic, displayTopic(map[string]interface{}{"topic": "  "}))
	assert.Equal(t, "Calculus", displayTopic(map[string]interface{}{"topic": "Calculus"}))
	assert.Equal(t, "unknown", displayType(map[string]interface{}{}))

	d := displayDifficulty(map[string]interface{}{"difficulty": "4"})
	require.NotNil(t, d)
	assert.Equal(t, 4, *d)
	assert.Nil(t, displayDifficulty(map[string]interface{}{"difficulty": "n/a"}))
}
