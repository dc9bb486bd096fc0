package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"无围栏", `{"a":1}`, `{"a":1}`},
		{"json围栏", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"裸围栏", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"围栏外有废话", "Here you go:\n```json\n{\"a\":1}\n```\nHope it helps!", `{"a":1}`},
		{"前后空白", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.content))
		})
	}
}

func TestNormalizeDiagnosisErrorType(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want string
	}{
		{"白名单原样保留", "Careless Error", ErrorTypeCareless},
		{"关键字 procedure", "procedure mistake", ErrorTypeProcedural},
		{"关键字 step", "wrong step taken", ErrorTypeProcedural},
		{"关键字 calculation", "calculation slip-up", ErrorTypeComputational},
		{"关键字 approach", "wrong approach", ErrorTypeStrategy},
		{"关键字 typo", "just a typo", ErrorTypeCareless},
		{"未知值落到概念错误", "mystery", ErrorTypeConceptual},
		{"非字符串落到概念错误", 42, ErrorTypeConceptual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := normalizeDiagnosis(map[string]interface{}{"primary_error_type": tt.raw}, 1, "outline")
			assert.Equal(t, tt.want, d.PrimaryErrorType)
		})
	}
}

func TestNormalizeDiagnosisDefaults(t *testing.T) {
	d := normalizeDiagnosis(map[string]interface{}{}, 2, "Power rule: d/dx x^n = n x^{n-1}.")

	assert.Equal(t, ErrorTypeConceptual, d.PrimaryErrorType)
	assert.Equal(t, "Your answer does not match the expected reasoning.", d.ErrorExplanation)
	assert.Equal(t, 2, d.HintLevel)
	assert.Contains(t, d.Hint, "Power rule")
	assert.NotNil(t, d.RecommendedKnowledgePoints)
	assert.Empty(t, d.RecommendedKnowledgePoints)
}

func TestNormalizeDiagnosisKnowledgePoints(t *testing.T) {
	t.Run("逗号分隔字符串拆分", func(t *testing.T) {
		d := normalizeDiagnosis(map[string]interface{}{
			"recommended_knowledge_points": "chain rule, derivatives",
		}, 1, "")
		assert.Equal(t, []string{"chain rule", "derivatives"}, d.RecommendedKnowledgePoints)
	})

	t.Run("列表过滤空白项", func(t *testing.T) {
		d := normalizeDiagnosis(map[string]interface{}{
			"recommended_knowledge_points": []interface{}{"limits", "", nil, "  "},
		}, 1, "")
		assert.Equal(t, []string{"limits"}, d.RecommendedKnowledgePoints)
	})
}

func TestFallbackDiagnosis(t *testing.T) {
	tests := []struct {
		name    string
		correct string
		student string
		want    string
	}{
		{"空答案归为策略错误", "1", "", ErrorTypeStrategy},
		{"数值几乎相等归为粗心", "1", "1.0000001", ErrorTypeCareless},
		{"数值相对误差小归为计算错误", "100", "98", ErrorTypeComputational},
		{"数值差距大归为概念错误", "100", "42", ErrorTypeConceptual},
		{"非数值归为概念错误", "e", "pi", ErrorTypeConceptual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := fallbackDiagnosis(tt.correct, tt.student, "outline", 1)
			assert.Equal(t, tt.want, d.PrimaryErrorType)
		})
	}
}

func TestFallbackDiagnosisHintLevels(t *testing.T) {
	h1 := fallbackDiagnosis("1", "2", "the outline", 1).Hint
	h2 := fallbackDiagnosis("1", "2", "the outline", 2).Hint
	h3 := fallbackDiagnosis("1", "2", "the outline", 3).Hint

	assert.True(t, strings.HasPrefix(h1, "Revisit"))
	assert.True(t, strings.HasPrefix(h2, "Identify"))
	assert.True(t, strings.HasPrefix(h3, "Compare"))
}

func TestFallbackDiagnosisEmptyOutline(t *testing.T) {
	d := fallbackDiagnosis("1", "2", "   ", 1)
	assert.Contains(t, d.Hint, "the relevant concept")
	assert.Equal(t, []string{"the relevant concept"}, d.RecommendedKnowledgePoints)
}

func TestBuildFallbackQuestions(t *testing.T) {
	qs := BuildFallbackQuestions("Algebra", 10)
	require.Len(t, qs, 10)

	// 池中 7 题循环取用，id 带序号后缀
	assert.Equal(t, "draft_limit_sin_over_x_1", qs[0]["id"])
	assert.Equal(t, "draft_limit_sin_over_x_8", qs[7]["id"])
	for i, q := range qs {
		assert.Equal(t, "Algebra", q["topic"])
		assert.Equal(t, true, q["is_fallback"])
		assert.True(t, strings.HasSuffix(q["id"].(string), fmt.Sprintf("_%d", i+1)))
	}
}

func TestBuildFallbackQuestionsDefaultTopic(t *testing.T) {
	qs := BuildFallbackQuestions("", 1)
	require.Len(t, qs, 1)
	assert.Equal(t, "Calculus", qs[0]["topic"])
}

func TestBuildFallbackQuestionsDoesNotMutatePool(t *testing.T) {
	first := BuildFallbackQuestions("X", 1)
	second := BuildFallbackQuestions("X", 1)
	assert.Equal(t, first[0]["id"], second[0]["id"])
}
