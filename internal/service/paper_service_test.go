package service

import (
	"testing"

	"exam_tutor_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCandidates() []model.Question {
	return []model.Question{
		{DBID: "q1", OriginalID: "o1", IsomorphicGroup: "g1"},
		{DBID: "q2", OriginalID: "o2", IsomorphicGroup: "g1"},
		{DBID: "q3", OriginalID: "o3", IsomorphicGroup: "g2"},
		{DBID: "q4", OriginalID: "o4", IsomorphicGroup: "g2"},
		{DBID: "q5", OriginalID: "o5", IsomorphicGroup: "g3"},
		{DBID: "q6", OriginalID: "o6", IsomorphicGroup: ""},
	}
}

func TestSelectEquivalentDeterministicWithSeed(t *testing.T) {
	seed := int64(42)

	first := selectEquivalent(makeCandidates(), 3, &seed)
	second := selectEquivalent(makeCandidates(), 3, &seed)

	require.Len(t, first, 3)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].DBID, second[i].DBID)
	}
}

func TestSelectEquivalentIndependentOfInputOrder(t *testing.T) {
	seed := int64(7)

	candidates := makeCandidates()
	reversed := make([]model.Question, len(candidates))
	for i, q := range candidates {
		reversed[len(candidates)-1-i] = q
	}

	first := selectEquivalent(candidates, 4, &seed)
	second := selectEquivalent(reversed, 4, &seed)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].DBID, second[i].DBID)
	}
}

func TestSelectEquivalentMemberPickIndependentOfMemberOrder(t *testing.T) {
	// 单组多成员：代表题只由种子决定，与成员在候选集中的排列无关
	members := []model.Question{
		{DBID: "q1", OriginalID: "o1", IsomorphicGroup: "g1"},
		{DBID: "q2", OriginalID: "o2", IsomorphicGroup: "g1"},
		{DBID: "q3", OriginalID: "o3", IsomorphicGroup: "g1"},
	}
	orderings := [][]model.Question{
		{members[0], members[1], members[2]},
		{members[2], members[1], members[0]},
		{members[1], members[2], members[0]},
	}

	for seed := int64(0); seed < 20; seed++ {
		s := seed
		base := selectEquivalent(orderings[0], 1, &s)
		require.Len(t, base, 1)
		for _, ordering := range orderings[1:] {
			got := selectEquivalent(ordering, 1, &s)
			require.Len(t, got, 1)
			assert.Equal(t, base[0].DBID, got[0].DBID, "seed %d", seed)
		}
	}
}

func TestSelectEquivalentOnePerGroup(t *testing.T) {
	seed := int64(1)
	selected := selectEquivalent(makeCandidates(), 10, &seed)

	// 4 组（g1 g2 g3 + 无组单题），每组至多一题
	require.Len(t, selected, 4)
	seen := map[string]bool{}
	for _, q := range selected {
		g := q.IsomorphicGroup
		if g == "" {
			g = "ungrouped_" + q.OriginalID
		}
		assert.False(t, seen[g], "group %s selected twice", g)
		seen[g] = true
	}
}

func TestSelectEquivalentCountLimit(t *testing.T) {
	seed := int64(3)
	selected := selectEquivalent(makeCandidates(), 2, &seed)
	assert.Len(t, selected, 2)
}

func TestSelectEquivalentEmptyCandidates(t *testing.T) {
	seed := int64(3)
	selected := selectEquivalent(nil, 5, &seed)
	assert.Empty(t, selected)
}

func TestSelectEquivalentUngroupedAreSingletons(t *testing.T) {
	candidates := []model.Question{
		{DBID: "a", OriginalID: "oa", IsomorphicGroup: ""},
		{DBID: "b", OriginalID: "ob", IsomorphicGroup: ""},
	}
	seed := int64(9)
	selected := selectEquivalent(candidates, 10, &seed)
	// 无组题各自成组，不互斥
	assert.Len(t, selected, 2)
}

func TestToQuestionPublicHidesAnswer(t *testing.T) {
	q := &model.Question{
		DBID:          "db1",
		OriginalID:    "orig1",
		Stem:          "Compute d/dx of x^3",
		Type:          model.QuestionTypeShortAnswer,
		CorrectAnswer: "3x^2",
		Topic:         "Calculus",
		Difficulty:    2,
	}

	pub := toQuestionPublic(q)
	assert.Equal(t, "db1", pub.ID)
	assert.Equal(t, "orig1", pub.OriginalID)
	assert.NotNil(t, pub.KnowledgePoints)
	// QuestionPublic 结构体没有答案字段，序列化不会泄露
}
