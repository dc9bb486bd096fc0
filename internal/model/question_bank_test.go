package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionOptionList(t *testing.T) {
	q := &Question{Options: json.RawMessage(`[{"id":"A","text":"1/x"},{"id":"B","text":"x"}]`)}

	opts := q.OptionList()
	require.Len(t, opts, 2)
	assert.Equal(t, "A", opts[0].ID)
	assert.Equal(t, "x", opts[1].Text)
}

func TestQuestionOptionListEmptyAndBroken(t *testing.T) {
	assert.Nil(t, (&Question{}).OptionList())
	assert.Nil(t, (&Question{Options: json.RawMessage(`{bad`)}).OptionList())
}

func TestQuestionKnowledgePointList(t *testing.T) {
	q := &Question{KnowledgePoints: json.RawMessage(`["limits","number e"]`)}
	assert.Equal(t, []string{"limits", "number e"}, q.KnowledgePointList())

	// 空与损坏都返回空列表而不是 nil
	assert.Equal(t, []string{}, (&Question{}).KnowledgePointList())
	assert.Equal(t, []string{}, (&Question{KnowledgePoints: json.RawMessage(`oops`)}).KnowledgePointList())
}

func TestQuestionJSONHidesCorrectAnswer(t *testing.T) {
	q := Question{DBID: "x", CorrectAnswer: "42"}
	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "42")
}

func TestGenerateHexID(t *testing.T) {
	id := GenerateHexID()
	assert.Len(t, id, 32)
	assert.NotContains(t, id, "-")
	assert.NotEqual(t, id, GenerateHexID())
}

func TestPaperQuestionIDList(t *testing.T) {
	p := &Paper{QuestionIDs: json.RawMessage(`["a","b","c"]`)}
	assert.Equal(t, []string{"a", "b", "c"}, p.QuestionIDList())
	assert.Nil(t, (&Paper{}).QuestionIDList())
	assert.Nil(t, (&Paper{QuestionIDs: json.RawMessage(`broken`)}).QuestionIDList())
}
