package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"exam_tutor_backend/internal/repository"
	"exam_tutor_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftBank(t *testing.T, content string) *repository.DraftRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return repository.NewDraftRepository(path)
}

// 自动冻结失败时的错误区分：文件缺失是 404，文件存在但不可冻结要透传冻结自身的前置条件错误
func TestFreezeForLatestMissingFile(t *testing.T) {
	repo := repository.NewDraftRepository(filepath.Join(t.TempDir(), "absent.json"))
	svc := NewBankService(nil, repo, nil, nil)

	_, err := svc.freezeForLatest(context.Background())
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestFreezeForLatestInvalidJSONPropagates(t *testing.T) {
	svc := NewBankService(nil, newDraftBank(t, "{not json"), nil, nil)

	_, err := svc.freezeForLatest(context.Background())
	assert.ErrorIs(t, err, util.ErrInvalidState)
	assert.NotErrorIs(t, err, util.ErrNotFound)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestFreezeForLatestEmptyBankPropagates(t *testing.T) {
	svc := NewBankService(nil, newDraftBank(t, `[{"id":"f1","is_fallback":true}]`), nil, nil)

	_, err := svc.freezeForLatest(context.Background())
	assert.ErrorIs(t, err, util.ErrEmptyQuestionBank)
	assert.NotErrorIs(t, err, util.ErrNotFound)
}
