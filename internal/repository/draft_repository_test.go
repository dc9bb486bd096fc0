package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	repo := NewDraftRepository(path)

	drafts := []map[string]interface{}{
		{"id": "d1", "stem": "Compute d/dx of x^3"},
		{"id": "d2", "stem": "Evaluate lim_{n->∞} (1 + 1/n)^n", "topic": "微积分"},
	}
	require.NoError(t, repo.Save(drafts))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "d1", loaded[0]["id"])
	assert.Equal(t, "微积分", loaded[1]["topic"])
}

func TestDraftRepositoryMissingFile(t *testing.T) {
	repo := NewDraftRepository(filepath.Join(t.TempDir(), "absent.json"))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)

	_, err = repo.LoadRaw()
	assert.True(t, os.IsNotExist(err))
}

func TestDraftRepositoryMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo := NewDraftRepository(path)
	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestDraftRepositoryNonListTopLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"x"}`), 0o644))

	repo := NewDraftRepository(path)
	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestDraftRepositoryFiltersNonObjects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"a"}, "junk", 42, {"id":"b"}]`), 0o644))

	repo := NewDraftRepository(path)
	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "a", loaded[0]["id"])
	assert.Equal(t, "b", loaded[1]["id"])
}

func TestDraftRepositorySaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "questions.json")
	repo := NewDraftRepository(path)

	require.NoError(t, repo.Save([]map[string]interface{}{{"id": "d1"}}))

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}
