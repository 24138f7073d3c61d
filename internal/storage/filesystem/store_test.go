package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestSaveAndDelete(t *testing.T) {
	store := newTestStore(t)

	relPath, err := store.Save(CategoryLetters, "report.pdf", []byte("content"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(relPath, "letters/"))
	assert.True(t, strings.HasSuffix(relPath, "_report.pdf"))
	assert.True(t, store.Exists(relPath))

	fullPath, err := store.Resolve(relPath)
	require.NoError(t, err)
	data, err := os.ReadFile(fullPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)

	require.NoError(t, store.Delete(relPath))
	assert.False(t, store.Exists(relPath))

	// 幂等：再次删除不报错
	require.NoError(t, store.Delete(relPath))
}

func TestSaveUniqueNames(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save(CategoryNews, "cover.png", []byte("a"))
	require.NoError(t, err)
	second, err := store.Save(CategoryNews, "cover.png", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same original name must not collide")
}

func TestSaveSanitizesFilename(t *testing.T) {
	store := newTestStore(t)

	relPath, err := store.Save(CategoryPhotos, "../../../etc/passwd", []byte("x"))
	require.NoError(t, err)

	fullPath, err := store.Resolve(relPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fullPath, store.BasePath()),
		"saved file must stay under the base path")
	assert.Equal(t, CategoryPhotos, filepath.Base(filepath.Dir(fullPath)))
}

func TestResolveRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Resolve("../outside.txt")
	assert.ErrorIs(t, err, ErrUnsafePath)

	_, err = store.Resolve("/etc/passwd")
	assert.ErrorIs(t, err, ErrUnsafePath)

	err = store.Delete("letters/../../x")
	assert.ErrorIs(t, err, ErrUnsafePath)
}

func TestDeleteEmptyPathIsNoop(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Delete(""))
}
