package covers

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestCover(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 12))
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, img))
	return path
}

func TestResolver_Resolve(t *testing.T) {
	dir := t.TempDir()
	writeTestCover(t, dir, "book_1.png")

	r := NewResolver(dir)

	path, ok := r.Resolve("covers/book_1.png")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "book_1.png"), path)

	_, ok = r.Resolve("covers/missing.png")
	assert.False(t, ok, "missing file must not resolve")

	_, ok = r.Resolve("")
	assert.False(t, ok)
}

func TestResolver_EmptyBaseDirDisablesResolution(t *testing.T) {
	r := NewResolver("")
	_, ok := r.Resolve("book_1.png")
	assert.False(t, ok)
	assert.Empty(t, r.BlurHash("book_1.png"))
}

func TestComputeBlurHash(t *testing.T) {
	dir := t.TempDir()
	path := writeTestCover(t, dir, "cover.png")

	hash, err := ComputeBlurHash(path)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}

func TestResolver_BlurHash_MissingCoverIsEmpty(t *testing.T) {
	r := NewResolver(t.TempDir())
	assert.Empty(t, r.BlurHash("nope.jpg"))
}
