package capture

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPhoto(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 120, 160))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}

	path := filepath.Join(t.TempDir(), "photo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestFileSourceEmpty(t *testing.T) {
	src := NewFileSource()
	_, err := src.Frame(context.Background())
	assert.Error(t, err, "a source with no photo loaded has no frame")
	assert.Empty(t, src.Path())
}

func TestFileSourceLoadsPhoto(t *testing.T) {
	src := NewFileSource()
	path := writeTestPhoto(t)

	require.NoError(t, src.SetPath(path))
	assert.Equal(t, path, src.Path())

	frame, err := src.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, frame.Bounds().Dx())
	assert.Equal(t, 160, frame.Bounds().Dy())
}

func TestFileSourceRejectsBadFile(t *testing.T) {
	src := NewFileSource()
	path := filepath.Join(t.TempDir(), "not_a_photo.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	assert.Error(t, src.SetPath(path))
	assert.Empty(t, src.Path(), "a failed load must not replace the current photo")
}

func TestBridgeSourceNoFrameYet(t *testing.T) {
	b := NewBridgeSource()
	_, err := b.Frame(context.Background())
	assert.Error(t, err)
	assert.False(t, b.Connected())
}
