package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pasfotoBounds = Bounds{MinW: 276, MinH: 355, MaxW: 551, MaxH: 709}

func encodeTestImage(t *testing.T, w, h int, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	switch format {
	case "jpeg":
		require.NoError(t, jpeg.Encode(buf, img, &jpeg.Options{Quality: 90}))
	case "png":
		require.NoError(t, png.Encode(buf, img))
	default:
		t.Fatalf("unknown format %s", format)
	}
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestNormalizeScalesUpSmallImage(t *testing.T) {
	res, err := Normalize(encodeTestImage(t, 100, 100, "jpeg"), pasfotoBounds)
	require.NoError(t, err)

	assert.True(t, res.Resized)
	assert.Equal(t, 100, res.OrigW)
	assert.Equal(t, 100, res.OrigH)
	assert.Equal(t, 355, res.Width)
	assert.Equal(t, 355, res.Height)

	w, h := decodedSize(t, res.Data)
	assert.Equal(t, 355, w)
	assert.Equal(t, 355, h)
}

func TestNormalizeScalesDownLargeImage(t *testing.T) {
	res, err := Normalize(encodeTestImage(t, 1102, 1418, "png"), pasfotoBounds)
	require.NoError(t, err)

	assert.True(t, res.Resized)
	assert.Equal(t, 551, res.Width)
	assert.Equal(t, 709, res.Height)
	assert.Equal(t, "png", res.Format)
}

func TestNormalizePassThroughInsideBounds(t *testing.T) {
	res, err := Normalize(encodeTestImage(t, 400, 500, "jpeg"), pasfotoBounds)
	require.NoError(t, err)

	assert.False(t, res.Resized)
	assert.Equal(t, 400, res.Width)
	assert.Equal(t, 500, res.Height)

	w, h := decodedSize(t, res.Data)
	assert.Equal(t, 400, w)
	assert.Equal(t, 500, h)
}

func TestNormalizePreservesAspectRatio(t *testing.T) {
	// 50x100 is 1:2; scale up keeps it 1:2 and lands both axes at or
	// above the minimum.
	res, err := Normalize(encodeTestImage(t, 50, 100, "jpeg"), pasfotoBounds)
	require.NoError(t, err)

	assert.True(t, res.Resized)
	assert.GreaterOrEqual(t, res.Width, pasfotoBounds.MinW)
	assert.GreaterOrEqual(t, res.Height, pasfotoBounds.MinH)
	assert.LessOrEqual(t, res.Width, pasfotoBounds.MaxW)
	assert.LessOrEqual(t, res.Height, pasfotoBounds.MaxH)
	assert.InDelta(t, 0.5, float64(res.Width)/float64(res.Height), 0.01)
}

func TestNormalizeRejectsNonImageBytes(t *testing.T) {
	_, err := Normalize([]byte("%PDF-1.7 definitely not an image"), pasfotoBounds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestNormalizeRejectsEmptyInput(t *testing.T) {
	_, err := Normalize(nil, pasfotoBounds)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}
