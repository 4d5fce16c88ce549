package scanline

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestLoadColorImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := range 4 {
		img.SetRGBA(x, 1, color.RGBA{R: 30, G: 20, B: 10, A: 255})
	}
	src, err := Load(writePNG(t, img))
	require.NoError(t, err)

	assert.Equal(t, "CV_8UC3", src.Format)
	assert.Equal(t, 4, src.Grid.Width)
	assert.Equal(t, 2, src.Grid.Height)
	assert.Equal(t, Pixel{10, 20, 30}, src.Grid.At(2, 1))
	assert.Equal(t, Pixel{0, 0, 0}, src.Grid.At(2, 0))
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.jpg")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrUnsupportedFormat))
	assert.Contains(t, err.Error(), "not found")

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "Image '"+path+"' not found!", le.Message)
}

func TestLoadUndecodableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadGrayImageUnsupported(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 3))
	src, err := Load(writePNG(t, img))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "not supported")
	require.NotNil(t, src)
	assert.Equal(t, "CV_8UC1", src.Format)
	assert.Nil(t, src.Grid)
}

func TestFormatOf(t *testing.T) {
	r := image.Rect(0, 0, 1, 1)
	translucent := image.NewNRGBA(r)
	opaque := image.NewNRGBA(r)
	opaque.SetNRGBA(0, 0, color.NRGBA{A: 255})

	tests := []struct {
		img  image.Image
		want string
	}{
		{image.NewRGBA(r), "CV_8UC3"},
		{image.NewYCbCr(r, image.YCbCrSubsampleRatio420), "CV_8UC3"},
		{image.NewPaletted(r, color.Palette{color.Black}), "CV_8UC3"},
		{opaque, "CV_8UC3"},
		{translucent, "CV_8UC4"},
		{image.NewCMYK(r), "CV_8UC4"},
		{image.NewGray(r), "CV_8UC1"},
		{image.NewGray16(r), "CV_16UC1"},
		{image.NewRGBA64(r), "CV_16UC3"},
		{image.NewNRGBA64(r), "CV_16UC4"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatOf(tt.img), "%T", tt.img)
	}
}

func TestGridRGBARoundTrip(t *testing.T) {
	g := scenarioGrid()
	back := GridFromImage(g.RGBA())
	assert.Equal(t, g.Pix, back.Pix)
}
