package graphics

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

func TestToRGBA_RebasesBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 13, 12))
	src.Set(10, 10, color.NRGBA{R: 255, A: 255})

	rgba := ToRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 3, 2), rgba.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgba.RGBAAt(0, 0))

	same := image.NewRGBA(image.Rect(0, 0, 2, 2))
	assert.Same(t, same, ToRGBA(same))
}

func TestScaleImage(t *testing.T) {
	scaled := ScaleImage(checkerboard(2), 8, 8, FilterNearest)
	assert.Equal(t, image.Rect(0, 0, 8, 8), scaled.Bounds())
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, scaled.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{A: 255}, scaled.RGBAAt(7, 0))
}

func TestNewTextureFromPixels_SizeMismatch(t *testing.T) {
	ctx, dev := newTestContext(t)
	res := ctx.NewResources("textures")
	defer res.Release()

	_, err := NewTextureFromPixels(res, "short", 2, 2, make([]byte, 15))
	assert.Error(t, err)
	assert.Equal(t, 0, dev.Stats().Allocations)

	tex, err := NewTextureFromPixels(res, "ok", 2, 2, make([]byte, 16))
	require.NoError(t, err)
	assert.Equal(t, FormatRGBA8UnormSrgb, tex.Format())
}

func TestNewTextureFromPixels_HugeSizeDoesNotWrap(t *testing.T) {
	ctx, dev := newTestContext(t)
	res := ctx.NewResources("textures")
	defer res.Release()

	// 65536 * 16384 * 4 is 1<<32, which is 0 in uint32 arithmetic.
	_, err := NewTextureFromPixels(res, "huge", 65536, 16384, nil)
	assert.ErrorContains(t, err, "0 bytes of pixels for 65536x16384")
	assert.Equal(t, 0, dev.Stats().Allocations)
}

func TestNewTextureFromPixels_WriteFailureFreesTexture(t *testing.T) {
	ctx, dev := newTestContext(t)
	res := ctx.NewResources("textures")
	defer res.Release()
	dev.FailWrite(errors.New("queue full"))

	_, err := NewTextureFromPixels(res, "doomed", 2, 2, make([]byte, 16))

	var devErr *DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, "write texture doomed", devErr.Op)
	assert.Equal(t, 0, res.Len())
	assert.Equal(t, 0, dev.Stats().LiveHandles)
}

func TestTextureCache_LoadOncePerPath(t *testing.T) {
	ctx, dev := newTestContext(t)
	res := ctx.NewResources("textures")
	defer res.Release()
	cache := NewTextureCache(res)

	path := filepath.Join(t.TempDir(), "checker.png")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, checkerboard(4)))
	require.NoError(t, file.Close())

	id, tex, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), tex.Width())

	again, same, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Same(t, tex, same)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 1, dev.Stats().Allocations)

	got, ok := cache.Get(id)
	assert.True(t, ok)
	assert.Same(t, tex, got)

	_, _, err = cache.Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
