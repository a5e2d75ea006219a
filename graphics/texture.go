package graphics

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type AssetID string

func makeAssetID() AssetID {
	return AssetID(uuid.NewString())
}

// ToRGBA returns img as tightly packed RGBA rooted at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// ScaleImage resamples img to width x height with the given filter.
func ScaleImage(img image.Image, width, height int, filter FilterMode) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	var scaler draw.Scaler = draw.NearestNeighbor
	if filter == FilterLinear {
		scaler = draw.BiLinear
	}
	scaler.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// NewTexture uploads img as an sRGB RGBA texture owned by res.
func NewTexture(res *Resources, label string, img image.Image) (Texture, error) {
	rgba := ToRGBA(img)
	return NewTextureFromPixels(res, label, uint32(rgba.Rect.Dx()), uint32(rgba.Rect.Dy()), rgba.Pix)
}

func NewTextureFromPixels(res *Resources, label string, width, height uint32, pix []byte) (Texture, error) {
	if want := uint64(width) * uint64(height) * 4; uint64(len(pix)) != want {
		return nil, fmt.Errorf("texture %q: %d bytes of pixels for %dx%d", label, len(pix), width, height)
	}
	tex, err := res.CreateTexture(TextureDescriptor{
		Label:  label,
		Width:  width,
		Height: height,
		Format: FormatRGBA8UnormSrgb,
		Usage:  TextureUsageBinding | TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	if err := res.ctx.device.WriteTexture(tex, pix); err != nil {
		res.Free(tex)
		return nil, &DeviceError{Op: "write texture " + label, Err: err}
	}
	return tex, nil
}

// TextureCache loads image files once per path.
type TextureCache struct {
	res      *Resources
	byPath   map[string]AssetID
	textures map[AssetID]Texture
}

func NewTextureCache(res *Resources) *TextureCache {
	return &TextureCache{
		res:      res,
		byPath:   map[string]AssetID{},
		textures: map[AssetID]Texture{},
	}
}

// Load decodes png, jpeg, bmp or webp files. Repeated loads of the same path
// return the cached texture.
func (c *TextureCache) Load(path string) (AssetID, Texture, error) {
	if id, ok := c.byPath[path]; ok {
		return id, c.textures[id], nil
	}

	file, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return "", nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return c.add(path, img)
}

// Add uploads an in-memory image under a fresh id.
func (c *TextureCache) Add(label string, img image.Image) (AssetID, Texture, error) {
	return c.add(label, img)
}

func (c *TextureCache) add(key string, img image.Image) (AssetID, Texture, error) {
	tex, err := NewTexture(c.res, key, img)
	if err != nil {
		return "", nil, err
	}
	id := makeAssetID()
	c.byPath[key] = id
	c.textures[id] = tex
	return id, tex, nil
}

func (c *TextureCache) Get(id AssetID) (Texture, bool) {
	tex, ok := c.textures[id]
	return tex, ok
}

func (c *TextureCache) Len() int { return len(c.textures) }
