// Package preview renders top-down heightmap images of generated terrain.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/OCharnyshevich/voxel-terrain/internal/world"
	"github.com/OCharnyshevich/voxel-terrain/internal/world/gen"
)

// Stop is one control point of a color ramp.
type Stop struct {
	Height float64
	Color  colorful.Color
}

// Ramp maps normalized heights to colors by blending control points in
// CIE-Lab space.
type Ramp []Stop

// TerrainRamp runs from deep water through sand and grass to rock and snow.
var TerrainRamp = Ramp{
	{0.00, colorful.Color{R: 0.05, G: 0.12, B: 0.35}},
	{0.30, colorful.Color{R: 0.16, G: 0.42, B: 0.70}},
	{0.36, colorful.Color{R: 0.86, G: 0.80, B: 0.56}},
	{0.45, colorful.Color{R: 0.35, G: 0.62, B: 0.25}},
	{0.70, colorful.Color{R: 0.20, G: 0.40, B: 0.16}},
	{0.85, colorful.Color{R: 0.48, G: 0.45, B: 0.42}},
	{1.00, colorful.Color{R: 0.97, G: 0.97, B: 0.99}},
}

// At returns the ramp color for h in [0, 1].
func (r Ramp) At(h float64) color.NRGBA {
	if len(r) == 0 {
		return color.NRGBA{A: 0xff}
	}
	c := r[len(r)-1].Color
	switch {
	case h <= r[0].Height:
		c = r[0].Color
	case h < r[len(r)-1].Height:
		for i := 1; i < len(r); i++ {
			if h <= r[i].Height {
				lo, hi := r[i-1], r[i]
				c = lo.Color.BlendLab(hi.Color, (h-lo.Height)/(hi.Height-lo.Height))
				break
			}
		}
	}
	cr, cg, cb := c.Clamped().RGB255()
	return color.NRGBA{R: cr, G: cg, B: cb, A: 0xff}
}

// Render draws the heightmap of every chunk within radius of center. Each
// column becomes one pixel before the image is resampled so that a chunk
// spans pixelsPerChunk pixels.
func Render(v *gen.Voxelizer, ramp Ramp, center world.ChunkCoord, radius, pixelsPerChunk int) (*image.NRGBA, error) {
	if radius < 0 || pixelsPerChunk <= 0 {
		return nil, fmt.Errorf("radius %d, pixels per chunk %d: %w", radius, pixelsPerChunk, world.ErrInvalidConfiguration)
	}
	size := v.Biome().ChunkSize
	side := 2*radius + 1

	src := image.NewNRGBA(image.Rect(0, 0, side*size, side*size))
	for cz := 0; cz < side; cz++ {
		for cx := 0; cx < side; cx++ {
			coord := world.ChunkCoord{
				X: center.X + int32(cx-radius),
				Y: center.Y,
				Z: center.Z + int32(cz-radius),
			}
			for i, h := range v.Heights(coord) {
				src.SetNRGBA(cx*size+i%size, cz*size+i/size, ramp.At(h))
			}
		}
	}

	if pixelsPerChunk == size {
		return src, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, side*pixelsPerChunk, side*pixelsPerChunk))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// EncodeWebP writes img as a lossless WebP image.
func EncodeWebP(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("encode webp: %w", err)
	}
	return nil
}
