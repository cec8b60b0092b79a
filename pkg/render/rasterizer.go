package render

import (
	"image/color"
	"math"

	"github.com/taigrr/sloth/pkg/math3d"
	"github.com/taigrr/sloth/pkg/texture"
	"go.uber.org/zap"
)

// DepthCleared is the depth buffer value meaning "nothing drawn yet".
// Depth grows toward the far plane and the greater depth wins the test, so
// any finite depth beats it.
const DepthCleared = -math.MaxFloat64

// ScreenVertex is a vertex in screen space: pixel coordinates with a
// bottom-left origin, depth, and texture coordinates.
type ScreenVertex struct {
	X, Y float64
	Z    float64
	UV   math3d.Vec2
}

// ScreenTriangle is three screen-space vertices in any winding.
type ScreenTriangle [3]ScreenVertex

// Stats counts rasterizer work since the last ClearDepth.
type Stats struct {
	FacesDrawn    int // Faces that reached scan conversion
	FacesCulled   int // Faces dropped by the lighting test
	Degenerate    int // Triangles skipped for zero area or non-finite input
	PixelsWritten int // Pixels that passed the depth test
	DepthRejects  int // Covered pixels that lost the depth test
	OutOfBounds   int // Pixel writes refused by the framebuffer
}

// Rasterizer owns a framebuffer and a depth buffer of the same size.
type Rasterizer struct {
	fb      *Framebuffer
	zbuffer []float64 // Depth buffer (1D array, row-major)
	stats   Stats
	log     *zap.Logger
}

// NewRasterizer creates a rasterizer drawing into fb. The depth buffer
// starts cleared.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		fb:  fb,
		log: zap.NewNop(),
	}
	r.Resize()
	return r
}

// SetLogger sets the logger used for dropped pixels and frame stats.
// A nil logger disables logging.
func (r *Rasterizer) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	r.log = l
}

// Framebuffer returns the color buffer.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// Resize reallocates the depth buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth resets every depth entry to DepthCleared and zeroes Stats.
func (r *Rasterizer) ClearDepth() {
	r.stats = Stats{}
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	// Use copy-doubling for faster clearing
	r.zbuffer[0] = DepthCleared
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// Depth returns the stored depth at (x, y).
func (r *Rasterizer) Depth(x, y int) (float64, bool) {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return 0, false
	}
	return r.zbuffer[y*r.Width()+x], true
}

// Stats returns the counters accumulated since the last ClearDepth.
func (r *Rasterizer) Stats() Stats {
	return r.stats
}

// DrawTriangle scan-converts one triangle with a uniform intensity.
//
// Every pixel whose integer coordinate lies inside or on the edge of the
// triangle is tested; a pixel is written only when its interpolated depth
// is strictly greater than the stored depth. UVs are interpolated affinely
// in screen space. A nil texture samples as opaque white.
//
// Attributes pair with barycentric weights one place round: tri[0]'s depth
// and UV take vertex 1's weight, tri[1]'s take vertex 2's and tri[2]'s take
// vertex 0's. DrawMesh supplies UVs rotated to match, so each mesh corner
// samples its own UV.
func (r *Rasterizer) DrawTriangle(tri ScreenTriangle, intensity float64, tex *texture.Texture) {
	if r.Width() == 0 || r.Height() == 0 {
		return
	}

	p0, p1, p2 := tri[0], tri[1], tri[2]
	for _, v := range tri {
		if !math3d.V3(v.X, v.Y, v.Z).IsFinite() {
			r.stats.Degenerate++
			return
		}
	}

	area := edge(p0.X, p0.Y, p1.X, p1.Y, p2.X, p2.Y)
	if area == 0 || !math3d.IsFinite(area) {
		r.stats.Degenerate++
		return
	}

	// Bounding box, clamped to the viewport before converting to int.
	minX := math.Max(0, math.Floor(min3(p0.X, p1.X, p2.X)))
	minY := math.Max(0, math.Floor(min3(p0.Y, p1.Y, p2.Y)))
	maxX := math.Min(float64(r.Width()-1), math.Floor(max3(p0.X, p1.X, p2.X)))
	maxY := math.Min(float64(r.Height()-1), math.Floor(max3(p0.Y, p1.Y, p2.Y)))
	if minX > maxX || minY > maxY {
		return
	}

	r.stats.FacesDrawn++
	for y := int(minY); y <= int(maxY); y++ {
		for x := int(minX); x <= int(maxX); x++ {
			w1, w2, w3 := barycentric(p0, p1, p2, area, float64(x), float64(y))
			if w1 < 0 || w2 < 0 || w3 < 0 {
				continue
			}

			z := w1*p0.Z + w2*p1.Z + w3*p2.Z
			idx := y*r.Width() + x
			if !(z > r.zbuffer[idx]) {
				r.stats.DepthRejects++
				continue
			}
			r.zbuffer[idx] = z

			u := w1*p0.UV.X + w2*p1.UV.X + w3*p2.UV.X
			v := w1*p0.UV.Y + w2*p1.UV.Y + w3*p2.UV.Y
			c := texture.ScaleColor(sample(tex, u, v), intensity)

			if err := r.fb.SetPixel(x, y, c); err != nil {
				r.stats.OutOfBounds++
				r.log.Error("pixel write dropped", zap.Int("x", x), zap.Int("y", y), zap.Error(err))
				continue
			}
			r.stats.PixelsWritten++
		}
	}
}

func sample(tex *texture.Texture, u, v float64) color.RGBA {
	if tex == nil {
		return color.RGBA{255, 255, 255, 255}
	}
	return tex.Sample(u, v)
}

// edge is the 2D cross product (b-a) × (c-a): twice the signed area of abc.
func edge(ax, ay, bx, by, cx, cy float64) float64 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}

// barycentric returns the weights of (px, py) for vertices p1, p2 and p0,
// in that order. Each weight is the signed area of the sub-triangle opposite
// its vertex over the full area, so all three are non-negative exactly when
// the point is inside or on an edge, for either winding.
func barycentric(p0, p1, p2 ScreenVertex, area, px, py float64) (w1, w2, w3 float64) {
	w1 = edge(p2.X, p2.Y, p0.X, p0.Y, px, py) / area
	w2 = edge(p0.X, p0.Y, p1.X, p1.Y, px, py) / area
	w3 = edge(p1.X, p1.Y, p2.X, p2.Y, px, py) / area
	return w1, w2, w3
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
