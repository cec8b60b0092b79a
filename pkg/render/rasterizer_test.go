package render

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/taigrr/sloth/pkg/math3d"
	"github.com/taigrr/sloth/pkg/texture"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var (
	red   = texture.NewSolid(ColorRed)
	blue  = texture.NewSolid(ColorBlue)
	bgCol = color.RGBA{10, 20, 30, 255}
)

// createTestRasterizer creates a rasterizer with a cleared framebuffer.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	fb.Clear(bgCol)
	return NewRasterizer(fb), fb
}

func flatTri(z float64, pts ...float64) ScreenTriangle {
	return ScreenTriangle{
		{X: pts[0], Y: pts[1], Z: z},
		{X: pts[2], Y: pts[3], Z: z},
		{X: pts[4], Y: pts[5], Z: z},
	}
}

func TestDrawTriangleConcreteScenario(t *testing.T) {
	r, fb := createTestRasterizer(4, 4)
	r.DrawTriangle(flatTri(1, 0, 0, 3, 0, 0, 3), 1.0, red)

	filled := 0
	for y := range 4 {
		for x := range 4 {
			c, err := fb.Pixel(x, y)
			if err != nil {
				t.Fatal(err)
			}
			d, _ := r.Depth(x, y)

			if x+y <= 3 {
				filled++
				if c != ColorRed {
					t.Errorf("pixel (%d,%d) = %v, want opaque red", x, y, c)
				}
				if d != 1.0 {
					t.Errorf("depth (%d,%d) = %v, want 1", x, y, d)
				}
			} else {
				if c != bgCol {
					t.Errorf("pixel (%d,%d) = %v, want background", x, y, c)
				}
				if d != DepthCleared {
					t.Errorf("depth (%d,%d) = %v, want cleared", x, y, d)
				}
			}
		}
	}
	if filled != 10 {
		t.Fatalf("filled = %d, want 10", filled)
	}
	if s := r.Stats(); s.PixelsWritten != 10 || s.FacesDrawn != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestDrawTriangleWindingIndependent(t *testing.T) {
	r1, fb1 := createTestRasterizer(8, 8)
	r2, fb2 := createTestRasterizer(8, 8)
	r1.DrawTriangle(flatTri(0, 1, 1, 6, 2, 2, 6), 1, red)
	r2.DrawTriangle(flatTri(0, 1, 1, 2, 6, 6, 2), 1, red)

	for i := range fb1.Pix {
		if fb1.Pix[i] != fb2.Pix[i] {
			t.Fatal("reversed winding covered different pixels")
		}
	}
}

func TestDepthMonotonicity(t *testing.T) {
	near := flatTri(0.2, 0, 0, 7, 0, 0, 7)
	far := flatTri(0.5, 0, 0, 7, 0, 0, 7)

	tests := []struct {
		name  string
		first ScreenTriangle
		tex1  *texture.Texture
		then  ScreenTriangle
		tex2  *texture.Texture
	}{
		{"low then high", near, red, far, blue},
		{"high then low", far, blue, near, red},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := createTestRasterizer(8, 8)
			r.DrawTriangle(tc.first, 1, tc.tex1)
			r.DrawTriangle(tc.then, 1, tc.tex2)

			// The greater depth wins regardless of draw order.
			if c := fb.GetPixel(1, 1); c != ColorBlue {
				t.Errorf("pixel = %v, want blue (z=0.5)", c)
			}
			if d, _ := r.Depth(1, 1); d != 0.5 {
				t.Errorf("depth = %v, want 0.5", d)
			}
		})
	}
}

func TestDepthEqualDoesNotOverwrite(t *testing.T) {
	r, fb := createTestRasterizer(4, 4)
	r.DrawTriangle(flatTri(0.3, 0, 0, 3, 0, 0, 3), 1, red)
	r.DrawTriangle(flatTri(0.3, 0, 0, 3, 0, 0, 3), 1, blue)

	if c := fb.GetPixel(0, 0); c != ColorRed {
		t.Errorf("pixel = %v, want red (equal depth must not pass)", c)
	}
	if s := r.Stats(); s.DepthRejects != 10 {
		t.Errorf("DepthRejects = %d, want 10", s.DepthRejects)
	}
}

func TestBarycentricPartition(t *testing.T) {
	p0 := ScreenVertex{X: 0.3, Y: -2}
	p1 := ScreenVertex{X: 17.5, Y: 4.25}
	p2 := ScreenVertex{X: 5, Y: 11}
	area := edge(p0.X, p0.Y, p1.X, p1.Y, p2.X, p2.Y)

	tests := []struct {
		name   string
		px, py float64
		want   [3]float64
	}{
		{"vertex 0", p0.X, p0.Y, [3]float64{0, 0, 1}},
		{"vertex 1", p1.X, p1.Y, [3]float64{1, 0, 0}},
		{"vertex 2", p2.X, p2.Y, [3]float64{0, 1, 0}},
		{"centroid", (p0.X + p1.X + p2.X) / 3, (p0.Y + p1.Y + p2.Y) / 3, [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w1, w2, w3 := barycentric(p0, p1, p2, area, tc.px, tc.py)
			got := [3]float64{w1, w2, w3}
			for i := range got {
				if math.Abs(got[i]-tc.want[i]) > 1e-9 {
					t.Errorf("weights = %v, want %v", got, tc.want)
					break
				}
			}
		})
	}

	for _, pt := range [][2]float64{{6, 3}, {10, 5}, {2, 1}, {-5, 20}} {
		w1, w2, w3 := barycentric(p0, p1, p2, area, pt[0], pt[1])
		if math.Abs(w1+w2+w3-1) > 1e-9 {
			t.Errorf("weights at %v sum to %v", pt, w1+w2+w3)
		}
	}
}

func TestDrawTriangleDegenerate(t *testing.T) {
	tests := []struct {
		name string
		tri  ScreenTriangle
	}{
		{"collinear", flatTri(0, 0, 0, 1, 1, 3, 3)},
		{"coincident", flatTri(0, 2, 2, 2, 2, 2, 2)},
		{"nan", flatTri(0, math.NaN(), 0, 3, 0, 0, 3)},
		{"inf depth", flatTri(math.Inf(1), 0, 0, 3, 0, 0, 3)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := createTestRasterizer(4, 4)
			r.DrawTriangle(tc.tri, 1, red)
			for i := 0; i < len(fb.Pix); i += 4 {
				if fb.Pix[i] != bgCol.R {
					t.Fatal("degenerate triangle wrote pixels")
				}
			}
			if r.Stats().Degenerate != 1 {
				t.Errorf("Degenerate = %d, want 1", r.Stats().Degenerate)
			}
		})
	}
}

func TestDrawTriangleClampsHugeCoordinates(t *testing.T) {
	r, fb := createTestRasterizer(4, 4)
	r.DrawTriangle(flatTri(0, -1e12, -1e12, 3e12, -1e12, -1e12, 3e12), 1, red)
	for y := range 4 {
		for x := range 4 {
			if c := fb.GetPixel(x, y); c != ColorRed {
				t.Fatalf("pixel (%d,%d) = %v, want red", x, y, c)
			}
		}
	}
}

func TestDrawTriangleOffscreen(t *testing.T) {
	r, _ := createTestRasterizer(4, 4)
	r.DrawTriangle(flatTri(0, 10, 10, 20, 10, 10, 20), 1, red)
	if s := r.Stats(); s.PixelsWritten != 0 || s.FacesDrawn != 0 {
		t.Errorf("stats = %+v, want nothing drawn", s)
	}
}

func TestDrawTriangleIntensityAndUV(t *testing.T) {
	// Left half red, right half blue.
	tex, err := texture.New(2, 1, []uint8{255, 0, 0, 255, 0, 0, 255, 255})
	if err != nil {
		t.Fatal(err)
	}

	// Each UV takes the weight of the next vertex, so the u=1 attribute on
	// tri[0] is what vertex 1 samples.
	r, fb := createTestRasterizer(8, 8)
	tri := ScreenTriangle{
		{X: 0, Y: 0, UV: math3d.V2(1, 0)},
		{X: 7, Y: 0, UV: math3d.V2(0, 0)},
		{X: 0, Y: 7, UV: math3d.V2(0, 0)},
	}
	r.DrawTriangle(tri, 0.5, tex)

	if c := fb.GetPixel(0, 0); c != (color.RGBA{127, 0, 0, 127}) {
		t.Errorf("left pixel = %v, want half red with half alpha", c)
	}
	if c := fb.GetPixel(6, 0); c != (color.RGBA{0, 0, 127, 127}) {
		t.Errorf("right pixel = %v, want half blue with half alpha", c)
	}
}

func TestDrawTriangleAttributeWeights(t *testing.T) {
	// Depth only varies on tri[0], which carries vertex 1's weight.
	r, _ := createTestRasterizer(8, 8)
	tri := ScreenTriangle{
		{X: 0, Y: 0, Z: 0.7},
		{X: 7, Y: 0, Z: 0},
		{X: 0, Y: 7, Z: 0},
	}
	r.DrawTriangle(tri, 1, red)

	if d, _ := r.Depth(0, 0); d != 0 {
		t.Errorf("depth at vertex 0 = %v, want 0", d)
	}
	if d, _ := r.Depth(7, 0); math.Abs(d-0.7) > 1e-9 {
		t.Errorf("depth at vertex 1 = %v, want 0.7", d)
	}
}

func TestRasterizerClearDepth(t *testing.T) {
	r, _ := createTestRasterizer(4, 4)
	r.DrawTriangle(flatTri(1, 0, 0, 3, 0, 0, 3), 1, red)

	r.ClearDepth()
	for y := range 4 {
		for x := range 4 {
			if d, _ := r.Depth(x, y); d != DepthCleared {
				t.Fatalf("depth (%d,%d) = %v after clear", x, y, d)
			}
		}
	}
	if r.Stats() != (Stats{}) {
		t.Errorf("stats not reset: %+v", r.Stats())
	}
	if _, ok := r.Depth(-1, 0); ok {
		t.Error("Depth(-1,0) reported in bounds")
	}
}

func TestSetLoggerNil(t *testing.T) {
	r, _ := createTestRasterizer(2, 2)
	r.SetLogger(nil)
	r.DrawTriangle(flatTri(0, 0, 0, 1, 0, 0, 1), 1, nil)
	if c := r.Framebuffer().GetPixel(0, 0); c != ColorWhite {
		t.Errorf("nil texture pixel = %v, want white", c)
	}
}

func TestFrameStatsLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r, _ := createTestRasterizer(4, 4)
	r.SetLogger(zap.New(core))

	sc, meshes, textures, cams := quadScene(t)
	if err := r.RenderScene(sc, meshes, textures, cams, DefaultLighting()); err != nil {
		t.Fatal(err)
	}
	if logs.FilterMessage("frame rendered").Len() != 1 {
		t.Errorf("expected one frame log, got %v", logs.All())
	}
}

func BenchmarkDrawTriangle(b *testing.B) {
	r, _ := createTestRasterizer(200, 200)
	tex := texture.NewChecker(64, 64, 8, ColorWhite, ColorGray)
	tri := ScreenTriangle{
		{X: 10, Y: 10, Z: 0.1, UV: math3d.V2(0, 0)},
		{X: 190, Y: 20, Z: 0.2, UV: math3d.V2(1, 0)},
		{X: 100, Y: 190, Z: 0.3, UV: math3d.V2(0.5, 1)},
	}

	for b.Loop() {
		r.ClearDepth()
		r.DrawTriangle(tri, 0.8, tex)
	}
}
