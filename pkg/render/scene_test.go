package render

import (
	"errors"
	"image/color"
	"testing"

	"github.com/taigrr/sloth/pkg/camera"
	"github.com/taigrr/sloth/pkg/math3d"
	"github.com/taigrr/sloth/pkg/models"
	"github.com/taigrr/sloth/pkg/scene"
	"github.com/taigrr/sloth/pkg/texture"
)

var green = color.RGBA{0, 255, 0, 255}

// quadScene builds a scene with one green quad at the origin and an active
// camera at (0,0,5).
func quadScene(t testing.TB) (*scene.Scene, *models.Store, *texture.Store, *camera.Store) {
	t.Helper()
	meshes := models.NewStore()
	mid, err := meshes.Add(quadMesh())
	if err != nil {
		t.Fatal(err)
	}

	textures := texture.NewStore()
	tid, err := textures.Add(texture.NewSolid(green))
	if err != nil {
		t.Fatal(err)
	}

	cams := camera.NewStore()
	cam := camera.New(math3d.V3(0, 0, 5), math3d.Zero3())
	cam.Aspect = 1
	if err := cams.SetActive(cams.Add(cam)); err != nil {
		t.Fatal(err)
	}

	sc := scene.New()
	if _, err := sc.AddChild(scene.Root, scene.NewNode("quad", scene.MeshPayload(mid, tid))); err != nil {
		t.Fatal(err)
	}
	return sc, meshes, textures, cams
}

func TestRenderScene(t *testing.T) {
	r, fb := createTestRasterizer(16, 16)
	sc, meshes, textures, cams := quadScene(t)

	if err := r.RenderScene(sc, meshes, textures, cams, DefaultLighting()); err != nil {
		t.Fatalf("RenderScene: %v", err)
	}
	if c := fb.GetPixel(9, 7); c != green {
		t.Errorf("pixel (9,7) = %v, want green", c)
	}
	if c := fb.GetPixel(0, 0); c != bgCol {
		t.Errorf("corner = %v, want background", c)
	}
	if s := r.Stats(); s.FacesDrawn != 2 || s.FacesCulled != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestRenderSceneNodeTransform(t *testing.T) {
	r, fb := createTestRasterizer(16, 16)
	sc, meshes, textures, cams := quadScene(t)

	id, _ := sc.Find("quad")
	n, _ := sc.Node(id)
	n.Transform.Translation = math3d.V3(2, 0, 0)

	if err := r.RenderScene(sc, meshes, textures, cams, DefaultLighting()); err != nil {
		t.Fatalf("RenderScene: %v", err)
	}
	if c := fb.GetPixel(8, 8); c != bgCol {
		t.Errorf("center = %v, want background after moving quad right", c)
	}
	if c := fb.GetPixel(13, 8); c != green {
		t.Errorf("pixel (13,8) = %v, want green", c)
	}
}

func TestRenderSceneNoCamera(t *testing.T) {
	r, fb := createTestRasterizer(8, 8)
	sc, meshes, textures, cams := quadScene(t)
	cams.ClearActive()

	// Dangling ids are never looked up without a camera.
	_, _ = sc.AddChild(scene.Root, scene.NewNode("ghost", scene.MeshPayload(99, 99)))

	if err := r.RenderScene(sc, meshes, textures, cams, DefaultLighting()); err != nil {
		t.Fatalf("RenderScene without camera = %v, want nil", err)
	}
	for y := range 8 {
		for x := range 8 {
			if fb.GetPixel(x, y) != bgCol {
				t.Fatalf("pixel (%d,%d) changed without a camera", x, y)
			}
		}
	}
}

func TestRenderSceneUnknownIDs(t *testing.T) {
	tests := []struct {
		name    string
		payload scene.Payload
		want    error
	}{
		{"mesh", scene.MeshPayload(42, 0), models.ErrUnknownMesh},
		{"texture", scene.MeshPayload(0, 42), texture.ErrUnknownTexture},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := createTestRasterizer(8, 8)
			sc, meshes, textures, cams := quadScene(t)
			_, _ = sc.AddChild(scene.Root, scene.NewNode("bad", tc.payload))

			err := r.RenderScene(sc, meshes, textures, cams, DefaultLighting())
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRenderSceneIgnoresLightsAndCameras(t *testing.T) {
	r, _ := createTestRasterizer(8, 8)
	sc, meshes, textures, cams := quadScene(t)
	_, _ = sc.AddChild(scene.Root, scene.NewNode("sun", scene.LightPayload(math3d.V3(0, -1, 0))))
	_, _ = sc.AddChild(scene.Root, scene.NewNode("cam", scene.CameraPayload(7)))

	if err := r.RenderScene(sc, meshes, textures, cams, DefaultLighting()); err != nil {
		t.Fatalf("RenderScene: %v", err)
	}
}

func BenchmarkRenderScene(b *testing.B) {
	r, _ := createTestRasterizer(160, 120)
	sc, meshes, textures, cams := quadScene(b)

	for b.Loop() {
		_ = r.RenderScene(sc, meshes, textures, cams, DefaultLighting())
	}
}
