package render

import (
	"fmt"
	"image/color"

	"github.com/taigrr/sloth/pkg/camera"
	"github.com/taigrr/sloth/pkg/math3d"
	"github.com/taigrr/sloth/pkg/models"
	"github.com/taigrr/sloth/pkg/scene"
)

// Wireframe draws debug lines over a framebuffer. It ignores the depth
// buffer.
type Wireframe struct {
	camera *camera.Camera
	fb     *Framebuffer
}

// NewWireframe creates a new wireframe renderer.
func NewWireframe(cam *camera.Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		camera: cam,
		fb:     fb,
	}
}

// DrawLine3D draws a world-space line.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, c color.RGBA) {
	x1, y1, _, vis1 := w.camera.WorldToScreen(p1, w.fb.Width, w.fb.Height)
	x2, y2, _, vis2 := w.camera.WorldToScreen(p2, w.fb.Width, w.fb.Height)

	// Only draw when both endpoints project; there is no line clipping.
	if !vis1 || !vis2 {
		return
	}

	w.fb.DrawLine(int(x1), int(y1), int(x2), int(y2), c)
}

// DrawMesh outlines every face of mesh placed by model.
func (w *Wireframe) DrawMesh(mesh *models.Mesh, model math3d.Mat4, c color.RGBA) {
	for _, f := range mesh.Faces {
		var v [3]math3d.Vec3
		for i := range 3 {
			p, _, _ := mesh.Corner(f, i)
			v[i] = model.MulVec3(p)
		}
		w.DrawLine3D(v[0], v[1], c)
		w.DrawLine3D(v[1], v[2], c)
		w.DrawLine3D(v[2], v[0], c)
	}
}

// DrawScene outlines every mesh node of sc at its world transform. Unknown
// mesh ids abort the walk.
func (w *Wireframe) DrawScene(sc *scene.Scene, meshes *models.Store, c color.RGBA) error {
	return sc.Traverse(scene.Root, math3d.Identity(), func(n *scene.Node, world math3d.Mat4) error {
		if n.Payload.Kind != scene.KindMesh {
			return nil
		}
		mesh, err := meshes.Get(n.Payload.Mesh)
		if err != nil {
			return fmt.Errorf("wireframe node %q: %w", n.Name, err)
		}
		w.DrawMesh(mesh, world, c)
		return nil
	})
}

// DrawAxes draws the world axes from the origin: X red, Y green, Z blue.
func (w *Wireframe) DrawAxes(length float64) {
	origin := math3d.Zero3()
	w.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)
	w.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen)
	w.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)
}
