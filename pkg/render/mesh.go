package render

import (
	"math"

	"github.com/taigrr/sloth/pkg/math3d"
	"github.com/taigrr/sloth/pkg/models"
	"github.com/taigrr/sloth/pkg/texture"
)

// Lighting is the single directional light used for flat shading.
type Lighting struct {
	Direction math3d.Vec3
}

// DefaultLighting returns a light shining down the -Z axis.
func DefaultLighting() Lighting {
	return Lighting{Direction: math3d.V3(0, 0, -1)}
}

// DrawMesh draws every face of mesh with flat Lambertian shading.
//
// The face normal is taken from the untransformed positions as
// normalize((p2-p0) × (p1-p0)) and the intensity is its dot product with
// the light direction. Faces with intensity ≤ 0 are culled, which also
// serves as back-face culling. Vertices go through proj·view·model, the
// perspective divide, and the viewport mapping; NDC z is used as depth.
func (r *Rasterizer) DrawMesh(mesh *models.Mesh, tex *texture.Texture, model, view, proj math3d.Mat4, light Lighting) {
	mvp := proj.Mul(view).Mul(model)
	lightDir := light.Direction.Normalize()

	for _, f := range mesh.Faces {
		var (
			pos [3]math3d.Vec3
			uv  [3]math3d.Vec2
		)
		for c := range 3 {
			p, t, _ := mesh.Corner(f, c)
			pos[c] = p
			// Flip V from the asset's bottom-left origin to the texture's top row.
			uv[c] = math3d.V2(t.X, math.Abs(1-t.Y))
		}

		normal := pos[2].Sub(pos[0]).Cross(pos[1].Sub(pos[0])).Normalize()
		intensity := normal.Dot(lightDir)
		if !(intensity > 0) {
			r.stats.FacesCulled++
			continue
		}

		// DrawTriangle weights attributes one vertex round, so UVs go in
		// rotated and each corner ends up with its own.
		tri := ScreenTriangle{
			r.transformVertex(mvp, pos[0], uv[1]),
			r.transformVertex(mvp, pos[1], uv[2]),
			r.transformVertex(mvp, pos[2], uv[0]),
		}
		r.DrawTriangle(tri, intensity, tex)
	}
}

// transformVertex maps a model-space position to screen space.
func (r *Rasterizer) transformVertex(mvp math3d.Mat4, p math3d.Vec3, uv math3d.Vec2) ScreenVertex {
	ndc := mvp.MulVec4(math3d.V4FromV3(p, 1)).PerspectiveDivide()
	x, y := math3d.Viewport(ndc, r.Width(), r.Height())
	return ScreenVertex{X: x, Y: y, Z: ndc.Z, UV: uv}
}
