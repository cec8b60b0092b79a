package render

import (
	"fmt"

	"github.com/taigrr/sloth/pkg/camera"
	"github.com/taigrr/sloth/pkg/math3d"
	"github.com/taigrr/sloth/pkg/models"
	"github.com/taigrr/sloth/pkg/scene"
	"github.com/taigrr/sloth/pkg/texture"
	"go.uber.org/zap"
)

// RenderScene clears the depth buffer and draws every mesh node of sc from
// the active camera. The color buffer is not cleared.
//
// With no active camera nothing is drawn and no error is returned. A mesh
// or texture id missing from its store aborts the frame with an error
// wrapping models.ErrUnknownMesh or texture.ErrUnknownTexture.
func (r *Rasterizer) RenderScene(sc *scene.Scene, meshes *models.Store, textures *texture.Store, cameras *camera.Store, light Lighting) error {
	r.ClearDepth()

	cam, ok := cameras.Active()
	if !ok {
		r.log.Debug("no active camera, skipping mesh nodes")
		return nil
	}
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()

	err := sc.Traverse(scene.Root, math3d.Identity(), func(n *scene.Node, world math3d.Mat4) error {
		if n.Payload.Kind != scene.KindMesh {
			return nil
		}
		mesh, err := meshes.Get(n.Payload.Mesh)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		tex, err := textures.Get(n.Payload.Texture)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		r.DrawMesh(mesh, tex, world, view, proj, light)
		return nil
	})
	if err != nil {
		return fmt.Errorf("render scene: %w", err)
	}

	s := r.stats
	r.log.Debug("frame rendered",
		zap.Int("faces_drawn", s.FacesDrawn),
		zap.Int("faces_culled", s.FacesCulled),
		zap.Int("pixels", s.PixelsWritten),
		zap.Int("depth_rejects", s.DepthRejects),
	)
	return nil
}
