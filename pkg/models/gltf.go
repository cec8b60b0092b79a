package models

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/sloth/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// FlipV converts glTF's top-left UV origin to the bottom-left origin
	// used by OBJ files and the texture sampler.
	FlipV bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{FlipV: true}
}

// LoadGLB loads a binary or JSON glTF file with default options.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and returns a Mesh. All triangle primitives
// of all meshes in the document are merged.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".glb" && ext != ".gltf" {
		return nil, fmt.Errorf("load %s: extension %q: %w", path, ext, ErrUnsupportedFormat)
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(doc, filepath.Base(path))
}

// FromDocument converts an already decoded document.
func (l *GLTFLoader) FromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	for _, m := range doc.Meshes {
		if err := l.processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	mesh.CalculateBounds()
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

// processMesh appends the geometry of one glTF mesh. glTF attributes are
// per-vertex, so every corner uses the same index for all three arrays.
func (l *GLTFLoader) processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		acr, err := accessor(doc, posIdx)
		if err != nil {
			return err
		}
		positions, err := modeler.ReadPosition(doc, acr, nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if acr, err = accessor(doc, idx); err != nil {
				return err
			}
			if normals, err = modeler.ReadNormal(doc, acr, nil); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float32
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if acr, err = accessor(doc, idx); err != nil {
				return err
			}
			if uvs, err = modeler.ReadTextureCoord(doc, acr, nil); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		base := len(mesh.Positions)
		for i, p := range positions {
			mesh.Positions = append(mesh.Positions, math3d.V3(float64(p[0]), float64(p[1]), float64(p[2])))

			n := math3d.Zero3()
			if i < len(normals) {
				n = math3d.V3(float64(normals[i][0]), float64(normals[i][1]), float64(normals[i][2]))
			}
			mesh.Normals = append(mesh.Normals, n)

			uv := math3d.V2(0, 0)
			if i < len(uvs) {
				uv = math3d.V2(float64(uvs[i][0]), float64(uvs[i][1]))
				if l.FlipV {
					uv.Y = 1 - uv.Y
				}
			}
			mesh.UVs = append(mesh.UVs, uv)
		}

		var indices []uint32
		if prim.Indices != nil {
			if acr, err = accessor(doc, *prim.Indices); err != nil {
				return err
			}
			if indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			// No indices, assume sequential triangles
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			var f Face
			for c := range 3 {
				v := base + int(indices[i+c])
				f[c] = Index{Position: v, UV: v, Normal: v}
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	return nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d of %d: %w", idx, len(doc.Accessors), ErrMalformed)
	}
	return doc.Accessors[idx], nil
}

// LoadGLTFWithTextures loads a GLTF file and extracts its images.
// Returns the mesh and a map of image index to encoded image data.
func LoadGLTFWithTextures(path string) (*Mesh, map[int][]byte, error) {
	mesh, err := LoadGLB(path)
	if err != nil {
		return nil, nil, err
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open gltf: %w", err)
	}

	textures := make(map[int][]byte)
	for i, img := range doc.Images {
		if img.BufferView != nil {
			bv := doc.BufferViews[*img.BufferView]
			buf := doc.Buffers[bv.Buffer]
			if buf.Data != nil {
				start := bv.ByteOffset
				end := start + bv.ByteLength
				textures[i] = buf.Data[start:end]
			}
		} else if img.URI != "" {
			data, err := os.ReadFile(filepath.Join(filepath.Dir(path), img.URI))
			if err == nil {
				textures[i] = data
			}
		}
	}

	return mesh, textures, nil
}

// LoadGLBWithTexture loads a GLB file and returns the mesh plus the first
// decodable embedded image. The image is nil if none is present.
func LoadGLBWithTexture(path string) (*Mesh, image.Image, error) {
	mesh, textures, err := LoadGLTFWithTextures(path)
	if err != nil {
		return nil, nil, err
	}

	for _, i := range slices.Sorted(maps.Keys(textures)) {
		data := textures[i]
		if len(data) == 0 {
			continue
		}
		if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			return mesh, img, nil
		}
	}

	return mesh, nil, nil
}
