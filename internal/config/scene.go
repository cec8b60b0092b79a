package config

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/taigrr/sloth/pkg/camera"
	"github.com/taigrr/sloth/pkg/math3d"
	"github.com/taigrr/sloth/pkg/models"
	"github.com/taigrr/sloth/pkg/scene"
	"github.com/taigrr/sloth/pkg/texture"
	"go.uber.org/zap"
)

var (
	ErrUnknownAsset    = errors.New("unknown asset")
	ErrUnknownBehavior = errors.New("unknown behavior")
)

// Behavior names accepted in NodeConfig.Behavior.
const (
	BehaviorNone  = "none"
	BehaviorOrbit = "orbit"
	BehaviorSpin  = "spin"
)

// HandlerSpin is the custom handler installed by Build for BehaviorSpin.
const HandlerSpin scene.HandlerID = 1

// SpinSpeed is the yaw rate of spinning nodes in radians per second.
const SpinSpeed = 0.8

// AssetConfig names a file on disk.
type AssetConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// SceneConfig describes assets and the node tree below the root.
type SceneConfig struct {
	// BaseDir resolves relative asset paths; set to the config file's directory.
	BaseDir string `yaml:"-"`

	Meshes   []AssetConfig `yaml:"meshes"`
	Textures []AssetConfig `yaml:"textures"`
	Nodes    []NodeConfig  `yaml:"nodes"`
}

// NodeConfig describes one node. At most one of Mesh, Light and Camera is
// set; a node with none of them is a group. Rotation is in degrees.
type NodeConfig struct {
	Name        string        `yaml:"name"`
	Mesh        string        `yaml:"mesh,omitempty"`
	Texture     string        `yaml:"texture,omitempty"`
	Light       *[3]float64   `yaml:"light,omitempty"`
	Camera      *CameraConfig `yaml:"camera,omitempty"`
	Active      bool          `yaml:"active,omitempty"`
	Behavior    string        `yaml:"behavior,omitempty"`
	Fit         bool          `yaml:"fit,omitempty"` // scale the mesh to a 2-unit box centered on the node
	Translation [3]float64    `yaml:"translation"`
	Rotation    [3]float64    `yaml:"rotation"`
	Scale       *[3]float64   `yaml:"scale,omitempty"`
	Children    []NodeConfig  `yaml:"children,omitempty"`
}

// ModelScene describes a single fitted model, as used when a model path is
// given on the command line.
func ModelScene(path string) SceneConfig {
	name := filepath.Base(path)
	return SceneConfig{
		Meshes: []AssetConfig{{Name: name, Path: path}},
		Nodes:  []NodeConfig{{Name: name, Mesh: name, Fit: true}},
	}
}

// World is everything a frame needs: the scene and the stores its ids refer to.
type World struct {
	Scene    *scene.Scene
	Meshes   *models.Store
	Textures *texture.Store
	Cameras  *camera.Store
}

// LightDirection returns the first scene light, or the configured fallback.
func (w *World) LightDirection(cfg *Config) (math3d.Vec3, error) {
	dir, ok, err := w.Scene.FirstLight()
	if err != nil {
		return math3d.Vec3{}, err
	}
	if !ok {
		return cfg.Light.Vec(), nil
	}
	return dir, nil
}

type builder struct {
	cfg *Config
	log *zap.Logger
	w   *World

	meshes   map[string]models.MeshID
	embedded map[string]texture.ID
	textures map[string]texture.ID
	checker  *texture.ID
	cameras  int
}

// Build loads the configured assets into fresh stores and constructs the
// scene. Without a camera node a default orbit camera is added from
// cfg.Camera. The first camera marked active (or the first camera) is made
// active.
func Build(cfg *Config, log *zap.Logger) (*World, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b := &builder{
		cfg: cfg,
		log: log,
		w: &World{
			Scene:    scene.New(),
			Meshes:   models.NewStore(),
			Textures: texture.NewStore(),
			Cameras:  camera.NewStore(),
		},
		meshes:   make(map[string]models.MeshID),
		embedded: make(map[string]texture.ID),
		textures: make(map[string]texture.ID),
	}
	b.w.Scene.RegisterHandler(HandlerSpin, spin)

	for _, a := range cfg.Scene.Meshes {
		if err := b.loadMesh(a); err != nil {
			return nil, err
		}
	}
	for _, a := range cfg.Scene.Textures {
		if err := b.loadTexture(a); err != nil {
			return nil, err
		}
	}

	for _, nc := range cfg.Scene.Nodes {
		if err := b.addNode(scene.Root, nc); err != nil {
			return nil, err
		}
	}

	if b.cameras == 0 {
		def := NodeConfig{Name: "camera", Camera: &cfg.Camera, Active: true, Behavior: BehaviorOrbit}
		if err := b.addNode(scene.Root, def); err != nil {
			return nil, err
		}
	}
	if _, ok := b.w.Cameras.Active(); !ok {
		if err := b.w.Cameras.SetActive(0); err != nil {
			return nil, err
		}
	}

	log.Info("scene built",
		zap.Int("nodes", b.w.Scene.Len()),
		zap.Int("meshes", b.w.Meshes.Len()),
		zap.Int("textures", b.w.Textures.Len()),
		zap.Int("cameras", b.w.Cameras.Len()))
	return b.w, nil
}

func (b *builder) path(p string) string {
	if filepath.IsAbs(p) || b.cfg.Scene.BaseDir == "" {
		return p
	}
	return filepath.Join(b.cfg.Scene.BaseDir, p)
}

func (b *builder) loadMesh(a AssetConfig) error {
	path := b.path(a.Path)

	var (
		mesh *models.Mesh
		img  image.Image
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".glb", ".gltf":
		mesh, img, err = models.LoadGLBWithTexture(path)
	default:
		mesh, err = models.LoadOBJ(path)
	}
	if err != nil {
		return fmt.Errorf("mesh %q: %w", a.Name, err)
	}

	id, err := b.w.Meshes.Add(mesh)
	if err != nil {
		return err
	}
	b.meshes[a.Name] = id
	if img != nil {
		tex, err := texture.FromImage(img)
		if err != nil {
			return fmt.Errorf("mesh %q embedded texture: %w", a.Name, err)
		}
		if b.embedded[a.Name], err = b.w.Textures.Add(tex); err != nil {
			return err
		}
	}
	b.log.Info("mesh loaded",
		zap.String("name", a.Name),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Bool("embedded_texture", img != nil))
	return nil
}

func (b *builder) loadTexture(a AssetConfig) error {
	tex, err := texture.Load(b.path(a.Path))
	if err != nil {
		return fmt.Errorf("texture %q: %w", a.Name, err)
	}
	id, err := b.w.Textures.Add(tex)
	if err != nil {
		return err
	}
	b.textures[a.Name] = id
	b.log.Debug("texture loaded", zap.String("name", a.Name), zap.Int("width", tex.Width), zap.Int("height", tex.Height))
	return nil
}

// textureFor picks the node's texture: the named one, else the mesh's
// embedded image, else a shared checkerboard.
func (b *builder) textureFor(nc NodeConfig) (texture.ID, error) {
	if nc.Texture != "" {
		id, ok := b.textures[nc.Texture]
		if !ok {
			return 0, fmt.Errorf("node %q texture %q: %w", nc.Name, nc.Texture, ErrUnknownAsset)
		}
		return id, nil
	}

	if id, ok := b.embedded[nc.Mesh]; ok {
		return id, nil
	}

	if b.checker == nil {
		light := color.RGBA{200, 200, 200, 255}
		dark := color.RGBA{100, 100, 100, 255}
		id, err := b.w.Textures.Add(texture.NewChecker(64, 64, 8, light, dark))
		if err != nil {
			return 0, err
		}
		b.checker = &id
	}
	return *b.checker, nil
}

func (b *builder) addNode(parent scene.NodeID, nc NodeConfig) error {
	payload, err := b.payload(nc)
	if err != nil {
		return err
	}
	behavior, err := behaviorFor(nc)
	if err != nil {
		return err
	}

	n := scene.NewNode(nc.Name, payload)
	n.Behavior = behavior
	n.Transform.Translation = vec3(nc.Translation)
	n.Transform.Rotation = vec3(nc.Rotation).Scale(math.Pi / 180)
	if nc.Scale != nil {
		n.Transform.Scale = vec3(*nc.Scale)
	}

	if nc.Fit && payload.Kind == scene.KindMesh {
		// The fit goes on a child so the node's own transform stays as written.
		n.Payload = scene.GroupPayload()
		id, err := b.w.Scene.AddChild(parent, n)
		if err != nil {
			return err
		}
		fit, err := b.fitNode(nc.Name, payload)
		if err != nil {
			return err
		}
		if _, err := b.w.Scene.AddChild(id, fit); err != nil {
			return err
		}
		return b.addChildren(id, nc.Children)
	}

	id, err := b.w.Scene.AddChild(parent, n)
	if err != nil {
		return err
	}
	return b.addChildren(id, nc.Children)
}

func (b *builder) addChildren(parent scene.NodeID, children []NodeConfig) error {
	for _, c := range children {
		if err := b.addNode(parent, c); err != nil {
			return err
		}
	}
	return nil
}

// fitNode centers the mesh on the origin and scales its largest extent to 2.
func (b *builder) fitNode(name string, p scene.Payload) (scene.Node, error) {
	mesh, err := b.w.Meshes.Get(p.Mesh)
	if err != nil {
		return scene.Node{}, err
	}
	n := scene.NewNode(name+".fit", p)

	size := mesh.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim > 0 {
		s := 2.0 / maxDim
		n.Transform.Scale = math3d.V3(s, s, s)
		n.Transform.Translation = mesh.Center().Scale(-s)
	}
	return n, nil
}

func (b *builder) payload(nc NodeConfig) (scene.Payload, error) {
	switch {
	case nc.Mesh != "":
		id, ok := b.meshes[nc.Mesh]
		if !ok {
			return scene.Payload{}, fmt.Errorf("node %q mesh %q: %w", nc.Name, nc.Mesh, ErrUnknownAsset)
		}
		tex, err := b.textureFor(nc)
		if err != nil {
			return scene.Payload{}, err
		}
		return scene.MeshPayload(id, tex), nil

	case nc.Light != nil:
		return scene.LightPayload(vec3(*nc.Light)), nil

	case nc.Camera != nil:
		cc := nc.Camera
		cam := camera.New(vec3(cc.Position), vec3(cc.Target))
		if cc.FOV > 0 {
			cam.FOV = cc.FOVRadians()
		}
		if cc.Near > 0 {
			cam.Near = cc.Near
		}
		if cc.Far > 0 {
			cam.Far = cc.Far
		}
		cam.Aspect = float64(b.cfg.Render.Width) / float64(b.cfg.Render.Height)

		id := b.w.Cameras.Add(cam)
		b.cameras++
		if nc.Active {
			if _, ok := b.w.Cameras.Active(); !ok {
				if err := b.w.Cameras.SetActive(id); err != nil {
					return scene.Payload{}, err
				}
			}
		}
		return scene.CameraPayload(id), nil
	}
	return scene.GroupPayload(), nil
}

func behaviorFor(nc NodeConfig) (scene.Behavior, error) {
	switch nc.Behavior {
	case "", BehaviorNone:
		return scene.Behavior{}, nil
	case BehaviorOrbit:
		return scene.Behavior{Kind: scene.BehaviorStandardCameraControl}, nil
	case BehaviorSpin:
		return scene.Behavior{Kind: scene.BehaviorCustom, Handler: HandlerSpin}, nil
	}
	return scene.Behavior{}, fmt.Errorf("node %q behavior %q: %w", nc.Name, nc.Behavior, ErrUnknownBehavior)
}

// spin turns a node about its Y axis. Yaw input speeds it up or reverses it.
func spin(n *scene.Node, in scene.Input, dt float64, _ *camera.Store) error {
	n.Transform.Rotation.Y += (SpinSpeed + in.Yaw) * dt
	return nil
}
