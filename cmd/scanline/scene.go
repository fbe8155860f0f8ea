package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/models"
	"github.com/taigrr/scanline/pkg/render"
)

// Built-in models used when no file is given.
const (
	builtinCube  = "cube"
	builtinPlane = "plane"
)

func isBuiltinModel(name string) bool {
	return name == builtinCube || name == builtinPlane
}

// Scene is a loaded model ready to draw: one material per face group and a
// transform that centres it in the [-1, 1] cube.
type Scene struct {
	Name string
	Mesh *models.Mesh

	groups    []models.Submesh
	materials []*render.Material
	plain     []*render.Material // materials without textures
	normalize math3d.Mat4
}

// LoadScene loads the configured model, textures and cubemap.
func LoadScene(cfg *Config) (*Scene, error) {
	mesh, err := loadMesh(cfg.Model)
	if err != nil {
		return nil, err
	}
	slog.Info("model loaded", "name", mesh.Name,
		"vertices", mesh.VertexCount(), "triangles", mesh.TriangleCount(),
		"materials", len(mesh.Materials))

	s := &Scene{
		Name:      mesh.Name,
		Mesh:      mesh,
		groups:    mesh.Groups(),
		normalize: normalizeTransform(mesh),
	}
	if err := s.Configure(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func loadMesh(path string) (*models.Mesh, error) {
	switch path {
	case "", builtinCube:
		return models.NewCube(2), nil
	case builtinPlane:
		return models.NewPlane(2, 4, 4), nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".glb", ".gltf":
		return models.LoadGLB(path)
	case ".obj":
		return models.LoadOBJ(path)
	default:
		return nil, fmt.Errorf("unsupported format: %s (use .obj, .gltf or .glb)", ext)
	}
}

// normalizeTransform centres the mesh bounds on the origin and scales the
// largest side to 2.
func normalizeTransform(mesh *models.Mesh) math3d.Mat4 {
	size := mesh.Size()
	maxDim := max(size.X, size.Y, size.Z)
	if maxDim <= 0 {
		return math3d.Translate(mesh.Center().Negate())
	}
	return math3d.ScaleUniform(2 / maxDim).Mul(math3d.Translate(mesh.Center().Negate()))
}

// Configure (re)builds the per-group materials from cfg. It is called again
// when the scene file changes.
func (s *Scene) Configure(cfg *Config) error {
	override, err := cfg.Material.Resolve()
	if err != nil {
		return err
	}

	var tex *render.Texture
	if cfg.Texture != "" {
		if tex, err = render.LoadTexture(cfg.Texture); err != nil {
			return err
		}
	} else if isBuiltinModel(s.Name) {
		tex = render.NewTexture(render.NewCheckerSurface(64, 64, 8,
			math3d.Splat3(200), math3d.Splat3(100)))
	}

	var cube *render.Cubemap
	if len(cfg.Cubemap) > 0 {
		var paths [6]string
		if copy(paths[:], cfg.Cubemap) != 6 {
			return fmt.Errorf("cubemap needs 6 faces, got %d", len(cfg.Cubemap))
		}
		if cube, err = render.LoadCubemap(paths); err != nil {
			return err
		}
		slog.Debug("cubemap loaded", "faces", paths)
	}

	s.materials = make([]*render.Material, len(s.groups))
	s.plain = make([]*render.Material, len(s.groups))
	for i, g := range s.groups {
		mat := override
		if mat == nil {
			mat = toRenderMaterial(s.Mesh.GetMaterial(g.Material))
		}
		if tex != nil {
			mat = mat.WithTexture(tex)
		}
		if cube != nil {
			mat = mat.WithCubemap(cube)
		}
		s.materials[i] = mat
		s.plain[i] = mat.WithTexture(nil)
	}
	return nil
}

// toRenderMaterial converts a file material to shading colors. Faces
// without a material are drawn in silver.
func toRenderMaterial(m *models.Material) *render.Material {
	if m == nil {
		return render.Silver()
	}
	rgb := func(c [3]float32) math3d.Vec3 {
		return math3d.V3(c[0], c[1], c[2]).Scale(255)
	}
	mat := render.NewMaterial(m.Name, rgb(m.Ambient), rgb(m.Diffuse), rgb(m.Specular))
	if m.HasTexture() {
		mat = mat.WithTexture(render.TextureFromImage(m.BaseMap))
	}
	return mat
}

// Context returns the shading context for the model rotated by rot.
func (s *Scene) Context(cam *render.Camera, rot math3d.Mat4, light math3d.Vec3) render.ShadingContext {
	return cam.Context(rot.Mul(s.normalize), light)
}

// DrawOverlay draws the mesh edges, its bounding box and axes through the
// bounds centre.
func (s *Scene) DrawOverlay(w *render.Wireframe, ctx render.ShadingContext) {
	w.DrawMesh(s.Mesh, ctx, render.PackRGB(0, 255, 128))
	lo, hi := s.Mesh.GetBounds()
	box := render.AABB{Min: lo, Max: hi}
	w.DrawBounds(ctx, box, render.ColorGray)
	size := box.Size()
	w.DrawAxes(ctx, box.Center(), max(size.X, size.Y, size.Z)/2)
}

// Draw renders every face group with the given lighting model.
func (s *Scene) Draw(r *render.Rasterizer, ctx render.ShadingContext, model render.LightingModel, textured bool) {
	for i, g := range s.groups {
		mat := s.materials[i]
		if !textured {
			mat = s.plain[i]
		}
		r.DrawMesh(g, ctx, render.NewProgram(model, ctx, mat))
	}
}
