package models

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/scanline/pkg/math3d"
)

// objIndex identifies a unique position/texcoord/normal combination.
type objIndex struct {
	v, vt, vn int
}

// objParser accumulates OBJ state while reading a file.
type objParser struct {
	dir       string
	mesh      *Mesh
	positions []math3d.Vec3
	texcoords []math3d.Vec2
	normals   []math3d.Vec3
	lookup    map[objIndex]int
	materials map[string]int
	current   int
}

// LoadOBJ loads a Wavefront OBJ file. Polygons are fan-triangulated and
// materials from referenced MTL files (Ka, Kd, Ks, map_Kd) are attached.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ReadOBJ(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// ReadOBJ parses OBJ data from r. dir is used to resolve mtllib and texture
// paths; an empty dir disables material loading.
func ReadOBJ(r io.Reader, dir string) (*Mesh, error) {
	p := &objParser{
		dir:       dir,
		mesh:      NewMesh("obj"),
		lookup:    make(map[objIndex]int),
		materials: make(map[string]int),
		current:   -1,
	}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := p.directive(fields); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	if !p.mesh.hasNormals() {
		p.mesh.CalculateSmoothNormals()
	}
	p.mesh.CalculateBounds()
	return p.mesh, nil
}

func (p *objParser) directive(fields []string) error {
	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, math3d.V3(v[0], v[1], v[2]))
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.texcoords = append(p.texcoords, math3d.V2(v[0], v[1]))
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, math3d.V3(v[0], v[1], v[2]))
	case "f":
		return p.face(fields[1:])
	case "mtllib":
		if p.dir == "" || len(fields) < 2 {
			return nil
		}
		return p.loadMTL(filepath.Join(p.dir, strings.Join(fields[1:], " ")))
	case "usemtl":
		if len(fields) < 2 {
			return nil
		}
		idx, ok := p.materials[fields[1]]
		if !ok {
			idx = -1
		}
		p.current = idx
	}
	return nil
}

// face adds a polygon as a clockwise triangle fan.
func (p *objParser) face(refs []string) error {
	if len(refs) < 3 {
		return fmt.Errorf("face has %d vertices", len(refs))
	}
	idx := make([]int, len(refs))
	for i, ref := range refs {
		vi, err := p.vertex(ref)
		if err != nil {
			return err
		}
		idx[i] = vi
	}
	// OBJ polygons are counter-clockwise.
	for i := 1; i+1 < len(idx); i++ {
		p.mesh.Faces = append(p.mesh.Faces, Face{
			V:        [3]int{idx[0], idx[i+1], idx[i]},
			Material: p.current,
		})
	}
	return nil
}

// vertex resolves a v/vt/vn reference to a mesh vertex index, adding the
// vertex on first use.
func (p *objParser) vertex(ref string) (int, error) {
	parts := strings.Split(ref, "/")
	var key objIndex
	var err error
	if key.v, err = resolveIndex(parts[0], len(p.positions)); err != nil {
		return 0, err
	}
	key.vt, key.vn = -1, -1
	if len(parts) > 1 && parts[1] != "" {
		if key.vt, err = resolveIndex(parts[1], len(p.texcoords)); err != nil {
			return 0, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.vn, err = resolveIndex(parts[2], len(p.normals)); err != nil {
			return 0, err
		}
	}

	if i, ok := p.lookup[key]; ok {
		return i, nil
	}
	v := MeshVertex{Position: p.positions[key.v]}
	if key.vt >= 0 {
		v.UV = p.texcoords[key.vt]
	}
	if key.vn >= 0 {
		v.Normal = p.normals[key.vn]
	}
	p.mesh.Vertices = append(p.mesh.Vertices, v)
	i := len(p.mesh.Vertices) - 1
	p.lookup[key] = i
	return i, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad index %q: %w", s, err)
	}
	if i < 0 {
		i += n
	} else {
		i--
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("index %s out of range (have %d)", s, n)
	}
	return i, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", fields[i], err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// loadMTL reads the materials of an MTL file into the mesh.
func (p *objParser) loadMTL(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open mtl: %w", err)
	}
	defer f.Close()

	var cur *Material
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) < 2 {
				return fmt.Errorf("newmtl without a name")
			}
			p.mesh.Materials = append(p.mesh.Materials, Material{Name: fields[1], Roughness: 1})
			p.materials[fields[1]] = len(p.mesh.Materials) - 1
			cur = &p.mesh.Materials[len(p.mesh.Materials)-1]
			continue
		}
		if cur == nil {
			continue
		}
		switch fields[0] {
		case "Ka", "Kd", "Ks":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return fmt.Errorf("%s: %w", fields[0], err)
			}
			c := [3]float32{v[0], v[1], v[2]}
			switch fields[0] {
			case "Ka":
				cur.Ambient = c
			case "Kd":
				cur.Diffuse = c
			default:
				cur.Specular = c
			}
		case "map_Kd":
			img, err := decodeImageFile(filepath.Join(filepath.Dir(path), fields[len(fields)-1]))
			if err != nil {
				return err
			}
			cur.BaseMap = img
		}
	}
	return sc.Err()
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return img, nil
}
