package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/sloth/pkg/math3d"
)

// missing marks a face corner without a UV or normal reference. It is patched
// to a shared fallback entry once the whole file has been read.
const missing = -1

// LoadOBJ loads a Wavefront OBJ file.
func LoadOBJ(path string) (*Mesh, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".obj" {
		return nil, fmt.Errorf("load %s: extension %q: %w", path, ext, ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ParseOBJ(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return mesh, nil
}

// ParseOBJ reads v, vt, vn and f records. Comments, blank lines and other
// record types are skipped. Face indices are converted to 0-based and
// polygons are fan-triangulated.
func ParseOBJ(r io.Reader, name string) (*Mesh, error) {
	mesh := NewMesh(name)
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		var err error
		switch fields[0] {
		case "v":
			var v math3d.Vec3
			v, err = parseVec3(fields[1:])
			mesh.Positions = append(mesh.Positions, v)
		case "vn":
			var n math3d.Vec3
			n, err = parseVec3(fields[1:])
			mesh.Normals = append(mesh.Normals, n)
		case "vt":
			var uv math3d.Vec2
			uv, err = parseVec2(fields[1:])
			mesh.UVs = append(mesh.UVs, uv)
		case "f":
			err = parseFace(mesh, fields[1:])
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	patchMissing(mesh)
	mesh.CalculateBounds()

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d components, got %d: %w", n, len(fields), ErrMalformed)
	}
	out := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", fields[i], ErrMalformed)
		}
		out[i] = f
	}
	return out, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	f, err := parseFloats(fields, 3)
	if err != nil {
		return math3d.Vec3{}, err
	}
	return math3d.V3(f[0], f[1], f[2]), nil
}

// parseVec2 reads u and v; an optional third (w) component is ignored.
func parseVec2(fields []string) (math3d.Vec2, error) {
	f, err := parseFloats(fields, 2)
	if err != nil {
		return math3d.Vec2{}, err
	}
	return math3d.V2(f[0], f[1]), nil
}

func parseFace(mesh *Mesh, tokens []string) error {
	if len(tokens) < 3 {
		return fmt.Errorf("face with %d corners: %w", len(tokens), ErrMalformed)
	}

	corners := make([]Index, len(tokens))
	for i, tok := range tokens {
		idx, err := parseCorner(mesh, tok)
		if err != nil {
			return err
		}
		corners[i] = idx
	}

	for i := 1; i+1 < len(corners); i++ {
		mesh.Faces = append(mesh.Faces, Face{corners[0], corners[i], corners[i+1]})
	}
	return nil
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn".
func parseCorner(mesh *Mesh, tok string) (Index, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 || parts[0] == "" {
		return Index{}, fmt.Errorf("face corner %q: %w", tok, ErrMalformed)
	}

	idx := Index{UV: missing, Normal: missing}
	var err error
	if idx.Position, err = resolveIndex(parts[0], len(mesh.Positions)); err != nil {
		return Index{}, fmt.Errorf("face corner %q: %w", tok, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if idx.UV, err = resolveIndex(parts[1], len(mesh.UVs)); err != nil {
			return Index{}, fmt.Errorf("face corner %q: %w", tok, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if idx.Normal, err = resolveIndex(parts[2], len(mesh.Normals)); err != nil {
			return Index{}, fmt.Errorf("face corner %q: %w", tok, err)
		}
	}
	return idx, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index to 0-based.
// Bounds are checked later by Validate.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("index %q: %w", s, ErrMalformed)
	}
	if n < 0 {
		return count + n, nil
	}
	return n - 1, nil
}

func patchMissing(mesh *Mesh) {
	uvFallback, normalFallback := -1, -1
	for fi := range mesh.Faces {
		for ci := range mesh.Faces[fi] {
			idx := &mesh.Faces[fi][ci]
			if idx.UV == missing {
				if uvFallback < 0 {
					mesh.UVs = append(mesh.UVs, math3d.V2(0, 0))
					uvFallback = len(mesh.UVs) - 1
				}
				idx.UV = uvFallback
			}
			if idx.Normal == missing {
				if normalFallback < 0 {
					mesh.Normals = append(mesh.Normals, math3d.Zero3())
					normalFallback = len(mesh.Normals) - 1
				}
				idx.Normal = normalFallback
			}
		}
	}
}
