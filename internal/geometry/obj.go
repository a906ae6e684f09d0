package geometry

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseOBJ reads a Wavefront OBJ vertex/face list into a CustomMesh.
// Supported: "v x y z" positions and "f" faces with 3 or 4 corners, including
// the v/vt/vn slash forms (only the position index is kept) and negative
// (relative) indices. Quads are split into two triangles. Unknown and
// malformed lines are skipped, matching the leniency of common OBJ loaders;
// a face referencing a vertex that does not exist is an error.
func ParseOBJ(r io.Reader) (CustomMesh, error) {
	var mesh CustomMesh
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				continue
			}
			var v [3]float32
			ok := true
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					ok = false
					break
				}
				v[i] = float32(f)
			}
			if ok {
				mesh.Vertices = append(mesh.Vertices, v)
			}
		case "f":
			corners := fields[1:]
			if len(corners) < 3 {
				continue
			}
			idx := make([]int, 0, len(corners))
			for _, c := range corners {
				i, err := faceIndex(c, len(mesh.Vertices))
				if err != nil {
					return CustomMesh{}, fmt.Errorf("geometry: obj line %d: %w", line, err)
				}
				idx = append(idx, i)
			}
			// Fan triangulation covers triangles and quads alike.
			for i := 2; i < len(idx); i++ {
				mesh.Faces = append(mesh.Faces, [3]int{idx[0], idx[i-1], idx[i]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return CustomMesh{}, fmt.Errorf("geometry: read obj: %w", err)
	}
	return mesh, nil
}

// faceIndex resolves one face corner ("7", "7/1", "7//3", "-1") to a
// zero-based vertex index. OBJ indices are 1-based; negative counts back from
// the most recently read vertex.
func faceIndex(corner string, numVertices int) (int, error) {
	if i := strings.IndexByte(corner, '/'); i >= 0 {
		corner = corner[:i]
	}
	n, err := strconv.Atoi(corner)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", corner)
	}
	switch {
	case n > 0:
		n--
	case n < 0:
		n = numVertices + n
	default:
		return 0, fmt.Errorf("face index 0 is not valid")
	}
	if n < 0 || n >= numVertices {
		return 0, fmt.Errorf("face index %q out of range", corner)
	}
	return n, nil
}
