package fbxview

import (
	"context"
	"os"

	gobj "github.com/flywave/go-obj"
	"github.com/pkg/errors"
)

// ObjLoader reads an OBJ file as a single mesh at the origin. Faces keep
// their corner count and are stored in polygon-vertex encoding.
type ObjLoader struct {
	Options []MeshOption
}

func (l *ObjLoader) Load(ctx context.Context, path string) ([]*Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := &gobj.ObjReader{}
	if err := reader.Read(file); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	if len(reader.V) == 0 {
		return []*Mesh{}, nil
	}

	verts := make([][]float64, len(reader.V))
	for i, v := range reader.V {
		verts[i] = []float64{float64(v[0]), float64(v[1]), float64(v[2])}
	}

	var faces [][]int
	for _, face := range reader.F {
		var poly []int
		for _, corner := range face.Corners {
			if corner.VertexIndex < 0 || corner.VertexIndex >= len(reader.V) {
				continue
			}
			poly = append(poly, corner.VertexIndex)
		}
		if len(poly) < 2 {
			continue
		}
		faces = append(faces, poly)
	}
	edges := polygonVertexIndex(faces)

	d := DefaultPlacement()
	mh, err := NewMesh(verts, edges, d.Center, d.Angle, d.Scale, l.Options...)
	if err != nil {
		return nil, err
	}
	return []*Mesh{mh}, nil
}

var _ Loader = (*ObjLoader)(nil)
