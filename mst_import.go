package fbxview

import (
	"context"
	"fmt"

	jsbin "github.com/flywave/go-3jsbin"
	mst "github.com/flywave/go-mst"
	"github.com/pkg/errors"
)

// MeshesFromMst turns every node of an mst mesh into a Mesh at the origin.
// Node vertices are already in world space. The material of the first face
// group sets the color.
func MeshesFromMst(mh *mst.Mesh, opts ...MeshOption) ([]*Mesh, error) {
	var out []*Mesh
	for i, nd := range mh.Nodes {
		if nd == nil || len(nd.Vertices) == 0 {
			continue
		}
		verts := make([][]float64, len(nd.Vertices))
		for j, v := range nd.Vertices {
			verts[j] = []float64{float64(v[0]), float64(v[1]), float64(v[2])}
		}

		var faces [][]int
		batch := int32(-1)
		for _, fg := range nd.FaceGroup {
			if batch < 0 {
				batch = fg.Batchid
			}
			for _, f := range fg.Faces {
				faces = append(faces, []int{int(f.Vertex[0]), int(f.Vertex[1]), int(f.Vertex[2])})
			}
		}

		o := opts
		if batch >= 0 && int(batch) < len(mh.Materials) {
			if c, ok := materialColor(mh.Materials[batch]); ok {
				o = append(append([]MeshOption(nil), opts...), WithColor(c))
			}
		}
		m, err := NewMesh(verts, polygonVertexIndex(faces), Origin, Origin, UnitScale, o...)
		if err != nil {
			return nil, errors.Wrapf(err, "node %d", i)
		}
		out = append(out, m)
	}
	return out, nil
}

func materialColor(mtl interface{}) (string, bool) {
	var c [3]byte
	switch m := mtl.(type) {
	case *mst.BaseMaterial:
		c = m.Color
	case *mst.TextureMaterial:
		c = m.Color
	case *mst.LambertMaterial:
		c = m.Color
	case *mst.PhongMaterial:
		c = m.Color
	default:
		return "", false
	}
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]), true
}

// ThreejsBinLoader reads three.js binary models through their mst form.
type ThreejsBinLoader struct {
	Options []MeshOption
}

func (l *ThreejsBinLoader) Load(ctx context.Context, path string) ([]*Mesh, error) {
	mh, err := jsbin.ThreejsBin2Mst(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return MeshesFromMst(mh, l.Options...)
}

var _ Loader = (*ThreejsBinLoader)(nil)
