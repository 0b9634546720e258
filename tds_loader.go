package fbxview

import (
	"context"
	"fmt"
	"os"

	tds "github.com/flywave/go-3ds"
	mat4d "github.com/flywave/go3d/float64/mat4"
	quat "github.com/flywave/go3d/float64/quaternion"
	vec4d "github.com/flywave/go3d/float64/vec4"
	"github.com/pkg/errors"
)

// ThreeDsLoader yields one mesh per 3DS mesh chunk. A mesh with a keyframer
// instance node is placed by that node, any other by its local matrix. The
// diffuse color of the first face's material becomes the mesh color.
type ThreeDsLoader struct {
	Options []MeshOption
}

func (l *ThreeDsLoader) Load(ctx context.Context, path string) ([]*Mesh, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	f := tds.OpenFile(path)
	mtls := f.GetMaterials()

	ndMap := make(map[string]*tds.MeshInstanceNode)
	for _, nd := range f.GetMeshInstanceNode() {
		ndMap[nd.InstanceName] = nd
	}

	var meshes []*Mesh
	for _, m := range f.GetMeshs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(m.Vertices) == 0 {
			continue
		}
		verts := make([][]float64, len(m.Vertices))
		for i, v := range m.Vertices {
			verts[i] = []float64{float64(v[0]), float64(v[1]), float64(v[2])}
		}
		faces := make([][]int, 0, len(m.Faces))
		for _, fc := range m.Faces {
			faces = append(faces, []int{int(fc.Index[0]), int(fc.Index[1]), int(fc.Index[2])})
		}

		var pl Placement
		if nd, ok := ndMap[m.Name]; ok {
			pl = instancePlacement(nd)
		} else {
			mat := mat4d.Ident
			for i, r := range m.Matrix {
				mat[i] = vec4d.T{float64(r[0]), float64(r[1]), float64(r[2]), float64(r[3])}
			}
			pl = matrixPlacement(&mat)
		}

		opts := l.Options
		if len(m.Faces) > 0 {
			if mi := int(m.Faces[0].Material); mi >= 0 && mi < len(mtls) {
				d := mtls[mi].Diffuse
				c := fmt.Sprintf("#%02x%02x%02x", byte(d[0]*255), byte(d[1]*255), byte(d[2]*255))
				opts = append(append([]MeshOption(nil), l.Options...), WithColor(c))
			}
		}

		mh, err := NewMesh(verts, polygonVertexIndex(faces), pl.Center, pl.Angle, pl.Scale, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "mesh %s", m.Name)
		}
		meshes = append(meshes, mh)
	}
	return meshes, nil
}

func instancePlacement(nd *tds.MeshInstanceNode) Placement {
	pl := DefaultPlacement()
	pl.Center = Point{float64(nd.Pos[0]), float64(nd.Pos[1]), float64(nd.Pos[2])}
	q := quat.FromVec4(&vec4d.T{float64(nd.Rot[0]), float64(nd.Rot[1]), float64(nd.Rot[2]), float64(nd.Rot[3])})
	if q != (quat.T{}) {
		pl.Angle = quatAngles(q)
	}
	s := Point{float64(nd.Scl[0]), float64(nd.Scl[1]), float64(nd.Scl[2])}
	if s[0] != 0 && s[1] != 0 && s[2] != 0 {
		pl.Scale = s
	}
	return trsPlacement(pl.Center, pl.Angle, pl.Scale)
}

// matrixPlacement decomposes a go3d matrix. Degenerate matrices give the
// default placement.
func matrixPlacement(m *mat4d.T) Placement {
	var a [16]float64
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			a[c*4+r] = m[c][r]
		}
	}
	t, rDeg, s := decomposeColumnMajor(a)
	if s[0] == 0 || s[1] == 0 || s[2] == 0 {
		return DefaultPlacement()
	}
	return trsPlacement(t, Point{degToRad(rDeg[0]), degToRad(rDeg[1]), degToRad(rDeg[2])}, s)
}

var _ Loader = (*ThreeDsLoader)(nil)
