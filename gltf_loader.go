package fbxview

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"

	"github.com/flywave/go3d/float64/quaternion"
	"github.com/flywave/gltf"
	"github.com/pkg/errors"
)

var (
	emptyMatrix    = [16]float64{}
	identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
)

// GltfLoader yields one mesh per node that references a mesh, placed by the
// node's own matrix or translation, rotation and scale. Parent nodes are
// ignored.
type GltfLoader struct {
	Options []MeshOption
}

func (g *GltfLoader) Load(ctx context.Context, path string) ([]*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}
	return g.LoadDoc(ctx, doc)
}

func (g *GltfLoader) LoadDoc(ctx context.Context, doc *gltf.Document) ([]*Mesh, error) {
	var meshes []*Mesh
	for i, nd := range doc.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if nd == nil || nd.Mesh == nil {
			continue
		}
		verts, edges, err := readGltfMesh(doc, int(*nd.Mesh))
		if err != nil {
			return nil, errors.Wrapf(err, "node %d", i)
		}
		if len(verts) == 0 {
			continue
		}
		pl := nodePlacement(nd)
		mh, err := NewMesh(verts, edges, pl.Center, pl.Angle, pl.Scale, g.Options...)
		if err != nil {
			return nil, errors.Wrapf(err, "node %d", i)
		}
		meshes = append(meshes, mh)
	}
	return meshes, nil
}

func nodePlacement(nd *gltf.Node) Placement {
	var m [16]float64
	for i := range m {
		m[i] = float64(nd.Matrix[i])
	}
	if m != emptyMatrix && m != identityMatrix {
		t, r, s := decomposeColumnMajor(m)
		return trsPlacement(t, r.Scaled(math.Pi/180), s)
	}

	pl := DefaultPlacement()
	pl.Center = Point{float64(nd.Translation[0]), float64(nd.Translation[1]), float64(nd.Translation[2])}
	s := Point{float64(nd.Scale[0]), float64(nd.Scale[1]), float64(nd.Scale[2])}
	if s != Origin {
		pl.Scale = s
	}
	q := quaternion.T{float64(nd.Rotation[0]), float64(nd.Rotation[1]), float64(nd.Rotation[2]), float64(nd.Rotation[3])}
	if q != (quaternion.T{}) {
		pl.Angle = quatAngles(q)
	}
	return trsPlacement(pl.Center, pl.Angle, pl.Scale)
}

// quatAngles converts a rotation quaternion (x, y, z, w) to the per-axis
// angles in radians used by Mesh.
func quatAngles(q quaternion.T) Point {
	q.Normalize()
	x, y, z, w := q[0], q[1], q[2], q[3]
	m := [16]float64{
		1 - 2*(y*y+z*z), 2 * (x*y + w*z), 2 * (x*z - w*y), 0,
		2 * (x*y - w*z), 1 - 2*(x*x+z*z), 2 * (y*z + w*x), 0,
		2 * (x*z + w*y), 2 * (y*z - w*x), 1 - 2*(x*x+y*y), 0,
		0, 0, 0, 1,
	}
	_, r, _ := decomposeColumnMajor(m)
	return r.Scaled(math.Pi / 180)
}

// readGltfMesh merges the primitives of one mesh. Edges are triangles in
// polygon-vertex encoding.
func readGltfMesh(doc *gltf.Document, mhid int) ([][]float64, []int, error) {
	if mhid < 0 || mhid >= len(doc.Meshes) {
		return nil, nil, errors.Wrapf(ErrStructure, "mesh %d", mhid)
	}
	var verts [][]float64
	var edges []int
	for _, ps := range doc.Meshes[mhid].Primitives {
		idx, ok := ps.Attributes["POSITION"]
		if !ok {
			continue
		}
		acc, err := gltfAccessor(doc, int(idx))
		if err != nil {
			return nil, nil, err
		}
		base := len(verts)
		err = readDataByAccessor(doc, acc, func(res interface{}) {
			if v, ok := res.(*[3]float32); ok {
				verts = append(verts, []float64{float64(v[0]), float64(v[1]), float64(v[2])})
			}
		})
		if err != nil {
			return nil, nil, err
		}

		var fv []int
		if ps.Indices != nil {
			acc, err := gltfAccessor(doc, int(*ps.Indices))
			if err != nil {
				return nil, nil, err
			}
			err = readDataByAccessor(doc, acc, func(res interface{}) {
				switch n := res.(type) {
				case *uint8:
					fv = append(fv, int(*n))
				case *uint16:
					fv = append(fv, int(*n))
				case *uint32:
					fv = append(fv, int(*n))
				}
			})
			if err != nil {
				return nil, nil, err
			}
		} else {
			for i := base; i < len(verts); i++ {
				fv = append(fv, i-base)
			}
		}
		for i := 0; i+2 < len(fv); i += 3 {
			edges = append(edges, base+fv[i], base+fv[i+1], ^(base + fv[i+2]))
		}
	}
	return verts, edges, nil
}

func gltfAccessor(doc *gltf.Document, i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(doc.Accessors) || doc.Accessors[i] == nil {
		return nil, errors.Wrapf(ErrStructure, "accessor %d", i)
	}
	return doc.Accessors[i], nil
}

// readDataByAccessor decodes every element of acc, stepping by the buffer
// view's byte stride when it has one.
func readDataByAccessor(doc *gltf.Document, acc *gltf.Accessor, procces func(interface{})) error {
	if acc.BufferView == nil || int(*acc.BufferView) >= len(doc.BufferViews) {
		return errors.Wrap(ErrStructure, "sparse or empty accessor")
	}
	bv := doc.BufferViews[int(*acc.BufferView)]
	if int(bv.Buffer) >= len(doc.Buffers) {
		return errors.Wrapf(ErrStructure, "buffer %d", bv.Buffer)
	}
	buffer := doc.Buffers[int(bv.Buffer)]

	var fcs interface{}
	switch acc.Type {
	case gltf.AccessorVec3:
		if acc.ComponentType == gltf.ComponentFloat {
			fcs = &[3]float32{}
		}
	case gltf.AccessorScalar:
		switch acc.ComponentType {
		case gltf.ComponentUbyte:
			n := uint8(0)
			fcs = &n
		case gltf.ComponentUshort:
			n := uint16(0)
			fcs = &n
		case gltf.ComponentUint:
			n := uint32(0)
			fcs = &n
		}
	}
	if fcs == nil {
		return errors.Wrapf(ErrType, "accessor type %v/%v", acc.Type, acc.ComponentType)
	}

	size := binary.Size(fcs)
	stride := int(bv.ByteStride)
	if stride == 0 {
		stride = size
	}
	start := int(bv.ByteOffset + acc.ByteOffset)
	end := int(bv.ByteOffset + bv.ByteLength)
	count := int(acc.Count)
	if start > end || end > len(buffer.Data) || count > 0 && start+(count-1)*stride+size > end {
		return errors.Wrap(ErrStructure, "accessor outside buffer")
	}

	for i := 0; i < count; i++ {
		off := start + i*stride
		if err := binary.Read(bytes.NewReader(buffer.Data[off:off+size]), binary.LittleEndian, fcs); err != nil {
			return errors.Wrap(err, "read accessor")
		}
		procces(fcs)
	}
	return nil
}

var _ Loader = (*GltfLoader)(nil)
