package fbxview

import (
	"context"
	"math"
	"os"
	"strconv"
	"strings"

	dae "github.com/flywave/go-collada"
	"github.com/pkg/errors"
)

// DaeLoader yields one mesh per geometry instance of the top-level visual
// scene nodes, placed by the node's matrix or by its translate, rotate and
// scale elements.
type DaeLoader struct {
	Options []MeshOption
}

func (l *DaeLoader) Load(ctx context.Context, path string) ([]*Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	collada, err := dae.LoadDocumentFromReader(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	daeGeoMap := make(map[string]*dae.Geometry)
	for _, g := range collada.LibraryGeometries {
		for _, geo := range g.Geometry {
			daeGeoMap[string(geo.Id)] = geo
		}
	}

	var meshes []*Mesh
	for _, sce := range collada.LibraryVisualScenes {
		for _, vs := range sce.VisualScene {
			for _, nd := range vs.Node {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				pl := daePlacement(nd)
				for _, g := range nd.InstanceGeometry {
					geoId := g.Url.GetId()
					geo, ok := daeGeoMap[geoId]
					if !ok {
						logger.Debug("dae geometry not found", "node", string(nd.Id), "geometry", geoId)
						continue
					}
					verts, edges, err := readDaeGeometry(geo)
					if err != nil {
						return nil, errors.Wrapf(err, "geometry %s", geoId)
					}
					if len(verts) == 0 {
						continue
					}
					mh, err := NewMesh(verts, edges, pl.Center, pl.Angle, pl.Scale, l.Options...)
					if err != nil {
						return nil, errors.Wrapf(err, "node %s", string(nd.Id))
					}
					meshes = append(meshes, mh)
				}
			}
		}
	}
	return meshes, nil
}

// readDaeGeometry returns the POSITION source as rows and the polylists and
// triangle lists in polygon-vertex encoding.
func readDaeGeometry(geo *dae.Geometry) ([][]float64, []int, error) {
	mh := geo.Mesh

	srcMap := make(map[string]*dae.Source)
	for _, src := range mh.Source {
		srcMap[string(src.Id)] = src
	}

	var verts [][]float64
	for _, input := range mh.Vertices.Input {
		if input.Semantic != "POSITION" {
			continue
		}
		src, ok := srcMap[input.Source.GetId()]
		if !ok {
			return nil, nil, errors.Wrapf(ErrStructure, "source %s", input.Source.GetId())
		}
		ay := src.FloatArray.ToSlice()
		stride := int(src.TechniqueCommon.Accessor.Stride)
		if stride < 3 {
			stride = 3
		}
		for i := 0; i+2 < len(ay); i += stride {
			v, err := daeFloats(ay[i:i+3], 3)
			if err != nil {
				return nil, nil, err
			}
			verts = append(verts, v)
		}
	}

	var faces [][]int
	for _, p := range mh.Polylist {
		offset, stride := vertexOffset(p.Input)
		counts, err := daeInts(p.VCount.ToSlice())
		if err != nil {
			return nil, nil, err
		}
		idxs, err := daeInts(p.P.ToSlice())
		if err != nil {
			return nil, nil, err
		}
		j := 0
		for _, n := range counts {
			face := make([]int, 0, n)
			for k := 0; k < n; k++ {
				if j+offset >= len(idxs) {
					return nil, nil, errors.Wrap(ErrStructure, "polylist shorter than its vcount")
				}
				face = append(face, idxs[j+offset])
				j += stride
			}
			faces = append(faces, face)
		}
	}

	for _, t := range mh.Triangles {
		var trg dae.Trig = t
		offset, stride := vertexOffset(trg.GetSharedInput())
		idxs, err := daeInts(trg.GetP().ToSlice())
		if err != nil {
			return nil, nil, err
		}
		for k := 0; k < int(trg.GetCount()); k++ {
			face := make([]int, 3)
			for c := range face {
				at := (k*3+c)*stride + offset
				if at >= len(idxs) {
					return nil, nil, errors.Wrap(ErrStructure, "triangles shorter than their count")
				}
				face[c] = idxs[at]
			}
			faces = append(faces, face)
		}
	}

	for _, f := range faces {
		if !inRange(f, len(verts)) {
			return nil, nil, errors.Wrapf(ErrStructure, "face %v outside %d positions", f, len(verts))
		}
	}
	return verts, polygonVertexIndex(faces), nil
}

// vertexOffset returns the offset of the VERTEX input and the number of
// indices per corner.
func vertexOffset(inputs []*dae.InputShared) (int, int) {
	offset, stride := 0, 1
	for _, input := range inputs {
		if int(input.Offset)+1 > stride {
			stride = int(input.Offset) + 1
		}
		if input.Semantic == "VERTEX" {
			offset = int(input.Offset)
		}
	}
	return offset, stride
}

func daePlacement(nd *dae.Node) Placement {
	pl := DefaultPlacement()
	if len(nd.Matrix) > 0 {
		rm, err := daeFloats(nd.Matrix[0].ToSlice(), 16)
		if err != nil {
			return pl
		}
		var a [16]float64
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				a[c*4+r] = rm[r*4+c]
			}
		}
		t, rDeg, s := decomposeColumnMajor(a)
		return trsPlacement(t, rDeg.Scaled(math.Pi/180), s)
	}

	if len(nd.Translate) > 0 {
		if v, err := daeFloats(nd.Translate[0].ToSlice(), 3); err == nil {
			pl.Center = Point{v[0], v[1], v[2]}
		}
	}
	for _, t := range nd.Rotate {
		v, err := daeFloats(t.ToSlice(), 4)
		if err != nil {
			continue
		}
		axis := -1
		switch {
		case t.Sid == "rotationX" || v[0] == 1 && v[1] == 0 && v[2] == 0:
			axis = 0
		case t.Sid == "rotationY" || v[0] == 0 && v[1] == 1 && v[2] == 0:
			axis = 1
		case t.Sid == "rotationZ" || v[0] == 0 && v[1] == 0 && v[2] == 1:
			axis = 2
		}
		if axis >= 0 {
			pl.Angle[axis] = degToRad(v[3])
		}
	}
	if len(nd.Scale) > 0 {
		if v, err := daeFloats(nd.Scale[0].ToSlice(), 3); err == nil {
			pl.Scale = Point{v[0], v[1], v[2]}
		}
	}
	return trsPlacement(pl.Center, pl.Angle, pl.Scale)
}

// daeFloats parses the first n values of a COLLADA list; missing values are
// zero.
func daeFloats(vs []string, n int) ([]float64, error) {
	out := make([]float64, n)
	for i, s := range vs {
		if i >= n {
			break
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, errors.Wrapf(ErrStructure, "value %q", s)
		}
		out[i] = f
	}
	return out, nil
}

func daeInts(vs []string) ([]int, error) {
	out := make([]int, 0, len(vs))
	for _, s := range vs {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Wrapf(ErrStructure, "index %q", s)
		}
		out = append(out, v)
	}
	return out, nil
}

var _ Loader = (*DaeLoader)(nil)
