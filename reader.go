package fbxview

import (
	"math"

	"github.com/pkg/errors"
)

// Placement is the (center, angle, scale) triple of one object.
type Placement struct {
	Center Point
	Angle  Point // radians
	Scale  Point
}

// DefaultPlacement is what a Geometry gets until its Model is read.
func DefaultPlacement() Placement {
	return Placement{Center: Origin, Angle: Origin, Scale: UnitScale}
}

// Geometry is a "Geometry" object found under Objects.
type Geometry struct {
	Pos      int // position among the Objects children
	Node     *Node
	Vertices [][]float64
	Edges    []int
}

// Model is a "Model" object found under Objects.
type Model struct {
	Pos       int
	Node      *Node
	Placement Placement
}

// TreeReader rebuilds placed meshes from a document tree.
type TreeReader struct {
	Pairing Pairing
	Options []MeshOption
}

func NewTreeReader() *TreeReader {
	return &TreeReader{Pairing: CounterPairing{}}
}

// ReadMeshes reads root with positional Geometry/Model pairing.
func ReadMeshes(root *Node) ([]*Mesh, error) {
	return NewTreeReader().Read(root)
}

// Read returns one mesh per Geometry, in document order. The list is empty,
// not nil, when Objects has no children.
func (tr *TreeReader) Read(root *Node) ([]*Mesh, error) {
	objects, err := root.Child(ObjectsIndex)
	if err != nil {
		return nil, errors.Wrap(err, "objects")
	}

	var geoms []Geometry
	var models []Model
	for pos, obj := range objects.Children {
		if obj == nil {
			continue
		}
		switch obj.Name {
		case NodeGeometry:
			g, err := readGeometry(obj)
			if err != nil {
				return nil, errors.Wrapf(err, "geometry at %d", pos)
			}
			g.Pos = pos
			geoms = append(geoms, g)
		case NodeModel:
			pl, err := readPlacement(obj)
			if err != nil {
				return nil, errors.Wrapf(err, "model at %d", pos)
			}
			models = append(models, Model{Pos: pos, Node: obj, Placement: pl})
		}
	}

	pairing := tr.Pairing
	if pairing == nil {
		pairing = CounterPairing{}
	}
	targets, err := pairing.Pair(root, geoms, models)
	if err != nil {
		return nil, err
	}

	meshes := make([]*Mesh, 0, len(geoms))
	for _, g := range geoms {
		d := DefaultPlacement()
		mh, err := NewMesh(g.Vertices, g.Edges, d.Center, d.Angle, d.Scale, tr.Options...)
		if err != nil {
			return nil, errors.Wrapf(err, "geometry at %d", g.Pos)
		}
		meshes = append(meshes, mh)
	}
	for i, gi := range targets {
		if gi < 0 {
			continue
		}
		g, pl := geoms[gi], models[i].Placement
		mh, err := NewMesh(g.Vertices, g.Edges, pl.Center, pl.Angle, pl.Scale, tr.Options...)
		if err != nil {
			return nil, errors.Wrapf(err, "model at %d", models[i].Pos)
		}
		meshes[gi] = mh
	}

	logger.Debug("document read", "geometries", len(geoms), "models", len(models), "meshes", len(meshes))
	return meshes, nil
}

func readGeometry(obj *Node) (Geometry, error) {
	vn, err := obj.Child(GeometryVerticesIndex)
	if err != nil {
		return Geometry{}, err
	}
	vp, err := vn.Property(0)
	if err != nil {
		return Geometry{}, err
	}
	rows, err := vertexRows(vp)
	if err != nil {
		return Geometry{}, err
	}

	en, err := obj.Child(GeometryEdgesIndex)
	if err != nil {
		return Geometry{}, err
	}
	ep, err := en.Property(0)
	if err != nil {
		return Geometry{}, err
	}
	edges, err := ep.Ints()
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{Node: obj, Vertices: rows, Edges: edges}, nil
}

// vertexRows accepts nested rows or a flat array. Flat arrays are xyz
// triples, except a lone 4-value array which is one homogeneous vertex.
func vertexRows(p Property) ([][]float64, error) {
	switch v := p.Value.(type) {
	case [][]float64:
		out := make([][]float64, len(v))
		for i := range v {
			out[i] = append([]float64(nil), v[i]...)
		}
		return out, nil
	case []interface{}:
		if len(v) > 0 {
			if _, nested := v[0].([]interface{}); nested {
				out := make([][]float64, len(v))
				for i := range v {
					row, err := Property{Value: v[i]}.Floats()
					if err != nil {
						return nil, errors.Wrapf(err, "vertex row %d", i)
					}
					out[i] = row
				}
				return out, nil
			}
		}
	}

	flat, err := p.Floats()
	if err != nil {
		return nil, err
	}
	if len(flat) == 4 {
		return [][]float64{flat}, nil
	}
	if len(flat)%3 != 0 {
		return nil, errors.Wrapf(ErrStructure, "flat vertex array of length %d is not xyz triples", len(flat))
	}
	out := make([][]float64, 0, len(flat)/3)
	for i := 0; i < len(flat); i += 3 {
		out = append(out, flat[i:i+3:i+3])
	}
	return out, nil
}

func readPlacement(obj *Node) (Placement, error) {
	pl := DefaultPlacement()
	props, err := obj.Child(ModelPropertiesIndex)
	if err != nil {
		return pl, err
	}
	for _, attr := range props.Children {
		if attr == nil || len(attr.Properties) == 0 {
			continue
		}
		head := attr.Properties[0].Value
		name, _ := head.(string)
		switch {
		case name == AttrTranslation:
			v, err := attrVector(attr)
			if err != nil {
				return pl, errors.Wrap(err, AttrTranslation)
			}
			pl.Center = v
		case name == AttrRotation:
			v, err := attrVector(attr)
			if err != nil {
				return pl, errors.Wrap(err, AttrRotation)
			}
			pl.Angle = Point{degToRad(v[0]), degToRad(v[1]), degToRad(v[2])}
		case isIndicator(head, AttrScaling):
			v, err := attrVector(attr)
			if err != nil {
				return pl, errors.Wrap(err, AttrScaling)
			}
			pl.Scale = Point{v[0] / ScaleDivisor, v[1] / ScaleDivisor, v[2] / ScaleDivisor}
		default:
			logger.Debug("attribute skipped", "model", obj.Name, "attr", head)
		}
	}
	return pl, nil
}

// isIndicator reports whether v names want, either directly or as the only
// element of a list.
func isIndicator(v interface{}, want string) bool {
	switch t := v.(type) {
	case string:
		return t == want
	case []string:
		return len(t) == 1 && t[0] == want
	case []interface{}:
		if len(t) != 1 {
			return false
		}
		s, ok := t[0].(string)
		return ok && s == want
	}
	return false
}

func attrVector(attr *Node) (Point, error) {
	var p Point
	for i := 0; i < 3; i++ {
		prop, err := attr.Property(AttrValueIndex + i)
		if err != nil {
			return p, err
		}
		if p[i], err = prop.Float(); err != nil {
			return p, err
		}
	}
	return p, nil
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180
}
