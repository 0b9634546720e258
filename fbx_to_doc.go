package fbxview

import (
	"context"
	"math"
	"os"

	fbx "github.com/flywave/ofbx"
	"github.com/pkg/errors"
)

// FbxConverter reads FBX files in process and lays the scene out as the
// document tree the external dump tool produces.
type FbxConverter struct{}

func NewFbxConverter() *FbxConverter {
	return &FbxConverter{}
}

func (cv *FbxConverter) Document(input string) (*Node, error) {
	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scene, err := fbx.Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", input)
	}
	return sceneDocument(scene), nil
}

func (cv *FbxConverter) Convert(ctx context.Context, input, output string, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := cv.Document(input)
	if err != nil {
		return err
	}
	if err := prepareOutput(output, overwrite); err != nil {
		return err
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	err = EncodeDocument(f, doc)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		discardOutput(output)
	}
	return err
}

func sceneDocument(scene *fbx.Scene) *Node {
	objects := NewNode(NodeObjects)
	conns := NewNode(NodeConnections)

	var id int64
	for _, mh := range scene.Meshes {
		g := mh.Geometry
		if g == nil || len(g.Vertices) == 0 {
			continue
		}
		geomID, modelID := id+1, id+2
		id += 2

		flat := make([]float64, 0, len(g.Vertices)*3)
		for _, v := range g.Vertices {
			flat = append(flat, float64(v[0]), float64(v[1]), float64(v[2]))
		}
		poly := polygonVertexIndex(g.Faces)
		objects.Add(geometryNode(geomID, mh.Name(), flat, poly))

		t, r, s := decomposeColumnMajor(fbx.GetGlobalMatrix(mh).ToArray())
		objects.Add(modelNode(modelID, mh.Name(), t, r, s))

		conns.Add(
			NewNode("C", "OO", geomID, modelID),
			NewNode("C", "OO", modelID, int64(0)),
		)
	}

	root := NewNode("")
	for _, name := range headerNodes {
		root.Add(NewNode(name))
	}
	root.Children[3].Properties = []Property{{Value: "go-fbxview"}}
	return root.Add(objects, conns)
}

func geometryNode(id int64, name string, flat []float64, poly []int) *Node {
	return NewNode(NodeGeometry, id, name+"\x00\x01Geometry", "Mesh").Add(
		NewNode("Properties70"),
		NewNode("GeometryVersion", 124),
		NewNode("Vertices", flat),
		NewNode("PolygonVertexIndex", poly),
		NewNode("Edges", poly),
	)
}

// modelNode stores rotation in degrees and scale in percent.
func modelNode(id int64, name string, t, rDeg, s Point) *Node {
	p := func(attr string, v Point) *Node {
		return NewNode("P", attr, attr, "", "A", v[0], v[1], v[2])
	}
	return NewNode(NodeModel, id, name+"\x00\x01Model", "Mesh").Add(
		NewNode("Version", 232),
		NewNode("Properties70").Add(
			p(AttrTranslation, t),
			p(AttrRotation, rDeg),
			p(AttrScaling, s.Scaled(ScaleDivisor)),
		),
	)
}

// polygonVertexIndex encodes faces FBX style: the last index of every
// polygon is stored as its bitwise complement.
func polygonVertexIndex(faces [][]int) []int {
	var out []int
	for _, f := range faces {
		if len(f) == 0 {
			continue
		}
		out = append(out, f[:len(f)-1]...)
		out = append(out, ^f[len(f)-1])
	}
	return out
}

// decomposeColumnMajor splits an affine matrix t·R·S into translation,
// rotation angles in degrees (the inverse of rotationMatrix for the
// orthogonal part) and per-axis scale.
func decomposeColumnMajor(a [16]float64) (t, rDeg, s Point) {
	t = Point{a[12], a[13], a[14]}
	c0 := Point{a[0], a[1], a[2]}
	c1 := Point{a[4], a[5], a[6]}
	c2 := Point{a[8], a[9], a[10]}
	s = Point{norm(c0), norm(c1), norm(c2)}

	div := func(v float64) float64 {
		if v == 0 {
			return 1
		}
		return v
	}
	r00 := c0[0] / div(s[0])
	r10 := c0[1] / div(s[0])
	r20 := c0[2] / div(s[0])
	r11 := c1[1] / div(s[1])
	r21 := c1[2] / div(s[1])
	r12 := c2[1] / div(s[2])
	r22 := c2[2] / div(s[2])

	beta := math.Asin(math.Max(-1, math.Min(1, -r20)))
	var alpha, gamma float64
	if math.Abs(math.Cos(beta)) > 1e-9 {
		alpha = math.Atan2(r21, r22)
		gamma = math.Atan2(r10, r00)
	} else {
		alpha = math.Atan2(-r12, r11)
	}
	rad := 180 / math.Pi
	return t, Point{alpha * rad, beta * rad, gamma * rad}, s
}

func norm(p Point) float64 {
	return math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])
}

var (
	_ Converter      = (*FbxConverter)(nil)
	_ DocumentSource = (*FbxConverter)(nil)
)
