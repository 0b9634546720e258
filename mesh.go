package fbxview

import (
	"math"
	"os"

	mat4d "github.com/flywave/go3d/float64/mat4"
	vec2d "github.com/flywave/go3d/float64/vec2"
	vec3d "github.com/flywave/go3d/float64/vec3"
	vec4d "github.com/flywave/go3d/float64/vec4"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const DefaultColor = "b"

// Renderer is the display collaborator a Mesh registers itself with.
type Renderer interface {
	AddMesh(m *Mesh)
}

// Mesh is a geometric body with a cumulative affine transform and its
// vertices projected to 2D.
//
// A Mesh owns its state exclusively; methods that mutate it must not be
// called concurrently on the same instance.
type Mesh struct {
	vertices *mat.Dense // 4×N, last row all ones
	edges    []int

	center Point
	angle  Point
	scale  Point

	transform       *mat.Dense
	backup          *mat.Dense
	projected       *mat.Dense // 2×N
	backupProjected *mat.Dense
	camera          *mat.Dense
	focal           *mat.Dense

	show  bool
	color string
}

type MeshOption func(*Mesh)

func WithColor(c string) MeshOption {
	return func(m *Mesh) {
		m.color = c
	}
}

// NewMesh builds a mesh from row-wise vertex data and applies the initial
// placement. Accepted layouts are 4×N and N×4 homogeneous buffers and N×3
// positions.
func NewMesh(vertices [][]float64, edges []int, center, angle, scale Point, opts ...MeshOption) (*Mesh, error) {
	d, err := denseFromRows(vertices)
	if err != nil {
		return nil, err
	}
	return NewMeshFromDense(d, edges, center, angle, scale, opts...)
}

func NewMeshFromDense(vertices *mat.Dense, edges []int, center, angle, scale Point, opts ...MeshOption) (*Mesh, error) {
	v, err := normalizeVertices(vertices)
	if err != nil {
		return nil, err
	}
	m := &Mesh{
		vertices:  v,
		edges:     append([]int(nil), edges...),
		center:    Origin,
		angle:     Origin,
		scale:     UnitScale,
		transform: identity4(),
		camera:    defaultCamera(),
		focal:     defaultFocal(),
		color:     DefaultColor,
	}
	for _, o := range opts {
		o(m)
	}
	if err := m.ApplyTransform(center, angle, scale); err != nil {
		return nil, err
	}
	m.backup = mat.DenseCopyOf(m.transform)
	m.backupProjected = mat.DenseCopyOf(m.projected)
	m.show = true

	logger.Debug("mesh created", "vertices", m.NumVertices(), "edges", len(m.edges),
		"center", m.center, "angle", m.angle, "scale", m.scale)
	return m, nil
}

func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.Wrap(ErrType, "mesh has no vertices")
	}
	r, c := len(rows), len(rows[0])
	data := make([]float64, 0, r*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, errors.Wrapf(ErrType, "vertex row %d has %d values, want %d", i, len(row), c)
		}
		data = append(data, row...)
	}
	return mat.NewDense(r, c, data), nil
}

// normalizeVertices returns a fresh 4×N buffer whose last row is one.
func normalizeVertices(v *mat.Dense) (*mat.Dense, error) {
	if v == nil {
		return nil, errors.Wrap(ErrType, "nil vertex buffer")
	}
	r, c := v.Dims()
	if r == 4 && lastRowIsOne(v) {
		return mat.DenseCopyOf(v), nil
	}
	if c == 3 {
		h := mat.NewDense(r, 4, nil)
		for i := 0; i < r; i++ {
			h.Set(i, 0, v.At(i, 0))
			h.Set(i, 1, v.At(i, 1))
			h.Set(i, 2, v.At(i, 2))
			h.Set(i, 3, 1)
		}
		return mat.DenseCopyOf(h.T()), nil
	}

	out := mat.DenseCopyOf(v)
	if r != 4 {
		if c != 4 {
			return nil, errors.Wrapf(ErrType, "vertex buffer is %d×%d, neither axis has length 4", r, c)
		}
		out = mat.DenseCopyOf(out.T())
	}
	if !lastRowIsOne(out) {
		if _, c := out.Dims(); c != 4 {
			return nil, errors.Wrap(ErrType, "vertex buffer homogeneous row is not all ones")
		}
		out = mat.DenseCopyOf(out.T())
	}
	if !lastRowIsOne(out) {
		return nil, errors.Wrap(ErrType, "vertex buffer homogeneous row is not all ones")
	}
	_, n := out.Dims()
	for j := 0; j < n; j++ {
		out.Set(3, j, 1)
	}
	return out, nil
}

func lastRowIsOne(v *mat.Dense) bool {
	r, c := v.Dims()
	for j := 0; j < c; j++ {
		if math.Abs(v.At(r-1, j)-1) > 1e-9 {
			return false
		}
	}
	return true
}

// ApplyTransform composes shift, rotation and scale on top of the current
// transform. The mesh is left untouched when any step fails.
func (m *Mesh) ApplyTransform(center, angle, scale Point) error {
	next, err := compose(m.transform, center, angle, scale)
	if err != nil {
		return err
	}
	proj, err := m.project(next)
	if err != nil {
		return err
	}
	m.transform = next
	m.projected = proj
	m.center = m.center.Add(center)
	m.angle = m.angle.Add(angle)
	m.scale = m.scale.Mul(scale)
	return nil
}

// Reset restores the transform captured after the initial placement. The
// tracked center, angle and scale keep their accumulated values.
func (m *Mesh) Reset() {
	m.transform = mat.DenseCopyOf(m.backup)
	m.projected = mat.DenseCopyOf(m.backupProjected)
}

func (m *Mesh) Enable() { m.show = true }
func (m *Mesh) Disable() { m.show = false }
func (m *Mesh) Shown() bool { return m.show }
func (m *Mesh) Color() string { return m.color }

func (m *Mesh) SetColor(c string) {
	m.color = c
}

// SendToRender registers the mesh with r.
func (m *Mesh) SendToRender(r Renderer) {
	r.AddMesh(m)
}

// ToFBX is not implemented; it only honours the overwrite contract.
func (m *Mesh) ToFBX(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.Wrapf(ErrAlreadyExists, "%s", path)
	}
	return errors.Wrap(ErrNotSupported, "fbx export")
}

func (m *Mesh) NumVertices() int {
	_, n := m.vertices.Dims()
	return n
}

func (m *Mesh) Vertex(i int) (vec4d.T, error) {
	if i < 0 || i >= m.NumVertices() {
		return vec4d.T{}, errors.Wrapf(ErrIndex, "vertex %d of %d", i, m.NumVertices())
	}
	return vec4d.T{m.vertices.At(0, i), m.vertices.At(1, i), m.vertices.At(2, i), m.vertices.At(3, i)}, nil
}

func (m *Mesh) Vertex2D(i int) (vec2d.T, error) {
	if i < 0 || i >= m.NumVertices() {
		return vec2d.T{}, errors.Wrapf(ErrIndex, "projected vertex %d of %d", i, m.NumVertices())
	}
	return vec2d.T{m.projected.At(0, i), m.projected.At(1, i)}, nil
}

func (m *Mesh) Edges() []int { return append([]int(nil), m.edges...) }
func (m *Mesh) Center() Point { return m.center }
func (m *Mesh) Angle() Point { return m.angle }
func (m *Mesh) Scale() Point { return m.scale }

func (m *Mesh) Vertices() *mat.Dense { return mat.DenseCopyOf(m.vertices) }
func (m *Mesh) Transform() *mat.Dense { return mat.DenseCopyOf(m.transform) }
func (m *Mesh) Backup() *mat.Dense { return mat.DenseCopyOf(m.backup) }
func (m *Mesh) Projected() *mat.Dense { return mat.DenseCopyOf(m.projected) }

// Matrix returns the current transform in go3d's column-major layout.
func (m *Mesh) Matrix() mat4d.T {
	var out mat4d.T
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c][r] = m.transform.At(r, c)
		}
	}
	return out
}

// World returns the transformed vertex positions.
func (m *Mesh) World() []vec3d.T {
	var w mat.Dense
	w.Mul(m.transform, m.vertices)
	n := m.NumVertices()
	out := make([]vec3d.T, n)
	for j := 0; j < n; j++ {
		out[j] = vec3d.T{w.At(0, j), w.At(1, j), w.At(2, j)}
	}
	return out
}

func (m *Mesh) Bounds() vec3d.Box {
	bbx := vec3d.MinBox
	for _, v := range m.World() {
		bbx.Extend(&v)
	}
	return bbx
}
