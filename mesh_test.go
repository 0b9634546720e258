package fbxview

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	vec3d "github.com/flywave/go3d/float64/vec3"
	vec4d "github.com/flywave/go3d/float64/vec4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func newTestMesh(t *testing.T, verts [][]float64, edges []int) *Mesh {
	t.Helper()
	m, err := NewMesh(verts, edges, Origin, Origin, UnitScale)
	require.NoError(t, err)
	return m
}

func TestNewMeshLayouts(t *testing.T) {
	t.Run("4xN", func(t *testing.T) {
		m := newTestMesh(t, [][]float64{{0, 1}, {0, 2}, {0, 3}, {1, 1}}, nil)
		assert.Equal(t, 2, m.NumVertices())
		v, err := m.Vertex(1)
		require.NoError(t, err)
		assert.Equal(t, vec4d.T{1, 2, 3, 1}, v)
	})
	t.Run("Nx4", func(t *testing.T) {
		m := newTestMesh(t, [][]float64{{0, 0, 0, 1}, {1, 0, 0, 1}, {0, 1, 0, 1}}, nil)
		assert.Equal(t, 3, m.NumVertices())
		v, err := m.Vertex(2)
		require.NoError(t, err)
		assert.Equal(t, vec4d.T{0, 1, 0, 1}, v)
	})
	t.Run("Nx3", func(t *testing.T) {
		m := newTestMesh(t, [][]float64{{1, 2, 3}}, nil)
		v, err := m.Vertex(0)
		require.NoError(t, err)
		assert.Equal(t, vec4d.T{1, 2, 3, 1}, v)
	})
	t.Run("4x4", func(t *testing.T) {
		// rows are vertices when the last column is the homogeneous one
		m := newTestMesh(t, [][]float64{{1, 2, 3, 1}, {4, 5, 6, 1}, {7, 8, 9, 1}, {0, 0, 0, 1}}, nil)
		v, err := m.Vertex(1)
		require.NoError(t, err)
		assert.Equal(t, vec4d.T{4, 5, 6, 1}, v)
	})
}

func TestNewMeshRejects(t *testing.T) {
	for name, verts := range map[string][][]float64{
		"empty":     nil,
		"ragged":    {{0, 0, 0, 1}, {1, 0, 1}},
		"2 columns": {{0, 0}, {1, 1}},
		"not ones":  {{0, 0, 0, 5}, {1, 0, 0, 5}},
		"empty row": {{}},
	} {
		_, err := NewMesh(verts, nil, Origin, Origin, UnitScale)
		assert.True(t, errors.Is(err, ErrType), "%s: %v", name, err)
	}
}

func TestNewMeshBadPlacement(t *testing.T) {
	verts := [][]float64{{0, 0, 0}}
	_, err := NewMesh(verts, nil, Origin, Point{7, 0, 0}, UnitScale)
	assert.True(t, errors.Is(err, ErrValue))

	_, err = NewMesh(verts, nil, Origin, Origin, Point{1, 1, 0})
	assert.True(t, errors.Is(err, ErrValue))
}

func TestMeshProjection(t *testing.T) {
	m := newTestMesh(t, [][]float64{{0, 0, 2}, {1, 1, 2}}, []int{0, 1})

	p, err := m.Vertex2D(0)
	require.NoError(t, err)
	assert.InDelta(t, -1.7677669529663689, p[0], 1e-9)
	assert.InDelta(t, -1.7677669529663689, p[1], 1e-9)

	p, err = m.Vertex2D(1)
	require.NoError(t, err)
	assert.InDelta(t, -1.7677669529663689, p[0], 1e-9)
	assert.InDelta(t, 1.7677669529663689, p[1], 1e-9)
}

func TestMeshProjectionZeroDepth(t *testing.T) {
	m := newTestMesh(t, [][]float64{{1, 0, 0}}, nil)
	p, err := m.Vertex2D(0)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(p[0]) || math.IsInf(p[0], 0))
}

func TestApplyTransformAccumulates(t *testing.T) {
	m := newTestMesh(t, [][]float64{{0, 0, 0}}, nil)

	require.NoError(t, m.ApplyTransform(Point{1, 0, 0}, Point{0, 0, 0.5}, Point{2, 2, 2}))
	require.NoError(t, m.ApplyTransform(Point{1, 0, 0}, Point{0, 0, 0.25}, Point{3, 3, 3}))

	assert.Equal(t, Point{2, 0, 0}, m.Center())
	assert.True(t, m.Angle().ApproxEqual(Point{0, 0, 0.75}, 1e-12))
	assert.Equal(t, Point{6, 6, 6}, m.Scale())
}

func TestApplyTransformIsAtomic(t *testing.T) {
	m := newTestMesh(t, [][]float64{{0, 0, 2}, {1, 1, 2}}, []int{0, 1})
	require.NoError(t, m.ApplyTransform(Point{0, 0, 1}, Origin, UnitScale))

	transform, projected := m.Transform(), m.Projected()
	center, angle, scale := m.Center(), m.Angle(), m.Scale()

	err := m.ApplyTransform(Point{5, 5, 5}, Point{0, twoPi, 0}, UnitScale)
	assert.True(t, errors.Is(err, ErrValue))
	err = m.ApplyTransform(Point{5, 5, 5}, Origin, Point{0, 1, 1})
	assert.True(t, errors.Is(err, ErrValue))

	m.camera = mat.NewDense(4, 4, nil)
	err = m.ApplyTransform(Point{5, 5, 5}, Origin, UnitScale)
	assert.True(t, errors.Is(err, ErrSingularMatrix))

	assert.True(t, mat.Equal(transform, m.Transform()))
	assert.True(t, mat.Equal(projected, m.Projected()))
	assert.Equal(t, center, m.Center())
	assert.Equal(t, angle, m.Angle())
	assert.Equal(t, scale, m.Scale())
}

func TestMeshReset(t *testing.T) {
	m, err := NewMesh([][]float64{{0, 0, 2}}, nil, Point{0, 0, 1}, Origin, UnitScale)
	require.NoError(t, err)
	backup, projected := m.Backup(), m.Projected()

	require.NoError(t, m.ApplyTransform(Point{1, 2, 3}, Point{0.1, 0, 0}, Point{2, 2, 2}))
	assert.False(t, mat.Equal(backup, m.Transform()))

	m.Reset()
	assert.True(t, mat.Equal(backup, m.Transform()))
	assert.True(t, mat.Equal(projected, m.Projected()))
	// tracked values are not rolled back
	assert.Equal(t, Point{1, 2, 4}, m.Center())
	assert.Equal(t, Point{2, 2, 2}, m.Scale())
}

func TestMeshVertexRange(t *testing.T) {
	m := newTestMesh(t, [][]float64{{0, 0, 0}, {1, 1, 1}}, nil)

	v, err := m.Vertex(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v[3])

	_, err = m.Vertex(2)
	assert.True(t, errors.Is(err, ErrIndex))
	_, err = m.Vertex(-1)
	assert.True(t, errors.Is(err, ErrIndex))
	_, err = m.Vertex2D(2)
	assert.True(t, errors.Is(err, ErrIndex))
}

func TestMeshAccessorsCopy(t *testing.T) {
	m := newTestMesh(t, [][]float64{{0, 0, 0}, {1, 1, 1}}, []int{0, 1})

	e := m.Edges()
	e[0] = 9
	assert.Equal(t, []int{0, 1}, m.Edges())

	v := m.Vertices()
	v.Set(0, 0, 42)
	got, _ := m.Vertex(0)
	assert.Equal(t, 0.0, got[0])
}

func TestMeshMatrixAndWorld(t *testing.T) {
	m, err := NewMesh([][]float64{{0, 0, 0}, {1, 1, 1}}, nil, Point{1, 2, 3}, Origin, Point{2, 2, 2})
	require.NoError(t, err)

	mx := m.Matrix()
	assert.Equal(t, vec4d.T{2, 4, 6, 1}, mx[3])
	assert.Equal(t, vec4d.T{2, 0, 0, 0}, mx[0])

	world := m.World()
	require.Len(t, world, 2)
	assert.Equal(t, vec3d.T{2, 4, 6}, world[0])
	assert.Equal(t, vec3d.T{4, 6, 8}, world[1])

	bx := m.Bounds()
	assert.Equal(t, vec3d.T{2, 4, 6}, bx.Min)
	assert.Equal(t, vec3d.T{4, 6, 8}, bx.Max)
}

func TestMeshShowAndColor(t *testing.T) {
	m, err := NewMesh([][]float64{{0, 0, 0}}, nil, Origin, Origin, UnitScale, WithColor("r"))
	require.NoError(t, err)
	assert.True(t, m.Shown())
	assert.Equal(t, "r", m.Color())

	m.Disable()
	assert.False(t, m.Shown())
	m.Enable()
	assert.True(t, m.Shown())

	m.SetColor("k")
	assert.Equal(t, "k", m.Color())
}

type recorder struct {
	meshes []*Mesh
}

func (r *recorder) AddMesh(m *Mesh) {
	r.meshes = append(r.meshes, m)
}

func TestSendToRender(t *testing.T) {
	m := newTestMesh(t, [][]float64{{0, 0, 0}}, nil)
	r := &recorder{}
	m.SendToRender(r)
	m.SendToRender(r)
	require.Len(t, r.meshes, 2)
	assert.Same(t, m, r.meshes[0])
}

func TestToFBX(t *testing.T) {
	m := newTestMesh(t, [][]float64{{0, 0, 0}}, nil)
	dir := t.TempDir()

	err := m.ToFBX(filepath.Join(dir, "new.fbx"), false)
	assert.True(t, errors.Is(err, ErrNotSupported))

	existing := filepath.Join(dir, "old.fbx")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0644))

	err = m.ToFBX(existing, false)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
	err = m.ToFBX(existing, true)
	assert.True(t, errors.Is(err, ErrNotSupported))

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
