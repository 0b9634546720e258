package fbxview

import (
	"testing"

	mst "github.com/flywave/go-mst"
	"github.com/flywave/go3d/vec3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeshesFromMst(t *testing.T) {
	src, _ := ToMst([]*Mesh{square(t, Point{0, 0, 2}, "#336699")})
	require.Len(t, src.Nodes, 1)

	meshes, err := MeshesFromMst(src)
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	m := meshes[0]
	assert.Equal(t, 6, m.NumVertices())
	assert.Len(t, Polygons(m.Edges()), 2)
	assert.Equal(t, "#336699", m.Color())
	assert.Equal(t, Origin, m.Center())

	bx := m.Bounds()
	assert.Equal(t, 2.0, bx.Min[2])
	assert.Equal(t, 1.0, bx.Max[0])
}

func TestMeshesFromMstSkipsEmptyNodes(t *testing.T) {
	mh := mst.NewMesh()
	mh.Nodes = append(mh.Nodes, &mst.MeshNode{}, &mst.MeshNode{
		Vertices: []vec3.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	})

	meshes, err := MeshesFromMst(mh, WithColor("y"))
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Equal(t, "y", meshes[0].Color())
	assert.Empty(t, meshes[0].Edges())
}

func TestMaterialColor(t *testing.T) {
	phong := &mst.PhongMaterial{}
	phong.Color = [3]byte{1, 2, 255}
	c, ok := materialColor(phong)
	require.True(t, ok)
	assert.Equal(t, "#0102ff", c)

	_, ok = materialColor(nil)
	assert.False(t, ok)
}
