package fbxview

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	mat4d "github.com/flywave/go3d/float64/mat4"
	"github.com/flywave/gltf"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FBX, FormatOf("models/Chair.FBX"))
	assert.Equal(t, JSON, FormatOf("a.b.json"))
	assert.Equal(t, "", FormatOf("noext"))
}

func TestLoaderFactory(t *testing.T) {
	for format, want := range map[string]Loader{
		FBX:     &FbxLoader{},
		JSON:    &JsonLoader{},
		GLTF:    &GltfLoader{},
		GLB:     &GltfLoader{},
		OBJ:     &ObjLoader{},
		THREEDS: &ThreeDsLoader{},
		DAE:     &DaeLoader{},
		TBIN:    &ThreejsBinLoader{},
	} {
		ld, err := LoaderFactory(format, nil)
		require.NoError(t, err, format)
		assert.IsType(t, want, ld, format)
	}

	_, err := LoaderFactory("stl", nil)
	assert.True(t, errors.Is(err, ErrUnknownFormat))

	cfg := DefaultConfig()
	cfg.Reader.Pairing = "bogus"
	_, err = LoaderFactory(JSON, cfg)
	assert.True(t, errors.Is(err, ErrValue))
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	doc := testDocument(
		testGeometry(1, [][]float64{{0, 0, 0, 1}, {1, 0, 0, 1}}, []int{0, 1}),
		testModel(2, testAttr(AttrTranslation, 1, 0, 0), testAttr(AttrScaling, 100, 100, 100)),
	)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, EncodeDocument(f, doc))
	require.NoError(t, f.Close())

	cfg := DefaultConfig()
	cfg.Reader.Color = "m"
	meshes, err := Load(context.Background(), path, cfg)
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Equal(t, Point{1, 0, 0}, meshes[0].Center())
	assert.Equal(t, "m", meshes[0].Color())

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "none.json"), nil)
	assert.Error(t, err)
}

// fakeConverter writes a fixed document and records the paths it was given.
type fakeConverter struct {
	doc    *Node
	input  string
	output string
}

func (c *fakeConverter) Convert(ctx context.Context, input, output string, overwrite bool) error {
	c.input, c.output = input, output
	if err := prepareOutput(output, overwrite); err != nil {
		return err
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeDocument(f, c.doc)
}

func TestReadFBXDerivesJSONPath(t *testing.T) {
	dir := t.TempDir()
	conv := &fakeConverter{doc: testDocument(testGeometry(1, []float64{0, 0, 0}, []int{}))}
	fbxPath := filepath.Join(dir, "part.fbx")

	meshes, err := ReadFBX(context.Background(), conv, NewTreeReader(), fbxPath, "", false)
	require.NoError(t, err)
	assert.Len(t, meshes, 1)
	assert.Equal(t, filepath.Join(dir, "part.json"), conv.output)

	_, err = ReadFBX(context.Background(), conv, NewTreeReader(), fbxPath, "", false)
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	ld := &FbxLoader{Converter: conv, Overwrite: true}
	meshes, err = ld.Load(context.Background(), fbxPath)
	require.NoError(t, err)
	assert.Len(t, meshes, 1)
}

func TestFbxLoaderMissingFile(t *testing.T) {
	ld := &FbxLoader{Converter: NewFbxConverter()}
	_, err := ld.Load(context.Background(), filepath.Join(t.TempDir(), "none.fbx"))
	assert.Error(t, err)
}

func TestObjLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.obj")
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	meshes, err := Load(context.Background(), path, nil)
	require.NoError(t, err)
	require.Len(t, meshes, 1)
	assert.Equal(t, 3, meshes[0].NumVertices())
	assert.Equal(t, [][]int{{0, 1, 2}}, Polygons(meshes[0].Edges()))
}

func TestNodePlacement(t *testing.T) {
	nd := &gltf.Node{
		Translation: [3]float32{1, 2, 3},
		Scale:       [3]float32{2, 2, 2},
		Rotation:    [4]float32{0, 0, 0, 1},
	}
	pl := nodePlacement(nd)
	assert.Equal(t, Point{2, 2, 2}, pl.Scale)
	assert.True(t, pl.Angle.ApproxEqual(Origin, 1e-12))
	assertPlacedLike(t, nodeMatrix(t, Point{1, 2, 3}, Origin, Point{2, 2, 2}), pl, 1e-9)

	pl = nodePlacement(&gltf.Node{})
	assert.Equal(t, UnitScale, pl.Scale)
	assert.Equal(t, Origin, pl.Angle)

	nd = &gltf.Node{Matrix: [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 4, 5, 6, 1}}
	pl = nodePlacement(nd)
	assert.Equal(t, Point{4, 5, 6}, pl.Center)

	a := nodeMatrix(t, Point{1, -2, 3}, Point{0, 0, 0.5}, Point{2, 2, 2})
	nd = &gltf.Node{}
	for i, v := range a {
		nd.Matrix[i] = float32(v)
	}
	assertPlacedLike(t, a, nodePlacement(nd), 1e-5)
}

func TestMatrixPlacement(t *testing.T) {
	a := nodeMatrix(t, Point{2, 0, -1}, Point{0.7, 0, 0}, Point{3, 3, 3})
	var m mat4d.T
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			m[c][r] = a[c*4+r]
		}
	}
	assertPlacedLike(t, a, matrixPlacement(&m), 1e-9)

	assert.Equal(t, DefaultPlacement(), matrixPlacement(&mat4d.T{}))
}

func TestQuatAngles(t *testing.T) {
	// 90° about z
	h := float32(0.70710677)
	pl := nodePlacement(&gltf.Node{Rotation: [4]float32{0, 0, h, h}})
	assert.InDelta(t, 1.5707963, pl.Angle[2], 1e-5)
	assert.InDelta(t, 0, pl.Angle[0], 1e-5)
}
