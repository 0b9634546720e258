package fbxview

import (
	"image/color"
	"os"

	mst "github.com/flywave/go-mst"
	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/flywave/go3d/vec3"
)

// ToMst bakes the current transform of every shown mesh into an mst mesh,
// one node per Mesh and one base material per color tag. Two-vertex
// polygons carry no surface and are left out.
func ToMst(meshes []*Mesh) (*mst.Mesh, *[6]float64) {
	out := mst.NewMesh()
	bbx := vec3d.MinBox
	mtlMp := make(map[string]int32)

	for _, m := range meshes {
		if !m.Shown() {
			continue
		}
		world := m.World()
		mhNode := &mst.MeshNode{}
		gp := &mst.MeshTriangle{}
		for _, poly := range Polygons(m.edges) {
			for _, tri := range triangulate(poly) {
				if !inRange(tri[:], len(world)) {
					continue
				}
				baseIdx := uint32(len(mhNode.Vertices))
				for _, vi := range tri {
					w := world[vi]
					mhNode.Vertices = append(mhNode.Vertices, vec3.T{float32(w[0]), float32(w[1]), float32(w[2])})
					bbx.Extend(&w)
				}
				gp.Faces = append(gp.Faces, &mst.Face{
					Vertex: [3]uint32{baseIdx, baseIdx + 1, baseIdx + 2},
				})
			}
		}
		if len(gp.Faces) == 0 {
			continue
		}
		bid, ok := mtlMp[m.Color()]
		if !ok {
			bid = int32(len(out.Materials))
			out.Materials = append(out.Materials, &mst.BaseMaterial{Color: colorBytes(m.Color())})
			mtlMp[m.Color()] = bid
		}
		gp.Batchid = bid
		mhNode.FaceGroup = append(mhNode.FaceGroup, gp)
		mhNode.ReComputeNormal()
		out.Nodes = append(out.Nodes, mhNode)
	}
	return out, bbx.Array()
}

// WriteMst exports meshes to path.
func WriteMst(path string, meshes []*Mesh, overwrite bool) error {
	if err := prepareOutput(path, overwrite); err != nil {
		return err
	}
	mh, _ := ToMst(meshes)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	mst.MeshMarshal(f, mh)
	return f.Close()
}

func colorBytes(tag string) [3]byte {
	c, ok := ParseColor(tag)
	if !ok {
		return [3]byte{200, 200, 200}
	}
	r, g, b, _ := color.RGBAModel.Convert(c).RGBA()
	return [3]byte{byte(r >> 8), byte(g >> 8), byte(b >> 8)}
}

func inRange(idx []int, n int) bool {
	for _, i := range idx {
		if i < 0 || i >= n {
			return false
		}
	}
	return true
}
