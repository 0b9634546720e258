package fbxview

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// FocalLength of the fixed pinhole projection.
const FocalLength = 5.0

// defaultCamera is rotated 45° about z and offset one unit along x.
func defaultCamera() *mat.Dense {
	h := math.Sqrt2 / 2
	return mat.NewDense(4, 4, []float64{
		h, h, 0, 1,
		-h, h, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

func defaultFocal() *mat.Dense {
	f := FocalLength
	return mat.NewDense(3, 4, []float64{
		f, 0, 0, 0,
		0, f, 0, 0,
		0, 0, 1, 0,
	})
}

// project maps the vertices through focal · camera⁻¹ · transform and divides
// x and y by depth. Zero depth yields ±Inf or NaN, as with any pinhole
// projection of a point on the camera plane.
func (m *Mesh) project(transform *mat.Dense) (*mat.Dense, error) {
	var inv mat.Dense
	if err := inv.Inverse(m.camera); err != nil {
		return nil, errors.Wrapf(ErrSingularMatrix, "camera: %v", err)
	}

	var view, full, mapped mat.Dense
	view.Mul(m.focal, &inv)
	full.Mul(&view, transform)
	mapped.Mul(&full, m.vertices)

	_, n := mapped.Dims()
	out := mat.NewDense(2, n, nil)
	for j := 0; j < n; j++ {
		w := mapped.At(2, j)
		out.Set(0, j, mapped.At(0, j)/w)
		out.Set(1, j, mapped.At(1, j)/w)
	}
	return out, nil
}
