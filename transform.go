package fbxview

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const twoPi = 2 * math.Pi

func identity4() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

func shiftMatrix(shift Point) *mat.Dense {
	x, y, z := shift[0], shift[1], shift[2]
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, z,
		0, 0, 0, 1,
	})
}

// rotationMatrix builds the yaw-pitch-roll matrix for (alpha, beta, gamma).
// Each angle must lie in [-2π, 2π).
//
// Row 1 column 2 is cosα·sinβ·sinα − sinα·cosγ, not the orthogonal
// cosα·sinβ·sinγ − sinα·cosγ. Meshes loaded from existing documents were
// placed with this matrix, so it is kept as is; see
// TestRotationMatrixKeepsRowOneColumnTwoTerm.
func rotationMatrix(rotation Point) (*mat.Dense, error) {
	for i, a := range rotation {
		if !(a >= -twoPi && a < twoPi) {
			return nil, errors.Wrapf(ErrValue, "rotation angle %d = %v outside [-2π, 2π)", i, a)
		}
	}
	alfa, beta, gamma := rotation[0], rotation[1], rotation[2]
	ca, cb, cc := math.Cos(alfa), math.Cos(beta), math.Cos(gamma)
	sa, sb, sc := math.Sin(alfa), math.Sin(beta), math.Sin(gamma)

	return mat.NewDense(4, 4, []float64{
		cb * cc, sa*sb*cc - ca*sc, ca*sb*cc + sa*sc, 0,
		cb * sc, sa*sb*sc + ca*cc, ca*sb*sa - sa*cc, 0,
		-sb, sa * cb, ca * cb, 0,
		0, 0, 0, 1,
	}), nil
}

func scaleMatrix(scale Point) (*mat.Dense, error) {
	for i, s := range scale {
		if s == 0 {
			return nil, errors.Wrapf(ErrValue, "scale component %d is zero", i)
		}
	}
	x, y, z := scale[0], scale[1], scale[2]
	return mat.NewDense(4, 4, []float64{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}), nil
}

// compose returns scale · rotation · shift · prev. Nothing is allocated for
// the result until every factor has been built.
func compose(prev *mat.Dense, center, angle, scale Point) (*mat.Dense, error) {
	shift := shiftMatrix(center)
	rot, err := rotationMatrix(angle)
	if err != nil {
		return nil, err
	}
	scl, err := scaleMatrix(scale)
	if err != nil {
		return nil, err
	}

	var rs, srs, out mat.Dense
	rs.Mul(rot, shift)
	srs.Mul(scl, &rs)
	out.Mul(&srs, prev)
	return &out, nil
}

// trsPlacement turns a node transform t·R·S into the placement whose
// S·R·T pipeline puts the node origin at t. The two agree on every vertex
// when the scale is uniform or the node is not rotated.
func trsPlacement(t, angle, scale Point) Placement {
	pl := Placement{Center: t, Angle: angle, Scale: scale}
	c, err := pipelineCenter(t, angle, scale)
	if err != nil {
		logger.Debug("node translation kept as center", "err", err)
		return pl
	}
	pl.Center = c
	return pl
}

// pipelineCenter solves S·R·c = t for c.
func pipelineCenter(t, angle, scale Point) (Point, error) {
	rot, err := rotationMatrix(angle)
	if err != nil {
		return Point{}, err
	}
	scl, err := scaleMatrix(scale)
	if err != nil {
		return Point{}, err
	}
	var sr, inv mat.Dense
	sr.Mul(scl, rot)
	if err := inv.Inverse(&sr); err != nil {
		return Point{}, errors.Wrapf(ErrSingularMatrix, "node scale·rotation: %v", err)
	}
	var c mat.VecDense
	c.MulVec(&inv, mat.NewVecDense(4, []float64{t[0], t[1], t[2], 1}))
	return Point{c.AtVec(0), c.AtVec(1), c.AtVec(2)}, nil
}
