package fbxview

import (
	"encoding/json"
	"math"

	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/pkg/errors"
)

// Point is a 3-component value used for center, angle (radians per axis)
// and scale.
type Point vec3d.T

var (
	Origin    = Point{0, 0, 0}
	UnitScale = Point{1, 1, 1}
)

func NewPoint(x, y, z float64) Point {
	return Point{x, y, z}
}

// Broadcast returns a Point with s in every component.
func Broadcast(s float64) Point {
	return Point{s, s, s}
}

func PointFromSlice(s []float64) (Point, error) {
	if len(s) != 3 {
		return Point{}, errors.Wrapf(ErrType, "point needs 3 components, got %d", len(s))
	}
	return Point{s[0], s[1], s[2]}, nil
}

// PointFrom resolves a scalar, a 3-sequence, a go3d vector or another Point.
func PointFrom(v interface{}) (Point, error) {
	switch t := v.(type) {
	case Point:
		return t, nil
	case *Point:
		if t == nil {
			return Point{}, errors.Wrap(ErrType, "nil point")
		}
		return *t, nil
	case vec3d.T:
		return Point(t), nil
	case [3]float64:
		return Point(t), nil
	case []float64:
		return PointFromSlice(t)
	case []interface{}:
		s := make([]float64, len(t))
		for i := range t {
			f, ok := toFloat(t[i])
			if !ok {
				return Point{}, errors.Wrapf(ErrType, "point component %d is %T", i, t[i])
			}
			s[i] = f
		}
		return PointFromSlice(s)
	}
	if f, ok := toFloat(v); ok {
		return Broadcast(f), nil
	}
	return Point{}, errors.Wrapf(ErrType, "cannot make a point from %T", v)
}

func (p Point) Add(o Point) Point {
	a, b := vec3d.T(p), vec3d.T(o)
	return Point(vec3d.Add(&a, &b))
}

// Mul is the component-wise product.
func (p Point) Mul(o Point) Point {
	return Point{p[0] * o[0], p[1] * o[1], p[2] * o[2]}
}

func (p Point) Scaled(s float64) Point {
	return Point{p[0] * s, p[1] * s, p[2] * s}
}

func (p Point) ApproxEqual(o Point, tol float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(p[i]-o[i]) > tol {
			return false
		}
	}
	return true
}

func (p Point) Vec3() vec3d.T {
	return vec3d.T(p)
}

func (p Point) X() float64 { return p[0] }
func (p Point) Y() float64 { return p[1] }
func (p Point) Z() float64 { return p[2] }

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
