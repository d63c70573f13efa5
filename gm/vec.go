package gm

import (
	"fmt"
	"math"
)

var VecOne = Vec{X: 1, Y: 1}

func VecOf(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

type Vec struct {
	X, Y float64
}

func (v Vec) Add(other Vec) Vec {
	v.X += other.X
	v.Y += other.Y
	return v
}

func (v Vec) Sub(other Vec) Vec {
	v.X -= other.X
	v.Y -= other.Y
	return v
}

func (v Vec) Mul(scalar float64) Vec {
	v.X *= scalar
	v.Y *= scalar
	return v
}

func (v Vec) MulEach(other Vec) Vec {
	v.X *= other.X
	v.Y *= other.Y
	return v
}

func (v Vec) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Rotated returns the vector rotated by the given angle around the origin.
func (v Vec) Rotated(angle Rad) Vec {
	sin, cos := angle.Sin(), angle.Cos()

	return Vec{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

func (v Vec) String() string {
	return fmt.Sprintf("vec(x=%v, y=%v)", v.X, v.Y)
}
