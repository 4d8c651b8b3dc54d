package tscn

import "math"

// curveEpsilon is the x-distance below which a segment is treated as a step.
const curveEpsilon = 0.00001

// ControlPoint is a curve point with the slopes of its left and right
// tangents.
type ControlPoint struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	LeftTangent  float64 `json:"leftTangent"`
	RightTangent float64 `json:"rightTangent"`
}

// Curve is a piecewise cubic Bézier function of x. Points are expected in
// ascending x order, which is how the editor serializes them.
type Curve struct {
	Points []ControlPoint `json:"points"`
}

// AddPoint appends a control point.
func (c *Curve) AddPoint(p ControlPoint) {
	c.Points = append(c.Points, p)
}

// Len returns the number of control points.
func (c *Curve) Len() int { return len(c.Points) }

// Interpolate evaluates the curve at offset. Offsets before the first point
// return the first point's y, offsets past the last point return the last
// point's y. An empty curve evaluates to 0.
func (c *Curve) Interpolate(offset float64) float64 {
	switch len(c.Points) {
	case 0:
		return 0
	case 1:
		return c.Points[0].Y
	}

	i := c.index(offset)
	if i == len(c.Points)-1 {
		return c.Points[i].Y
	}

	local := offset - c.Points[i].X
	if i == 0 && local <= 0 {
		return c.Points[0].Y
	}
	return c.interpolateLocal(i, local)
}

// index returns the index of the point starting the segment that contains
// offset, found by binary search over the point x coordinates.
func (c *Curve) index(offset float64) int {
	lo, hi := 0, len(c.Points)-1

	for hi-lo > 1 {
		m := (lo + hi) / 2
		a := c.Points[m].X
		b := c.Points[m+1].X

		switch {
		case a < offset && b < offset:
			lo = m
		case a > offset:
			hi = m
		default:
			return m
		}
	}

	if offset > c.Points[hi].X {
		return hi
	}
	return lo
}

func (c *Curve) interpolateLocal(i int, offset float64) float64 {
	a := c.Points[i]
	b := c.Points[i+1]

	d := b.X - a.X
	if math.Abs(d) <= curveEpsilon {
		return b.Y
	}

	t := offset / d
	d /= 3

	yac := a.Y + d*a.RightTangent
	ybc := b.Y - d*b.LeftTangent

	return bezier(t, a.Y, yac, ybc, b.Y)
}

// bezier evaluates a one-dimensional cubic Bézier at t.
func bezier(t, start, control1, control2, end float64) float64 {
	omt := 1 - t
	omt2 := omt * omt
	omt3 := omt2 * omt
	t2 := t * t
	t3 := t2 * t

	return start*omt3 + control1*omt2*t*3 + control2*omt*t2*3 + end*t3
}
