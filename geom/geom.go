// Package geom provides the flat geometric primitives the rest of the brain
// builds on: points, rectangles, segments, and the disc-swept "boundary"
// used for collision prediction and trajectory correction.
package geom

import "math"

// SqDist returns the squared distance between (fx,fy) and (x,y).
func SqDist(fx, fy, x, y float64) float64 {
	dx := x - fx
	dy := y - fy
	return dx*dx + dy*dy
}

// Point is a plain 2D coordinate.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Inside reports whether (x,y) lies within the rect, inclusive of edges.
func (r Rect) Inside(x, y float64) bool {
	return x >= r.Left && x <= r.Right && y >= r.Top && y <= r.Bottom
}

// MaxSide returns the larger of the rect's width and height.
func (r Rect) MaxSide() float64 {
	w := r.Right - r.Left
	h := r.Bottom - r.Top
	return math.Max(w, h)
}

// Width and Height are the rect's raw extents.
func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Translate shifts the rect by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Inflate expands the rect outward on every side by pad (used for fear
// zones around formations with nonzero attack range).
func (r Rect) Inflate(pad float64) Rect {
	return Rect{Left: r.Left - pad, Top: r.Top - pad, Right: r.Right + pad, Bottom: r.Bottom + pad}
}

// Shrink insets the rect inward on every side by pad. If the inset would
// invert the rect (pad too large for the extent) the rect collapses to its
// center line on that axis rather than going negative.
func (r Rect) Shrink(pad float64) Rect {
	out := Rect{Left: r.Left + pad, Top: r.Top + pad, Right: r.Right - pad, Bottom: r.Bottom - pad}
	if out.Left > out.Right {
		mid := (r.Left + r.Right) / 2
		out.Left, out.Right = mid, mid
	}
	if out.Top > out.Bottom {
		mid := (r.Top + r.Bottom) / 2
		out.Top, out.Bottom = mid, mid
	}
	return out
}

// Segment is a directed line from Src to Dst.
type Segment struct {
	Src, Dst Point
}

// ToVec returns the segment's displacement vector.
func (s Segment) ToVec() (float64, float64) {
	return s.Dst.X - s.Src.X, s.Dst.Y - s.Src.Y
}

// SqDist returns the segment's squared length.
func (s Segment) SqDist() float64 {
	return SqDist(s.Src.X, s.Src.Y, s.Dst.X, s.Dst.Y)
}

// Disc is a single unit's disc: a center and a radius, the unit this
// package's iteration-based constructors are built from.
type Disc struct {
	X, Y, Radius float64
}

// Boundary is a rect plus its centroid and disc-packing density, the
// aggregate geometry cached per formation.
type Boundary struct {
	Rect    Rect
	CX, CY  float64
	Density float64
}

// BoundaryFromDiscs folds a set of unit discs into their covering Boundary.
// Passing no discs returns the zero Boundary.
func BoundaryFromDiscs(discs []Disc) Boundary {
	b := Boundary{
		Rect: Rect{Left: math.MaxFloat64, Top: math.MaxFloat64, Right: -math.MaxFloat64, Bottom: -math.MaxFloat64},
	}
	if len(discs) == 0 {
		return Boundary{}
	}
	var cxSum, cySum, areaSum float64
	for _, d := range discs {
		b.Rect.Left = math.Min(b.Rect.Left, d.X-d.Radius)
		b.Rect.Top = math.Min(b.Rect.Top, d.Y-d.Radius)
		b.Rect.Right = math.Max(b.Rect.Right, d.X+d.Radius)
		b.Rect.Bottom = math.Max(b.Rect.Bottom, d.Y+d.Radius)
		cxSum += d.X
		cySum += d.Y
		areaSum += math.Pi * d.Radius * d.Radius
	}
	total := float64(len(discs))
	b.CX = cxSum / total
	b.CY = cySum / total
	area := (b.Rect.Right - b.Rect.Left) * (b.Rect.Bottom - b.Rect.Top)
	if area > 0 {
		b.Density = areaSum / area
	}
	return b
}

// SqRadius is the squared circumscribing radius around the centroid, using
// whichever side of the rect is farther from the centroid on each axis.
func (b Boundary) SqRadius() float64 {
	wl := b.CX - b.Rect.Left
	wr := b.Rect.Right - b.CX
	w := math.Max(wl, wr)
	ht := b.CY - b.Rect.Top
	hb := b.Rect.Bottom - b.CY
	h := math.Max(ht, hb)
	return w*w + h*h
}

// SqDistToLine returns the squared perpendicular distance from the centroid
// to the infinite line through (fromX,fromY) and (toX,toY).
func (b Boundary) SqDistToLine(fromX, fromY, toX, toY float64) float64 {
	upper := (toX-fromX)*(b.CY-fromY) - (toY-fromY)*(b.CX-fromX)
	upperSq := upper * upper
	lowerSq := SqDist(fromX, fromY, toX, toY)
	return upperSq / lowerSq
}

// sqRadiusFuzzySum is the "fuzzy radius sum" safety envelope: the sum of
// both circumscribing radii plus twice the larger one.
func (b Boundary) sqRadiusFuzzySum(other Boundary) float64 {
	sqRS := b.SqRadius()
	sqRO := other.SqRadius()
	sqRM := math.Max(sqRS, sqRO)
	return sqRS + sqRO + 2*sqRM
}

// PredictCollision reports whether a straight translation of b's centroid
// toward (targetX, targetY) brings its circumscribing circle within
// obstacle's fuzzy radius sum at any point along the way.
func (b Boundary) PredictCollision(targetX, targetY float64, obstacle Boundary) bool {
	scalar := (obstacle.CX-b.CX)*(targetX-b.CX) + (obstacle.CY-b.CY)*(targetY-b.CY)
	if scalar < 0 {
		return false
	}
	limit := b.sqRadiusFuzzySum(obstacle)
	scalar = (obstacle.CX-targetX)*(b.CX-targetX) + (obstacle.CY-targetY)*(b.CY-targetY)
	if scalar < 0 {
		return SqDist(obstacle.CX, obstacle.CY, targetX, targetY) < limit
	}
	sqd := obstacle.SqDistToLine(b.CX, b.CY, targetX, targetY)
	return sqd < limit
}

// CorrectTrajectory returns an adjusted target that places b just outside
// obstacle's fuzzy radius sum, along the line from obstacle's centroid
// through b's centroid.
func (b Boundary) CorrectTrajectory(obstacle Boundary) (float64, float64) {
	limit := b.sqRadiusFuzzySum(obstacle)
	sqDist := SqDist(b.CX, b.CY, obstacle.CX, obstacle.CY)
	factorSq := limit / sqDist
	factor := math.Sqrt(factorSq)
	x := (b.CX-obstacle.CX)*factor + obstacle.CX
	y := (b.CY-obstacle.CY)*factor + obstacle.CY
	return x, y
}
