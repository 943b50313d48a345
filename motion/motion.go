// Package motion adapts a formation's current rectangle and its optional
// travel segment into a shape indexable by the kdv k-d tree in (x, y, time)
// space. It is the router's obstacle primitive: every other formation is
// represented as one motion.Shape, and the router queries the tree built
// from them for collisions along its own candidate motion.
package motion

import (
	"math"

	"github.com/pthm-cable/strategybrain/geom"
)

// Axis is one of the three dimensions the k-d tree cuts along.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisTime
)

// Axes is the fixed X/Y/Time cycle the tree is built over.
var Axes = []Axis{AxisX, AxisY, AxisTime}

// TimeKind distinguishes a finite instant from the open-ended "stopped
// forever from here on" sentinel.
type TimeKind int

const (
	TimeMoment TimeKind = iota
	TimeStop
)

// TimeMotion is a time coordinate: either a specific Moment or a Stop
// marking "from here on, forever". Moment(a) always orders before any
// Stop(b); two Stops order by their value, and so do two Moments.
type TimeMotion struct {
	Kind TimeKind
	V    float64
}

// Moment constructs a finite time coordinate.
func Moment(t float64) TimeMotion { return TimeMotion{Kind: TimeMoment, V: t} }

// Stop constructs an open-ended "stopped from t onward" coordinate.
func Stop(t float64) TimeMotion { return TimeMotion{Kind: TimeStop, V: t} }

// AdjustFuture promotes a Stop boundary forward in time: if t is a Stop(s)
// with s before moment, it becomes Stop(moment). Moments are left alone.
func (t TimeMotion) AdjustFuture(moment float64) TimeMotion {
	if t.Kind == TimeMoment {
		return t
	}
	if t.V < moment {
		return Stop(moment)
	}
	return t
}

// Less implements the Moment-before-Stop, same-kind-by-value ordering.
func (t TimeMotion) Less(o TimeMotion) bool {
	switch {
	case t.Kind == TimeMoment && o.Kind == TimeMoment:
		return t.V < o.V
	case t.Kind == TimeStop && o.Kind == TimeStop:
		return t.V < o.V
	case t.Kind == TimeMoment && o.Kind == TimeStop:
		return true
	default: // Stop, Moment
		return false
	}
}

// CoordKind distinguishes a plain XY coordinate from a Time coordinate.
type CoordKind int

const (
	CoordXY CoordKind = iota
	CoordTime
)

// Coord is the kdv coordinate type for this instantiation: a value tagged
// by which axis kind produced it, carrying either a float (X or Y) or a
// TimeMotion.
type Coord struct {
	Kind CoordKind
	XY   float64
	Time TimeMotion
}

func xyCoord(v float64) Coord       { return Coord{Kind: CoordXY, XY: v} }
func timeCoord(t TimeMotion) Coord  { return Coord{Kind: CoordTime, Time: t} }

// Less, LessEq, Greater, GreaterEq implement kdv.Ordered[Coord].
func (c Coord) Less(o Coord) bool {
	if c.Kind == CoordXY {
		return c.XY < o.XY
	}
	return c.Time.Less(o.Time)
}
func (c Coord) Greater(o Coord) bool   { return o.Less(c) }
func (c Coord) LessEq(o Coord) bool    { return !c.Greater(o) }
func (c Coord) GreaterEq(o Coord) bool { return !c.Less(o) }

// CutPoint computes a node's cut coordinate as the arithmetic mean of its
// resident fragments' coordinates along the node's axis. For the Time axis
// a Stop value contributes its underlying instant to the mean same as a
// Moment would; the result is always tagged Moment, since a mean of
// instants is itself a concrete instant, never an open-ended sentinel.
func CutPoint(coords []Coord) Coord {
	if len(coords) == 0 {
		return Coord{}
	}
	if coords[0].Kind == CoordXY {
		var sum float64
		for _, c := range coords {
			sum += c.XY
		}
		return xyCoord(sum / float64(len(coords)))
	}
	var sum float64
	for _, c := range coords {
		sum += c.Time.V
	}
	return timeCoord(Moment(sum / float64(len(coords))))
}

// point is one corner of a BoundingBox.
type point struct {
	X, Y float64
	Time TimeMotion
}

func (p point) coord(axis Axis) Coord {
	switch axis {
	case AxisX:
		return xyCoord(p.X)
	case AxisY:
		return xyCoord(p.Y)
	default:
		return timeCoord(p.Time)
	}
}

// BoundingBox is a (x, y, time) volume: the kdv bounding-volume type for
// this instantiation.
type BoundingBox struct {
	Min, Max point
}

func (b BoundingBox) MinCoord(axis Axis) Coord { return b.Min.coord(axis) }
func (b BoundingBox) MaxCoord(axis Axis) Coord { return b.Max.coord(axis) }

// Limits set the leaf granularity of the tree: a cut producing a fragment
// narrower than the configured minimum along an axis is refused.
type Limits struct {
	XMinDiff, YMinDiff, TimeMinDiff float64
}

type routeStats struct {
	SpeedX, SpeedY float64
}

// Shape is one obstacle's (source rect, optional travel) swept volume.
type Shape struct {
	bbox    BoundingBox
	srcRect geom.Rect
	route   *routeStats
	limits  Limits
}

// New builds the motion shape for an obstacle currently at src, optionally
// travelling along route at the given speed. A nil route (or a
// zero-length one) produces a stationary shape: bounding box [src] in
// space and [Moment(0), Stop(0)] in time.
func New(src geom.Rect, route *geom.Segment, speed float64, limits Limits) Shape {
	if route != nil {
		dist := math.Sqrt(route.SqDist())
		if dist > 0 {
			dx, dy := route.ToVec()
			dstRect := src.Translate(dx, dy)
			travel := dist / speed
			speedX := dx / travel
			speedY := dy / travel
			min := point{X: math.Min(src.Left, dstRect.Left), Y: math.Min(src.Top, dstRect.Top), Time: Moment(0)}
			max := point{X: math.Max(src.Right, dstRect.Right), Y: math.Max(src.Bottom, dstRect.Bottom), Time: Stop(travel)}
			return Shape{
				bbox:    BoundingBox{Min: min, Max: max},
				srcRect: src,
				route:   &routeStats{SpeedX: speedX, SpeedY: speedY},
				limits:  limits,
			}
		}
	}
	min := point{X: src.Left, Y: src.Top, Time: Moment(0)}
	max := point{X: src.Right, Y: src.Bottom, Time: Stop(0)}
	return Shape{bbox: BoundingBox{Min: min, Max: max}, srcRect: src, limits: limits}
}

// BoundingBox implements kdv.Shape.
func (s Shape) BoundingBox() BoundingBox { return s.bbox }

// WithStartTime shifts both time bounds of the shape forward by start,
// preserving the Moment/Stop kind of each. It lets the router build a
// mover's motion shape anchored at the elapsed time of its current search
// state rather than always starting from tick zero.
func (s Shape) WithStartTime(start float64) Shape {
	shift := func(t TimeMotion) TimeMotion {
		if t.Kind == TimeMoment {
			return Moment(t.V + start)
		}
		return Stop(t.V + start)
	}
	s.bbox.Min.Time = shift(s.bbox.Min.Time)
	s.bbox.Max.Time = shift(s.bbox.Max.Time)
	return s
}

// Cut implements kdv.Shape. On the spatial axes (X, Y) the uncut axis's
// extent is carried unchanged onto both halves (a valid, if not maximally
// tight, containment-preserving bound); the Time axis is genuinely split at
// the motion's crossing instant. On the Time axis the spatial extent is
// likewise carried unchanged onto both halves, with the Stop boundary
// promoted forward via AdjustFuture where needed.
func (s Shape) Cut(fragment BoundingBox, axis Axis, coord Coord) (BoundingBox, BoundingBox, bool) {
	switch axis {
	case AxisX:
		if fragment.Max.X-fragment.Min.X < s.limits.XMinDiff {
			return BoundingBox{}, BoundingBox{}, false
		}
	case AxisY:
		if fragment.Max.Y-fragment.Min.Y < s.limits.YMinDiff {
			return BoundingBox{}, BoundingBox{}, false
		}
	case AxisTime:
		if fragment.Min.Time.Kind == TimeMoment && fragment.Max.Time.Kind == TimeMoment &&
			fragment.Max.Time.V-fragment.Min.Time.V < s.limits.TimeMinDiff {
			return BoundingBox{}, BoundingBox{}, false
		}
	}

	switch axis {
	case AxisX:
		if s.route == nil || s.route.SpeedX == 0 {
			cutX := coord.XY
			left := BoundingBox{Min: fragment.Min, Max: point{X: cutX, Y: fragment.Max.Y, Time: fragment.Max.Time}}
			right := BoundingBox{Min: point{X: cutX, Y: fragment.Min.Y, Time: fragment.Min.Time}, Max: fragment.Max}
			return left, right, true
		}
		cutX := coord.XY
		trailingX := s.srcRect.Left
		if s.route.SpeedX < 0 {
			trailingX = s.srcRect.Right
		}
		tc := Moment((cutX - trailingX) / s.route.SpeedX)
		left := BoundingBox{Min: fragment.Min, Max: point{X: cutX, Y: fragment.Max.Y, Time: tc}}
		right := BoundingBox{Min: point{X: cutX, Y: fragment.Min.Y, Time: tc}, Max: fragment.Max}
		return left, right, true

	case AxisY:
		if s.route == nil || s.route.SpeedY == 0 {
			cutY := coord.XY
			left := BoundingBox{Min: fragment.Min, Max: point{X: fragment.Max.X, Y: cutY, Time: fragment.Max.Time}}
			right := BoundingBox{Min: point{X: fragment.Min.X, Y: cutY, Time: fragment.Min.Time}, Max: fragment.Max}
			return left, right, true
		}
		cutY := coord.XY
		trailingY := s.srcRect.Top
		if s.route.SpeedY < 0 {
			trailingY = s.srcRect.Bottom
		}
		tc := Moment((cutY - trailingY) / s.route.SpeedY)
		left := BoundingBox{Min: fragment.Min, Max: point{X: fragment.Max.X, Y: cutY, Time: tc}}
		right := BoundingBox{Min: point{X: fragment.Min.X, Y: cutY, Time: tc}, Max: fragment.Max}
		return left, right, true

	default: // AxisTime
		cutT := coord.Time.V
		left := BoundingBox{
			Min: fragment.Min,
			Max: point{X: fragment.Max.X, Y: fragment.Max.Y, Time: Moment(cutT)},
		}
		right := BoundingBox{
			Min: point{X: fragment.Min.X, Y: fragment.Min.Y, Time: Moment(cutT)},
			Max: point{X: fragment.Max.X, Y: fragment.Max.Y, Time: fragment.Max.Time.AdjustFuture(cutT)},
		}
		return left, right, true
	}
}
