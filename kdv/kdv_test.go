package kdv

import "testing"

// The fixtures below instantiate the generic tree over plain integer
// segments in the XY plane, the simplest possible Shape/BoundingVolume pair
// — the motion-shape package provides the real (x, y, time) instantiation.

type testCoord int

func (c testCoord) Less(o testCoord) bool      { return c < o }
func (c testCoord) LessEq(o testCoord) bool    { return c <= o }
func (c testCoord) Greater(o testCoord) bool   { return c > o }
func (c testCoord) GreaterEq(o testCoord) bool { return c >= o }

func cutPointMean(coords []testCoord) testCoord {
	var sum int
	for _, c := range coords {
		sum += int(c)
	}
	return testCoord(sum / len(coords))
}

type testAxis int

const (
	axisX testAxis = iota
	axisY
)

type testPoint struct{ x, y int }

type testRect struct{ lt, rb testPoint }

func (r testRect) MinCoord(axis testAxis) testCoord {
	if axis == axisX {
		return testCoord(r.lt.x)
	}
	return testCoord(r.lt.y)
}

func (r testRect) MaxCoord(axis testAxis) testCoord {
	if axis == axisX {
		return testCoord(r.rb.x)
	}
	return testCoord(r.rb.y)
}

type testLine struct{ src, dst testPoint }

func (l testLine) BoundingBox() testRect {
	minI := func(a, b int) int {
		if a < b {
			return a
		}
		return b
	}
	maxI := func(a, b int) int {
		if a > b {
			return a
		}
		return b
	}
	return testRect{
		lt: testPoint{x: minI(l.src.x, l.dst.x), y: minI(l.src.y, l.dst.y)},
		rb: testPoint{x: maxI(l.src.x, l.dst.x), y: maxI(l.src.y, l.dst.y)},
	}
}

func (l testLine) Cut(fragment testRect, axis testAxis, coord testCoord) (testRect, testRect, bool) {
	bbox := l.BoundingBox()
	cutCoord := int(coord)
	var side, x, y int
	switch axis {
	case axisX:
		if cutCoord < fragment.lt.x || cutCoord > fragment.rb.x {
			return testRect{}, testRect{}, false
		}
		factor := float64(cutCoord-bbox.lt.x) / float64(bbox.rb.x-bbox.lt.x)
		side = fragment.rb.x - fragment.lt.x
		x = cutCoord
		y = bbox.lt.y + int(factor*float64(bbox.rb.y-bbox.lt.y))
	case axisY:
		if cutCoord < fragment.lt.y || cutCoord > fragment.rb.y {
			return testRect{}, testRect{}, false
		}
		factor := float64(cutCoord-bbox.lt.y) / float64(bbox.rb.y-bbox.lt.y)
		side = fragment.rb.y - fragment.lt.y
		x = bbox.lt.x + int(factor*float64(bbox.rb.x-bbox.lt.x))
		y = cutCoord
	}
	if side < 10 {
		return testRect{}, testRect{}, false
	}
	cutPt := testPoint{x: x, y: y}
	return testRect{lt: fragment.lt, rb: cutPt}, testRect{lt: cutPt, rb: fragment.rb}, true
}

func TestTreeBasicLine(t *testing.T) {
	shapes := []testLine{{src: testPoint{16, 16}, dst: testPoint{80, 80}}}
	tree := Build[testAxis, testCoord, testRect, testLine]([]testAxis{axisX, axisY}, shapes, cutPointMean)

	noHit := []testLine{
		{src: testPoint{116, 116}, dst: testPoint{180, 180}},
		{src: testPoint{32, 48}, dst: testPoint{48, 64}},
		{src: testPoint{48, 32}, dst: testPoint{64, 48}},
	}
	for _, needle := range noHit {
		if hits := tree.Intersects(needle); len(hits) != 0 {
			t.Errorf("Intersects(%+v) = %+v, want none", needle, hits)
		}
	}

	hits := tree.Intersects(testLine{src: testPoint{16, 64}, dst: testPoint{80, 64}})
	want := []testRect{
		{lt: testPoint{64, 64}, rb: testPoint{72, 72}},
		{lt: testPoint{56, 56}, rb: testPoint{64, 64}},
	}
	if len(hits) != len(want) {
		t.Fatalf("got %d hits, want %d: %+v", len(hits), len(want), hits)
	}
	for i, h := range hits {
		if h.Fragment != want[i] {
			t.Errorf("hit %d fragment = %+v, want %+v", i, h.Fragment, want[i])
		}
		if h.Shape != shapes[0] {
			t.Errorf("hit %d shape = %+v, want %+v", i, h.Shape, shapes[0])
		}
	}
}

func TestTreeTriangle(t *testing.T) {
	shapes := []testLine{
		{src: testPoint{16, 16}, dst: testPoint{80, 16}},
		{src: testPoint{16, 16}, dst: testPoint{80, 80}},
		{src: testPoint{80, 16}, dst: testPoint{80, 80}},
	}
	tree := Build[testAxis, testCoord, testRect, testLine]([]testAxis{axisX, axisY}, shapes, cutPointMean)

	if hits := tree.Intersects(testLine{src: testPoint{70, 45}, dst: testPoint{75, 50}}); len(hits) != 0 {
		t.Errorf("expected no hits, got %+v", hits)
	}

	hits := tree.Intersects(testLine{src: testPoint{8, 48}, dst: testPoint{88, 48}})
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2: %+v", len(hits), hits)
	}
	if hits[0].Shape != shapes[2] || hits[0].Fragment != (testRect{lt: testPoint{80, 44}, rb: testPoint{80, 69}}) {
		t.Errorf("hit 0 = %+v", hits[0])
	}
	if hits[1].Shape != shapes[1] || hits[1].Fragment != (testRect{lt: testPoint{42, 42}, rb: testPoint{50, 50}}) {
		t.Errorf("hit 1 = %+v", hits[1])
	}
}
