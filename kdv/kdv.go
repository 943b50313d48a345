// Package kdv implements a k-dimensional spatial index over bounding
// volumes whose shapes can cut themselves along an axis. Unlike a classic
// k-d tree of points, each node's resident shapes are fragments: a shape
// that straddles a node's cut line is asked to split itself in two, and
// each half is pushed down the corresponding child. Shapes that refuse to
// split (or are too small to split per their own limits) stay resident at
// the node that tried to cut them.
//
// The tree is generic over four type parameters, mirroring the historical
// split into Coord/Point/BoundingBox/Shape traits: A is the axis
// enumeration, C is the per-axis coordinate type, B is the bounding volume
// type, and S is the shape type stored in the tree. The only concrete
// instantiation in this module is the router's, over the motion package's
// Axis, Coord and BoundingBox types and a router-side wrapper around
// motion.Shape.
package kdv

// Ordered is the comparison surface a coordinate type must provide so the
// tree can classify shape fragments against a cut point.
type Ordered[C any] interface {
	Less(other C) bool
	LessEq(other C) bool
	Greater(other C) bool
	GreaterEq(other C) bool
}

// BoundingVolume exposes the two coordinates of a bounding volume along a
// given axis. It folds the historical Point/BoundingBox split into one
// interface since this module never needs a standalone Point value.
type BoundingVolume[A any, C any] interface {
	MinCoord(axis A) C
	MaxCoord(axis A) C
}

// Shape is a value indexable by the tree: it has a bounding volume, and it
// can attempt to cut a fragment of that volume along (axis, coord) into two
// sub-volumes. Cut returns ok=false when the cut is refused — the fragment
// is too small along that axis per the shape's own limits, or splitting it
// does not make sense for this shape.
type Shape[B any, A any, C any] interface {
	BoundingBox() B
	Cut(fragment B, axis A, coord C) (left, right B, ok bool)
}

type shapeFragment[B any] struct {
	bbox    B
	shapeID int
}

type ownerKind int

const (
	ownerMe ownerKind = iota
	ownerLeft
	ownerRight
	ownerBoth
)

type owner[B any] struct {
	kind        ownerKind
	bbox        B // valid for Me, Left, Right
	left, right B // valid for Both
}

func classify[A comparable, C Ordered[C], B BoundingVolume[A, C], S Shape[B, A, C]](shape S, fragment B, axis A, coord C) owner[B] {
	minC := fragment.MinCoord(axis)
	maxC := fragment.MaxCoord(axis)
	switch {
	case minC.Less(coord) && maxC.LessEq(coord):
		return owner[B]{kind: ownerLeft, bbox: fragment}
	case minC.GreaterEq(coord) && maxC.Greater(coord):
		return owner[B]{kind: ownerRight, bbox: fragment}
	}
	if left, right, ok := shape.Cut(fragment, axis, coord); ok {
		return owner[B]{kind: ownerBoth, left: left, right: right}
	}
	return owner[B]{kind: ownerMe, bbox: fragment}
}

type node[A comparable, C any, B any] struct {
	cutAxis     A
	cutCoord    C
	shapes      []shapeFragment[B]
	left, right *node[A, C, B]
}

func buildNode[A comparable, C Ordered[C], B BoundingVolume[A, C], S Shape[B, A, C]](
	depth int, axis []A, shapes []S, nodeShapes []shapeFragment[B], cutPoint func([]C) C,
) *node[A, C, B] {
	cutAxis := axis[depth%len(axis)]

	coords := make([]C, 0, len(nodeShapes)*2)
	for _, sf := range nodeShapes {
		coords = append(coords, sf.bbox.MinCoord(cutAxis), sf.bbox.MaxCoord(cutAxis))
	}
	cutCoord := cutPoint(coords)

	var here, leftShapes, rightShapes []shapeFragment[B]
	for _, sf := range nodeShapes {
		own := classify[A, C, B, S](shapes[sf.shapeID], sf.bbox, cutAxis, cutCoord)
		switch own.kind {
		case ownerMe:
			here = append(here, shapeFragment[B]{bbox: own.bbox, shapeID: sf.shapeID})
		case ownerLeft:
			leftShapes = append(leftShapes, shapeFragment[B]{bbox: own.bbox, shapeID: sf.shapeID})
		case ownerRight:
			rightShapes = append(rightShapes, shapeFragment[B]{bbox: own.bbox, shapeID: sf.shapeID})
		case ownerBoth:
			leftShapes = append(leftShapes, shapeFragment[B]{bbox: own.left, shapeID: sf.shapeID})
			rightShapes = append(rightShapes, shapeFragment[B]{bbox: own.right, shapeID: sf.shapeID})
		}
	}

	n := &node[A, C, B]{cutAxis: cutAxis, cutCoord: cutCoord, shapes: here}
	if len(leftShapes) > 0 {
		n.left = buildNode[A, C, B, S](depth+1, axis, shapes, leftShapes, cutPoint)
	}
	if len(rightShapes) > 0 {
		n.right = buildNode[A, C, B, S](depth+1, axis, shapes, rightShapes, cutPoint)
	}
	return n
}

// Tree is a built k-d tree of volumes. The zero value is not usable;
// construct with Build.
type Tree[A comparable, C Ordered[C], B BoundingVolume[A, C], S Shape[B, A, C]] struct {
	axis   []A
	shapes []S
	root   *node[A, C, B]
}

// Build indexes shapes over the given axis cycle. cutPoint computes the cut
// coordinate for a node from the min/max coordinates of its resident
// fragments along the node's axis (in the motion-shape instantiation, the
// arithmetic mean). Build returns nil if shapes is empty.
func Build[A comparable, C Ordered[C], B BoundingVolume[A, C], S Shape[B, A, C]](
	axis []A, shapes []S, cutPoint func([]C) C,
) *Tree[A, C, B, S] {
	if len(shapes) == 0 {
		return nil
	}
	root := make([]shapeFragment[B], len(shapes))
	for i, s := range shapes {
		root[i] = shapeFragment[B]{bbox: s.BoundingBox(), shapeID: i}
	}
	return &Tree[A, C, B, S]{
		axis:   append([]A(nil), axis...),
		shapes: append([]S(nil), shapes...),
		root:   buildNode[A, C, B, S](0, axis, shapes, root, cutPoint),
	}
}

// Hit is one intersecting resident shape together with the bounding-volume
// fragment of it that overlapped the query.
type Hit[B any, S any] struct {
	Shape     S
	Fragment  B
}

// Intersects returns every (shape, fragment) pair in the tree whose
// bounding volume overlaps needle's, classifying and cutting needle down
// the tree the same way shapes were distributed at build time.
func (t *Tree[A, C, B, S]) Intersects(needle S) []Hit[B, S] {
	if t == nil || t.root == nil {
		return nil
	}
	it := &intersectIter[A, C, B, S]{
		needle: needle,
		axis:   t.axis,
		shapes: t.shapes,
		queue:  []queueItem[A, C, B]{{node: t.root, fragment: needle.BoundingBox()}},
	}
	var hits []Hit[B, S]
	for {
		shape, fragment, ok := it.next()
		if !ok {
			break
		}
		hits = append(hits, Hit[B, S]{Shape: shape, Fragment: fragment})
	}
	return hits
}

type queueItem[A comparable, C any, B any] struct {
	node     *node[A, C, B]
	fragment B
}

type intersectState[A comparable, C any, B any] struct {
	owner       owner[B]
	left, right *node[A, C, B]
	shapes      []shapeFragment[B]
	idx         int
}

type intersectIter[A comparable, C Ordered[C], B BoundingVolume[A, C], S Shape[B, A, C]] struct {
	needle S
	axis   []A
	shapes []S
	queue  []queueItem[A, C, B]
	cur    *intersectState[A, C, B]
}

func fragmentOverlaps[A comparable, C Ordered[C], B BoundingVolume[A, C]](axis []A, own owner[B], shapeBBox B) bool {
	overlapsOne := func(frag B) bool {
		for _, ax := range axis {
			needleMin := frag.MinCoord(ax)
			needleMax := frag.MaxCoord(ax)
			shapeMin := shapeBBox.MinCoord(ax)
			shapeMax := shapeBBox.MaxCoord(ax)
			if needleMin.Greater(shapeMax) || needleMax.Less(shapeMin) {
				return false
			}
		}
		return true
	}
	if own.kind == ownerBoth {
		return overlapsOne(own.left) || overlapsOne(own.right)
	}
	return overlapsOne(own.bbox)
}

func (it *intersectIter[A, C, B, S]) next() (S, B, bool) {
	for {
		if it.cur != nil {
			for it.cur.idx < len(it.cur.shapes) {
				sf := it.cur.shapes[it.cur.idx]
				it.cur.idx++
				if !fragmentOverlaps[A, C, B](it.axis, it.cur.owner, sf.bbox) {
					continue
				}
				return it.shapes[sf.shapeID], sf.bbox, true
			}
			switch it.cur.owner.kind {
			case ownerMe:
				if it.cur.left != nil {
					it.queue = append(it.queue, queueItem[A, C, B]{it.cur.left, it.cur.owner.bbox})
				}
				if it.cur.right != nil {
					it.queue = append(it.queue, queueItem[A, C, B]{it.cur.right, it.cur.owner.bbox})
				}
			case ownerLeft:
				if it.cur.left != nil {
					it.queue = append(it.queue, queueItem[A, C, B]{it.cur.left, it.cur.owner.bbox})
				}
			case ownerRight:
				if it.cur.right != nil {
					it.queue = append(it.queue, queueItem[A, C, B]{it.cur.right, it.cur.owner.bbox})
				}
			case ownerBoth:
				if it.cur.left != nil {
					it.queue = append(it.queue, queueItem[A, C, B]{it.cur.left, it.cur.owner.left})
				}
				if it.cur.right != nil {
					it.queue = append(it.queue, queueItem[A, C, B]{it.cur.right, it.cur.owner.right})
				}
			}
			it.cur = nil
		}

		if len(it.queue) == 0 {
			var zeroS S
			var zeroB B
			return zeroS, zeroB, false
		}
		top := it.queue[len(it.queue)-1]
		it.queue = it.queue[:len(it.queue)-1]

		own := classify[A, C, B, S](it.needle, top.fragment, top.node.cutAxis, top.node.cutCoord)
		it.cur = &intersectState[A, C, B]{
			owner:  own,
			left:   top.node.left,
			right:  top.node.right,
			shapes: top.node.shapes,
		}
	}
}
