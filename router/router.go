// Package router searches for a collision-free hop sequence between two
// points, treating every other formation as a moving obstacle in
// (x, y, time) space. It is A*-style: the priority queue orders states by
// accumulated-cost-plus-heuristic, and obstacle hits are resolved by
// detouring around the corners of the hit obstacle's projected rectangle
// at the time of collision.
package router

import (
	"container/heap"
	"math"

	"github.com/pthm-cable/strategybrain/geom"
	"github.com/pthm-cable/strategybrain/kdv"
	"github.com/pthm-cable/strategybrain/motion"
)

const epsilon = 1e-9

// Obstacle is one moving obstacle the router must avoid: a rectangle,
// optionally travelling along a segment at a speed.
type Obstacle struct {
	Rect  geom.Rect
	Route *geom.Segment
	Speed float64
}

// Limits sets the k-d tree's cut granularity; it is the same type the
// motion package uses to decide when a cut is too fine to bother with.
type Limits = motion.Limits

// indexedShape tags a motion shape with the obstacle index it came from, so
// a corner-bypass event can be identified by which obstacle produced it.
// BoundingBox and Cut are promoted from the embedded motion.Shape.
type indexedShape struct {
	motion.Shape
	id int
}

type bypassKey struct {
	nomadID     int
	nomadCorner int
}

type visitState struct {
	visited  bool
	bestCost float64
}

type pathEntry struct {
	pos    geom.Point
	parent int // 0 = root, else a 1-based index into Cache.pathBuf
}

type step struct {
	g, cost float64
	pos     geom.Point
	elapsed float64
	bypass  *bypassKey
	phead   int
	index   int
}

type stepHeap []*step

func (h stepHeap) Len() int { return len(h) }
func (h stepHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if math.Abs(a.cost-b.cost) < epsilon {
		return false
	}
	return a.cost < b.cost
}
func (h stepHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *stepHeap) Push(x any) {
	s := x.(*step)
	s.index = len(*h)
	*h = append(*h, s)
}
func (h *stepHeap) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	s.index = -1
	*h = old[:n-1]
	return s
}

// Cache holds the router's reusable scratch state — priority queue, visited
// table, and path buffer — so that their backing storage is reused across
// the candidate ideas of one planner invocation. The obstacle shapes, the
// k-d tree and every queued search step are still allocated per call.
type Cache struct {
	queue   stepHeap
	visited map[bypassKey]visitState
	pathBuf []pathEntry
	path    []geom.Point
}

// NewCache allocates an empty router cache.
func NewCache() *Cache {
	return &Cache{visited: make(map[bypassKey]visitState)}
}

func (c *Cache) reset() {
	c.queue = c.queue[:0]
	for k := range c.visited {
		delete(c.visited, k)
	}
	c.pathBuf = c.pathBuf[:0]
	c.path = c.path[:0]
}

// Route searches for a hop sequence from src to dst that avoids every
// obstacle's motion shape, given the mover's own rectangle (at src) and
// speed. It returns the hops (src excluded, dst included) and true on
// success, or nil and false if the search exhausts popsLimit pops without
// reaching the destination.
func Route(obstacles []Obstacle, moverRect geom.Rect, moverSpeed float64, src, dst geom.Point, limits Limits, bypassPad float64, popsLimit int, cache *Cache) ([]geom.Point, bool) {
	cache.reset()

	shapes := make([]indexedShape, len(obstacles))
	for i, o := range obstacles {
		shapes[i] = indexedShape{Shape: motion.New(o.Rect, o.Route, o.Speed, limits), id: i}
	}
	tree := kdv.Build[motion.Axis, motion.Coord, motion.BoundingBox, indexedShape](motion.Axes, shapes, motion.CutPoint)

	cache.pathBuf = append(cache.pathBuf, pathEntry{pos: src, parent: 0})
	h0 := geom.SqDist(src.X, src.Y, dst.X, dst.Y)
	heap.Push(&cache.queue, &step{g: 0, cost: h0, pos: src, elapsed: 0, phead: 1})

	pops := 0
	for cache.queue.Len() > 0 {
		if pops >= popsLimit {
			return nil, false
		}
		pops++
		s := heap.Pop(&cache.queue).(*step)

		if s.bypass != nil {
			if v, ok := cache.visited[*s.bypass]; ok {
				if v.visited || s.cost > v.bestCost+epsilon {
					continue
				}
			}
			cache.visited[*s.bypass] = visitState{visited: true}
		}

		if s.cost < epsilon {
			return reconstruct(cache, s.phead), true
		}

		moverAtPos := moverRect.Translate(s.pos.X-src.X, s.pos.Y-src.Y)
		moverSeg := geom.Segment{Src: s.pos, Dst: dst}
		moverShape := indexedShape{Shape: motion.New(moverAtPos, &moverSeg, moverSpeed, limits).WithStartTime(s.elapsed), id: -1}

		hits := tree.Intersects(moverShape)
		if len(hits) == 0 {
			dist := math.Sqrt(geom.SqDist(s.pos.X, s.pos.Y, dst.X, dst.Y))
			elapsed := s.elapsed + travelTime(dist, moverSpeed)
			cache.pathBuf = append(cache.pathBuf, pathEntry{pos: dst, parent: s.phead})
			heap.Push(&cache.queue, &step{g: s.g + dist*dist, cost: 0, pos: dst, elapsed: elapsed, phead: len(cache.pathBuf)})
			continue
		}

		for _, hit := range hits {
			frag := geom.Rect{Left: hit.Fragment.Min.X, Top: hit.Fragment.Min.Y, Right: hit.Fragment.Max.X, Bottom: hit.Fragment.Max.Y}
			hitElapsed := s.elapsed + travelTime(math.Sqrt(geom.SqDist(s.pos.X, s.pos.Y, frag.Left, frag.Top)), moverSpeed)
			for ci, corner := range rectCorners(frag) {
				bypass := offsetOutward(corner, frag, bypassPad)
				key := bypassKey{nomadID: hit.Shape.id, nomadCorner: ci}
				if v, ok := cache.visited[key]; ok && v.visited {
					continue
				}

				distToBypass := math.Sqrt(geom.SqDist(s.pos.X, s.pos.Y, bypass.X, bypass.Y))
				g := s.g + distToBypass*distToBypass
				h := geom.SqDist(bypass.X, bypass.Y, dst.X, dst.Y)

				cache.pathBuf = append(cache.pathBuf, pathEntry{pos: bypass, parent: s.phead})
				heap.Push(&cache.queue, &step{
					g: g, cost: g + h, pos: bypass, elapsed: hitElapsed,
					bypass: &key, phead: len(cache.pathBuf),
				})
			}
		}
	}
	return nil, false
}

func travelTime(dist, speed float64) float64 {
	if speed <= 0 {
		return 0
	}
	return dist / speed
}

func rectCorners(r geom.Rect) [4]geom.Point {
	return [4]geom.Point{
		{X: r.Left, Y: r.Top},
		{X: r.Right, Y: r.Top},
		{X: r.Right, Y: r.Bottom},
		{X: r.Left, Y: r.Bottom},
	}
}

// offsetOutward pushes corner away from rect's center by pad, along the
// ray from the center through the corner.
func offsetOutward(corner geom.Point, rect geom.Rect, pad float64) geom.Point {
	cx := (rect.Left + rect.Right) / 2
	cy := (rect.Top + rect.Bottom) / 2
	dx := corner.X - cx
	dy := corner.Y - cy
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		return corner
	}
	return geom.Point{X: corner.X + dx/norm*pad, Y: corner.Y + dy/norm*pad}
}

func reconstruct(cache *Cache, phead int) []geom.Point {
	cache.path = cache.path[:0]
	ph := phead
	for ph != 0 {
		entry := cache.pathBuf[ph-1]
		cache.path = append(cache.path, entry.pos)
		ph = entry.parent
	}
	for i, j := 0, len(cache.path)-1; i < j; i, j = i+1, j-1 {
		cache.path[i], cache.path[j] = cache.path[j], cache.path[i]
	}
	// drop the source point: callers want hops after src, ending at dst.
	if len(cache.path) > 0 {
		cache.path = cache.path[1:]
	}
	return cache.path
}
