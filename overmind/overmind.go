// Package overmind enumerates tactical ideas for idle ally formations,
// orders them with a priority queue, and hands the first one whose route
// succeeds to the command dispatcher as the chosen plan for the tick.
package overmind

import (
	"container/heap"
	"math/rand"

	"github.com/pthm-cable/strategybrain/config"
	"github.com/pthm-cable/strategybrain/formation"
	"github.com/pthm-cable/strategybrain/geom"
	"github.com/pthm-cable/strategybrain/router"
)

// Kind distinguishes the two idea shapes an ally formation can consider.
type Kind int

const (
	KindAttack Kind = iota
	KindScout
)

// Idea is a scored candidate plan for one ally formation, carrying enough
// data to rank itself without further lookups.
type Idea struct {
	Kind         Kind
	EnemyFormID  formation.ID // valid when Kind == KindAttack
	DamageDiff   float64      // valid when Kind == KindAttack
	Target       geom.Point   // valid when Kind == KindScout
	Speed        float64      // valid when Kind == KindScout
	SqDist       float64
}

// less reports whether a outranks b: attacks outrank scouts; among attacks,
// larger DamageDiff wins then smaller SqDist; among scouts, larger Speed
// wins then smaller SqDist.
func less(a, b Idea) bool {
	if a.Kind != b.Kind {
		return a.Kind == KindAttack
	}
	if a.Kind == KindAttack {
		if a.DamageDiff != b.DamageDiff {
			return a.DamageDiff > b.DamageDiff
		}
		return a.SqDist < b.SqDist
	}
	if a.Speed != b.Speed {
		return a.Speed > b.Speed
	}
	return a.SqDist < b.SqDist
}

type queueEntry struct {
	allyFormID formation.ID
	idea       Idea
}

type ideaHeap []queueEntry

func (h ideaHeap) Len() int            { return len(h) }
func (h ideaHeap) Less(i, j int) bool  { return less(h[i].idea, h[j].idea) }
func (h ideaHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *ideaHeap) Push(x any)         { *h = append(*h, x.(queueEntry)) }
func (h *ideaHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Decree is the reusable per-tick planner. It owns no cross-tick state
// beyond its scratch queue and router cache, matching spec's "no shared
// mutable state between ticks" requirement.
type Decree struct {
	queue       ideaHeap
	routerCache *router.Cache
	obstacles   []router.Obstacle
}

// New creates an Overmind planner with its own reusable scratch buffers.
func New() *Decree {
	return &Decree{routerCache: router.NewCache()}
}

// Plan is the chosen (formation, route) for this tick, or ok=false if no
// candidate yielded a route.
type Plan struct {
	FormID formation.ID
	Hops   []geom.Point
}

// Tick scans allies for arrival and drains the idea queue in priority
// order, returning the first successful plan.
func (d *Decree) Tick(tick int, allies, enemies *formation.Store, cfg *config.Config, rng *rand.Rand) (Plan, bool) {
	d.queue = d.queue[:0]

	checkArrivals(tick, allies)

	for _, ally := range allies.Iter() {
		if ally.Route().State != formation.RouteIdle {
			continue
		}
		thinkAboutAttack(&d.queue, ally, enemies, cfg)
		thinkAboutScout(&d.queue, ally, cfg, rng)
	}
	heap.Init(&d.queue)

	for d.queue.Len() > 0 {
		entry := heap.Pop(&d.queue).(queueEntry)
		ally, ok := allies.GetByID(entry.allyFormID)
		if !ok {
			continue
		}

		var dst geom.Point
		var ignoreEnemy formation.ID
		haveIgnore := false
		switch entry.idea.Kind {
		case KindAttack:
			enemy, ok := enemies.GetByID(entry.idea.EnemyFormID)
			if !ok {
				continue
			}
			b := enemy.BoundingBox()
			dst = geom.Point{X: b.CX, Y: b.CY}
			ignoreEnemy = entry.idea.EnemyFormID
			haveIgnore = true
		case KindScout:
			dst = entry.idea.Target
		}

		rect := ally.BoundingBox().Rect
		src := geom.Point{X: ally.BoundingBox().CX, Y: ally.BoundingBox().CY}
		speed := cfg.Combat.MaxSpeedOf(ally.Kind())

		d.obstacles = buildObstacles(d.obstacles[:0], entry.allyFormID, ally.Kind(), ignoreEnemy, haveIgnore, allies, enemies, cfg)

		limits := router.Limits{XMinDiff: cfg.Router.XMinDiff, YMinDiff: cfg.Router.YMinDiff, TimeMinDiff: cfg.Router.TimeMinDiff}
		hops, ok := router.Route(d.obstacles, rect, speed, src, dst, limits, cfg.Router.BypassPad, cfg.Router.PopsLimit, d.routerCache)
		if !ok {
			continue
		}

		route := ally.Route()
		route.State = formation.RouteReady
		route.Hops = append([]geom.Point(nil), hops...)
		route.ResetAfter = cfg.Dispatch.RouteResetTicks
		return Plan{FormID: entry.allyFormID, Hops: route.Hops}, true
	}
	return Plan{}, false
}

// checkArrivals advances or retires every ally formation's in-progress
// route. A route whose reset budget has elapsed is abandoned outright. A
// route whose last-tick (Δx, Δy) sum is zero has reached its current hop:
// if more hops remain, the consumed one is dropped and the formation stays
// InProgress; once the last hop is reached (or none remain), the formation
// goes Idle and becomes a candidate again. No move toward a remaining hop
// is issued: the dispatcher only moves Ready routes, so a formation that
// stays still drops one hop per tick until it goes Idle and is replanned.
func checkArrivals(tick int, allies *formation.Store) {
	for _, ally := range allies.Iter() {
		route := ally.Route()
		if route.State != formation.RouteInProgress {
			continue
		}
		if tick-route.StartTick >= route.ResetAfter {
			*route = formation.Route{State: formation.RouteIdle}
			continue
		}
		dvt, _ := ally.DvtSums(tick)
		if dvt.DX != 0 || dvt.DY != 0 {
			continue
		}
		if len(route.Hops) > 1 {
			route.Hops = route.Hops[1:]
		} else {
			*route = formation.Route{State: formation.RouteIdle}
		}
	}
}

func thinkAboutAttack(queue *ideaHeap, ally *formation.Ref, enemies *formation.Store, cfg *config.Config) {
	allyBox := ally.BoundingBox()
	for _, enemy := range enemies.Iter() {
		combatMine := cfg.Combat.Info(ally.Kind(), enemy.Kind())
		combatHis := cfg.Combat.Info(enemy.Kind(), ally.Kind())
		damageMine := combatMine.Damage - combatHis.Defence
		if damageMine <= 0 {
			continue
		}
		enemyBox := enemy.BoundingBox()
		sqDist := geom.SqDist(allyBox.CX, allyBox.CY, enemyBox.CX, enemyBox.CY)
		damageHis := combatHis.Damage - combatMine.Defence
		heap.Push(queue, queueEntry{
			allyFormID: ally.ID,
			idea: Idea{
				Kind:        KindAttack,
				EnemyFormID: enemy.ID,
				DamageDiff:  damageMine - damageHis,
				SqDist:      sqDist,
			},
		})
	}
}

func thinkAboutScout(queue *ideaHeap, ally *formation.Ref, cfg *config.Config, rng *rand.Rand) {
	box := ally.BoundingBox()
	pad := box.Rect.MaxSide()
	lo := pad
	hiX := cfg.World.Width - pad
	hiY := cfg.World.Height - pad
	if hiX < lo {
		hiX = lo
	}
	if hiY < lo {
		hiY = lo
	}
	target := geom.Point{
		X: lo + rng.Float64()*(hiX-lo),
		Y: lo + rng.Float64()*(hiY-lo),
	}
	sqDist := geom.SqDist(box.CX, box.CY, target.X, target.Y)
	speed := cfg.Combat.MaxSpeedOf(ally.Kind())
	heap.Push(queue, queueEntry{
		allyFormID: ally.ID,
		idea:       Idea{Kind: KindScout, Target: target, Speed: speed, SqDist: sqDist},
	})
}

// buildObstacles fills dst with every formation that should block the
// given ally's route: other ally formations of a colliding kind, plus
// enemy formations not being targeted, fear-zone-inflated when they deal
// nonzero damage to this kind.
func buildObstacles(dst []router.Obstacle, allyFormID formation.ID, allyKind formation.Kind, ignoreEnemy formation.ID, haveIgnore bool, allies, enemies *formation.Store, cfg *config.Config) []router.Obstacle {
	for _, other := range allies.Iter() {
		if other.ID == allyFormID {
			continue
		}
		if !cfg.Combat.Collides(allyKind, other.Kind()) {
			continue
		}
		dst = append(dst, obstacleFor(other, cfg, 0))
	}
	for _, enemy := range enemies.Iter() {
		if haveIgnore && enemy.ID == ignoreEnemy {
			continue
		}
		combatHis := cfg.Combat.Info(enemy.Kind(), allyKind)
		if combatHis.Damage == 0 {
			if !cfg.Combat.Collides(allyKind, enemy.Kind()) {
				continue
			}
			dst = append(dst, obstacleFor(enemy, cfg, 0))
			continue
		}
		dst = append(dst, obstacleFor(enemy, cfg, combatHis.AttackRange))
	}
	return dst
}

func obstacleFor(form *formation.Ref, cfg *config.Config, fearPad float64) router.Obstacle {
	rect := form.BoundingBox().Rect.Inflate(fearPad)
	route := form.Route()
	if len(route.Hops) == 0 {
		return router.Obstacle{Rect: rect}
	}
	box := form.BoundingBox()
	seg := geom.Segment{Src: geom.Point{X: box.CX, Y: box.CY}, Dst: route.Hops[0]}
	return router.Obstacle{Rect: rect, Route: &seg, Speed: cfg.Combat.MaxSpeedOf(form.Kind())}
}
