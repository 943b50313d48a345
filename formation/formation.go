// Package formation owns units and groups them into formations: cohesive
// per-kind clusters with cached aggregate geometry, health totals, and a
// route state machine. Units live as entities in an ark ECS world; the
// store keeps the side-indexed bookkeeping (formation aggregates, the
// unit→formation relation) on top of that entity storage.
package formation

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/strategybrain/geom"
)

// Side tags which player's store a formation belongs to.
type Side int

const (
	SideAlly Side = iota
	SideEnemy
)

// Kind is one of the five unit types.
type Kind int

const (
	KindArrv Kind = iota
	KindFighter
	KindHelicopter
	KindIfv
	KindTank
)

// ID is a formation identity, unique within one side's store.
type ID int32

// Derivatives is the per-tick delta sum used to detect "stopped" and
// "under attack" states.
type Derivatives struct {
	DX, DY     float64
	DDurability int
}

// RouteState is where a formation sits in the select/move state machine.
type RouteState int

const (
	RouteIdle RouteState = iota
	RouteReady
	RouteInProgress
)

// Route is a formation's current navigation state.
type Route struct {
	State      RouteState
	Hops       []geom.Point
	StartTick  int
	ResetAfter int
}

// position, attrs and member are the ark components backing a unit entity.
type position struct {
	X, Y float64
}

type attrs struct {
	UnitID         int64
	Kind           Kind
	Radius         float64
	Durability     int
	MaxDurability  int
	AttackCooldown int
	Selected       bool
}

type member struct {
	FormationID ID
}

// NewUnit describes a unit on its first appearance.
type NewUnit struct {
	ID             int64
	Kind           Kind
	X, Y           float64
	Radius         float64
	Durability     int
	AttackCooldown int
}

// Update describes a mutation to an already-known unit.
type Update struct {
	ID             int64
	X, Y           float64
	Durability     int
	AttackCooldown int
	Selected       bool
}

type formationData struct {
	kind        Kind
	unitIDs     []int64
	bboxDirty   bool
	bbox        geom.Boundary
	durMax      int
	durCur      int
	dvtSum      Derivatives
	dvtTick     int
	route       Route
	stuck       bool
}

// Store owns every formation and unit for one side.
type Store struct {
	side    Side
	counter ID
	world   *ecs.World
	mapper  *ecs.Map3[position, attrs, member]
	posMap  *ecs.Map1[position]
	attrMap *ecs.Map1[attrs]

	forms    map[ID]*formationData
	entities map[int64]ecs.Entity
}

// NewStore creates an empty formation store for one side, backed by its own
// ECS world.
func NewStore(side Side) *Store {
	world := ecs.NewWorld()
	return &Store{
		side:     side,
		world:    &world,
		mapper:   ecs.NewMap3[position, attrs, member](&world),
		posMap:   ecs.NewMap1[position](&world),
		attrMap:  ecs.NewMap1[attrs](&world),
		forms:    make(map[ID]*formationData),
		entities: make(map[int64]ecs.Entity),
	}
}

// Side reports which player this store belongs to.
func (s *Store) Side() Side { return s.side }

// Total returns the number of live formations.
func (s *Store) Total() int { return len(s.forms) }

// Builder accumulates new units of the same kind within one tick into
// type-homogeneous formations, materialized on Flush. This models the
// historical per-tick builder/drop boundary explicitly, since Go has no
// destructors to rely on.
type Builder struct {
	store      *Store
	tick       int
	inProgress map[Kind]ID
	pending    map[ID]*formationData
}

// NewBuilder starts a fresh ingest pass for the given tick.
func (s *Store) NewBuilder(tick int) *Builder {
	return &Builder{store: s, tick: tick, inProgress: make(map[Kind]ID), pending: make(map[ID]*formationData)}
}

// Add accumulates one new unit into its kind's pending formation.
func (b *Builder) Add(u NewUnit) {
	s := b.store
	id, ok := b.inProgress[u.Kind]
	if !ok {
		s.counter++
		id = s.counter
		b.pending[id] = &formationData{kind: u.Kind, dvtTick: b.tick}
		b.inProgress[u.Kind] = id
	}
	form := b.pending[id]
	form.unitIDs = append(form.unitIDs, u.ID)
	form.durMax += u.Durability
	form.durCur += u.Durability
	form.bboxDirty = true

	entity := s.mapper.NewEntity(
		&position{X: u.X, Y: u.Y},
		&attrs{UnitID: u.ID, Kind: u.Kind, Radius: u.Radius, Durability: u.Durability, MaxDurability: u.Durability, AttackCooldown: u.AttackCooldown},
		&member{FormationID: id},
	)
	s.entities[u.ID] = entity
}

// Flush inserts every formation accumulated since NewBuilder into the
// store. Until then the new formations are not visible through Total, Iter
// or GetByID, and updates for their units are ignored.
func (b *Builder) Flush() {
	for id, form := range b.pending {
		b.store.forms[id] = form
	}
	b.pending = make(map[ID]*formationData)
	b.inProgress = make(map[Kind]ID)
}

// Update applies a unit's new position and durability, accumulating
// derivatives into its formation. An update for an unknown unit id is
// ignored: the unit was already destroyed on this side.
func (s *Store) Update(u Update, tick int) {
	entity, ok := s.entities[u.ID]
	if !ok {
		return
	}
	a := s.attrMap.Get(entity)
	p := s.posMap.Get(entity)
	form := s.forms[s.formationIDOf(entity)]
	if form == nil {
		return
	}

	dx := u.X - p.X
	dy := u.Y - p.Y
	dDur := u.Durability - a.Durability

	form.durCur += dDur
	p.X, p.Y = u.X, u.Y
	a.Durability = u.Durability
	a.AttackCooldown = u.AttackCooldown
	a.Selected = u.Selected
	form.bboxDirty = true

	if form.dvtTick < tick {
		form.dvtSum = Derivatives{DX: dx, DY: dy, DDurability: dDur}
		form.dvtTick = tick
	} else {
		form.dvtSum.DX += dx
		form.dvtSum.DY += dy
		form.dvtSum.DDurability += dDur
	}

	if a.Durability > 0 {
		return
	}

	formID := s.formationIDOf(entity)
	s.removeUnit(formID, u.ID, entity)
}

func (s *Store) formationIDOf(entity ecs.Entity) ID {
	m := ecs.NewMap1[member](s.world)
	return m.Get(entity).FormationID
}

func (s *Store) removeUnit(formID ID, unitID int64, entity ecs.Entity) {
	form := s.forms[formID]
	for i, id := range form.unitIDs {
		if id == unitID {
			form.unitIDs = append(form.unitIDs[:i], form.unitIDs[i+1:]...)
			break
		}
	}
	form.durMax -= s.attrMap.Get(entity).MaxDurability
	delete(s.entities, unitID)
	s.mapper.Remove(entity)
	if len(form.unitIDs) == 0 {
		delete(s.forms, formID)
	} else {
		form.bboxDirty = true
	}
}

// Ref is a handle onto one formation permitting controlled mutation of its
// route and stuck flag, and lazy recomputation of its aggregate geometry.
type Ref struct {
	ID    ID
	store *Store
	data  *formationData
}

// GetByID returns a Ref to a formation, or ok=false if it doesn't exist.
func (s *Store) GetByID(id ID) (*Ref, bool) {
	form, ok := s.forms[id]
	if !ok {
		return nil, false
	}
	return &Ref{ID: id, store: s, data: form}, true
}

// Iter returns a Ref for every live formation. Order is unspecified.
func (s *Store) Iter() []*Ref {
	refs := make([]*Ref, 0, len(s.forms))
	for id, form := range s.forms {
		refs = append(refs, &Ref{ID: id, store: s, data: form})
	}
	return refs
}

// Size is the number of units in the formation.
func (r *Ref) Size() int { return len(r.data.unitIDs) }

// Kind returns the formation's unit kind.
func (r *Ref) Kind() Kind { return r.data.kind }

// UnitIDs returns the formation's member unit ids.
func (r *Ref) UnitIDs() []int64 { return r.data.unitIDs }

// Health returns (current, max) durability totals.
func (r *Ref) Health() (cur, max int) { return r.data.durCur, r.data.durMax }

// Stuck reports the formation's stuck flag.
func (r *Ref) Stuck() bool { return r.data.stuck }

// SetStuck updates the formation's stuck flag.
func (r *Ref) SetStuck(v bool) { r.data.stuck = v }

// Route returns a pointer to the formation's live route state, so planner
// and dispatcher can read and write it in place.
func (r *Ref) Route() *Route { return &r.data.route }

// DvtSums returns the per-tick delta sum and formation size. On first
// access in a new tick it resets the accumulator.
func (r *Ref) DvtSums(tick int) (Derivatives, int) {
	if r.data.dvtTick < tick {
		r.data.dvtSum = Derivatives{}
		r.data.dvtTick = tick
	}
	return r.data.dvtSum, len(r.data.unitIDs)
}

// BoundingBox rebuilds and returns the formation's cached aggregate
// geometry, only recomputing it if the cache was marked dirty by a prior
// mutation.
func (r *Ref) BoundingBox() geom.Boundary {
	if !r.data.bboxDirty && r.data.bbox != (geom.Boundary{}) {
		return r.data.bbox
	}
	discs := make([]geom.Disc, 0, len(r.data.unitIDs))
	for _, id := range r.data.unitIDs {
		entity, ok := r.store.entities[id]
		if !ok {
			continue
		}
		p := r.store.posMap.Get(entity)
		a := r.store.attrMap.Get(entity)
		discs = append(discs, geom.Disc{X: p.X, Y: p.Y, Radius: a.Radius})
	}
	r.data.bbox = geom.BoundaryFromDiscs(discs)
	r.data.bboxDirty = false
	return r.data.bbox
}

// RandomUnitID returns a uniformly random member unit id. Unused by the
// planner today — no Idea needs per-unit targeting — kept as a general
// accessor over the formation's membership.
func (r *Ref) RandomUnitID(rng *rand.Rand) int64 {
	return r.data.unitIDs[rng.Intn(len(r.data.unitIDs))]
}

// Split halves the formation along its longest bbox axis (width vs
// height); each unit is reassigned to the half containing its center, with
// ties going to the left/top half. It produces two fresh formation ids and
// retires the original. Splitting a formation with fewer than two units is
// a programmer error in the caller and is refused with ok=false.
func (s *Store) Split(id ID) (a, b ID, ok bool) {
	form, exists := s.forms[id]
	if !exists || len(form.unitIDs) < 2 {
		return 0, 0, false
	}

	ref := &Ref{ID: id, store: s, data: form}
	bbox := ref.BoundingBox().Rect
	width := bbox.Right - bbox.Left
	height := bbox.Bottom - bbox.Top

	var rectA, rectB geom.Rect
	if width >= height {
		mid := (bbox.Left + bbox.Right) / 2
		rectA = geom.Rect{Left: bbox.Left, Top: bbox.Top, Right: mid, Bottom: bbox.Bottom}
		rectB = geom.Rect{Left: mid, Top: bbox.Top, Right: bbox.Right, Bottom: bbox.Bottom}
	} else {
		mid := (bbox.Top + bbox.Bottom) / 2
		rectA = geom.Rect{Left: bbox.Left, Top: bbox.Top, Right: bbox.Right, Bottom: mid}
		rectB = geom.Rect{Left: bbox.Left, Top: mid, Right: bbox.Right, Bottom: bbox.Bottom}
	}

	s.counter++
	idA := s.counter
	s.counter++
	idB := s.counter
	formA := &formationData{kind: form.kind, dvtTick: form.dvtTick, bboxDirty: true}
	formB := &formationData{kind: form.kind, dvtTick: form.dvtTick, bboxDirty: true}

	for _, unitID := range form.unitIDs {
		entity := s.entities[unitID]
		p := s.posMap.Get(entity)
		at := s.attrMap.Get(entity)
		m := ecs.NewMap1[member](s.world)

		var dest *formationData
		var destID ID
		if rectA.Inside(p.X, p.Y) {
			dest, destID = formA, idA
		} else {
			dest, destID = formB, idB
		}
		dest.unitIDs = append(dest.unitIDs, unitID)
		dest.durMax += at.Durability
		dest.durCur += at.Durability
		m.Get(entity).FormationID = destID
	}

	delete(s.forms, id)
	s.forms[idA] = formA
	s.forms[idB] = formB
	return idA, idB, true
}
