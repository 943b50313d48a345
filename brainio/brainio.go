// Package brainio defines the protocol-agnostic per-tick input/output
// contract and the Strategy seam a wire-codec layer drives. Nothing in
// this package knows about sockets, JSON, or any particular game runtime;
// it only knows the shapes the brain consumes and produces.
package brainio

import (
	"math/rand"

	"github.com/pthm-cable/strategybrain/config"
	"github.com/pthm-cable/strategybrain/dispatch"
	"github.com/pthm-cable/strategybrain/formation"
	"github.com/pthm-cable/strategybrain/overmind"
)

// UnitUpdate carries either a brand-new unit's full state or a mutation to
// an already-known one, tagged by which side it belongs to.
type UnitUpdate struct {
	ID             int64
	Mine           bool
	Kind           formation.Kind
	X, Y           float64
	Radius         float64
	Durability     int
	AttackCooldown int
	Selected       bool
	IsNew          bool
}

// Input is everything the brain needs to decide on one tick.
type Input struct {
	Tick                   int
	CooldownTicksRemaining int
	Units                  []UnitUpdate
}

// ActionKind mirrors dispatch.ActionKind in the protocol-agnostic
// vocabulary the codec layer expects.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionClearAndSelect
	ActionMove
)

// Output is the brain's decision for one tick: at most one action.
type Output struct {
	Kind           ActionKind
	Left, Top      float64
	Right, Bottom  float64
	VehicleKind    formation.Kind
	HasVehicleKind bool
	DX, DY         float64
}

// Strategy is the seam an out-of-scope wire-codec layer drives: decode the
// game's per-tick message into an Input, call Act, encode the Output back
// onto the wire.
type Strategy interface {
	Act(tick Input) Output
}

// Brain is the reference Strategy implementation: it owns the formation
// stores, the planner, the dispatcher and the config-seeded random stream,
// and nothing else survives between ticks.
type Brain struct {
	cfg      *config.Config
	allies   *formation.Store
	enemies  *formation.Store
	decree   *overmind.Decree
	dispatcher *dispatch.Dispatcher
	rng      *rand.Rand
	seeded   bool
}

// New creates a Brain against the given configuration. The random stream
// is seeded lazily from the configuration's recorded seed halves on the
// first call to Act, mirroring the original "seed once, on first use"
// behavior rather than forcing every caller to thread a seed through New.
func New(cfg *config.Config) *Brain {
	return &Brain{
		cfg:        cfg,
		allies:     formation.NewStore(formation.SideAlly),
		enemies:    formation.NewStore(formation.SideEnemy),
		decree:     overmind.New(),
		dispatcher: dispatch.New(),
	}
}

// Act ingests this tick's units, advances the planner and dispatcher, and
// returns the single resulting action. Formations built from this tick's
// new units join the stores after the planner and dispatcher have run, so
// they are first planned on the next tick.
func (b *Brain) Act(in Input) Output {
	if !b.seeded {
		b.rng = newXorShiftRand(b.cfg.World.RandomSeedHi, b.cfg.World.RandomSeedLo)
		b.seeded = true
	}

	allyBuilder := b.allies.NewBuilder(in.Tick)
	enemyBuilder := b.enemies.NewBuilder(in.Tick)
	for _, u := range in.Units {
		if u.IsNew {
			nu := formation.NewUnit{
				ID: u.ID, Kind: u.Kind, X: u.X, Y: u.Y,
				Radius: u.Radius, Durability: u.Durability, AttackCooldown: u.AttackCooldown,
			}
			if u.Mine {
				allyBuilder.Add(nu)
			} else {
				enemyBuilder.Add(nu)
			}
			continue
		}
		upd := formation.Update{
			ID: u.ID, X: u.X, Y: u.Y,
			Durability: u.Durability, AttackCooldown: u.AttackCooldown, Selected: u.Selected,
		}
		b.allies.Update(upd, in.Tick)
		b.enemies.Update(upd, in.Tick)
	}

	plan, havePlan := b.decree.Tick(in.Tick, b.allies, b.enemies, b.cfg, b.rng)

	var plannedID formation.ID
	if havePlan {
		plannedID = plan.FormID
	}
	action := b.dispatcher.Tick(in.Tick, in.CooldownTicksRemaining, plannedID, havePlan, b.allies)
	allyBuilder.Flush()
	enemyBuilder.Flush()

	out := Output{DX: action.DX, DY: action.DY}
	switch action.Kind {
	case dispatch.ActionClearAndSelect:
		out.Kind = ActionClearAndSelect
		out.Left, out.Top, out.Right, out.Bottom = action.Rect.Left, action.Rect.Top, action.Rect.Right, action.Rect.Bottom
		out.VehicleKind = action.VehicleKind
		out.HasVehicleKind = action.HasVehicleKind
	case dispatch.ActionMove:
		out.Kind = ActionMove
	default:
		out.Kind = ActionNone
	}
	return out
}
