// Package dispatch turns the overmind's chosen plan into the single
// outgoing action the brain may emit this tick, honoring the action
// cooldown and performing the two-step "select, then move" protocol.
package dispatch

import (
	"github.com/pthm-cable/strategybrain/formation"
	"github.com/pthm-cable/strategybrain/geom"
)

// ActionKind is the tag of the one action the dispatcher may emit.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionClearAndSelect
	ActionMove
)

// Action is the dispatcher's per-tick output. Only the fields relevant to
// Kind are meaningful.
type Action struct {
	Kind           ActionKind
	Rect           geom.Rect       // ActionClearAndSelect
	VehicleKind    formation.Kind  // ActionClearAndSelect
	HasVehicleKind bool            // ActionClearAndSelect: false selects every kind
	DX, DY         float64         // ActionMove
}

// Dispatcher is the per-match state machine: which formation is currently
// selected, and which formation has a select pending resolution next tick.
type Dispatcher struct {
	selection    formation.ID
	hasSelection bool
	pending      formation.ID
	hasPending   bool
}

// New creates a dispatcher with no selection.
func New() *Dispatcher {
	return &Dispatcher{}
}

// Tick resolves this tick's action. plannedFormID/havePlan carry the
// overmind's freshly chosen (formation, route) for this tick, if any.
func (d *Dispatcher) Tick(tick, cooldownTicks int, plannedFormID formation.ID, havePlan bool, allies *formation.Store) Action {
	if cooldownTicks > 0 {
		return Action{Kind: ActionNone}
	}

	formID := plannedFormID
	usePlan := havePlan
	if d.hasPending {
		formID = d.pending
		d.hasPending = false
		usePlan = true
	}
	if !usePlan {
		return Action{Kind: ActionNone}
	}

	ally, ok := allies.GetByID(formID)
	if !ok {
		return Action{Kind: ActionNone}
	}

	if d.hasSelection && d.selection == formID {
		route := ally.Route()
		if route.State != formation.RouteReady || len(route.Hops) == 0 {
			return Action{Kind: ActionNone}
		}
		goal := route.Hops[0]
		box := ally.BoundingBox()
		action := Action{Kind: ActionMove, DX: goal.X - box.CX, DY: goal.Y - box.CY}

		route.State = formation.RouteInProgress
		route.StartTick = tick
		return action
	}

	box := ally.BoundingBox()
	d.selection = formID
	d.hasSelection = true
	d.pending = formID
	d.hasPending = true
	return Action{
		Kind:           ActionClearAndSelect,
		Rect:           box.Rect,
		VehicleKind:    ally.Kind(),
		HasVehicleKind: true,
	}
}
