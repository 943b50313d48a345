package dispatch

import (
	"testing"

	"github.com/pthm-cable/strategybrain/formation"
	"github.com/pthm-cable/strategybrain/geom"
)

func readyFormation(t *testing.T, s *formation.Store) *formation.Ref {
	t.Helper()
	b := s.NewBuilder(0)
	b.Add(formation.NewUnit{ID: 1, Kind: formation.KindTank, X: 0, Y: 0, Radius: 2, Durability: 100})
	b.Flush()
	f := s.Iter()[0]
	route := f.Route()
	route.State = formation.RouteReady
	route.Hops = []geom.Point{{X: 50, Y: 0}, {X: 100, Y: 0}}
	route.ResetAfter = 128
	return f
}

func TestCooldownSuppressesAction(t *testing.T) {
	s := formation.NewStore(formation.SideAlly)
	f := readyFormation(t, s)
	d := New()
	action := d.Tick(0, 5, f.ID, true, s)
	if action.Kind != ActionNone {
		t.Errorf("action = %+v, want ActionNone while cooldown is active", action)
	}
}

func TestFirstTickSelectsThenSecondTickMoves(t *testing.T) {
	s := formation.NewStore(formation.SideAlly)
	f := readyFormation(t, s)
	d := New()

	selectAction := d.Tick(0, 0, f.ID, true, s)
	if selectAction.Kind != ActionClearAndSelect {
		t.Fatalf("first action = %+v, want ActionClearAndSelect", selectAction)
	}
	if !selectAction.HasVehicleKind || selectAction.VehicleKind != formation.KindTank {
		t.Errorf("select action kind filter = %+v, want Tank", selectAction)
	}

	moveAction := d.Tick(1, 0, f.ID, false, s)
	if moveAction.Kind != ActionMove {
		t.Fatalf("second action = %+v, want ActionMove", moveAction)
	}
	if moveAction.DX != 50 || moveAction.DY != 0 {
		t.Errorf("move displacement = (%v,%v), want (50,0) toward first hop", moveAction.DX, moveAction.DY)
	}

	route := f.Route()
	if route.State != formation.RouteInProgress {
		t.Errorf("route state after move = %v, want InProgress", route.State)
	}
	if route.StartTick != 1 {
		t.Errorf("route.StartTick = %d, want 1", route.StartTick)
	}
}

func TestNoPlanAndNoPendingEmitsNone(t *testing.T) {
	s := formation.NewStore(formation.SideAlly)
	d := New()
	action := d.Tick(0, 0, 0, false, s)
	if action.Kind != ActionNone {
		t.Errorf("action = %+v, want ActionNone", action)
	}
}

func TestUnknownFormationEmitsNone(t *testing.T) {
	s := formation.NewStore(formation.SideAlly)
	d := New()
	action := d.Tick(0, 0, formation.ID(999), true, s)
	if action.Kind != ActionNone {
		t.Errorf("action = %+v, want ActionNone for an unknown formation", action)
	}
}
