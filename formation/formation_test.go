package formation

import "testing"

func addSquad(s *Store, tick int, kind Kind, n int, x0 int64) {
	b := s.NewBuilder(tick)
	for i := int64(0); i < int64(n); i++ {
		b.Add(NewUnit{ID: x0 + i, Kind: kind, X: float64(i) * 10, Y: 0, Radius: 2, Durability: 100})
	}
	b.Flush()
}

func TestIngestGroupsByKind(t *testing.T) {
	s := NewStore(SideAlly)
	b := s.NewBuilder(0)
	b.Add(NewUnit{ID: 1, Kind: KindTank, X: 0, Y: 0, Radius: 2, Durability: 100})
	b.Add(NewUnit{ID: 2, Kind: KindTank, X: 10, Y: 0, Radius: 2, Durability: 100})
	b.Add(NewUnit{ID: 3, Kind: KindArrv, X: 0, Y: 10, Radius: 2, Durability: 80})
	b.Flush()

	if got := s.Total(); got != 2 {
		t.Fatalf("Total() = %d, want 2 (one tank formation, one arrv formation)", got)
	}

	var tankForm, arrvForm *Ref
	for _, f := range s.Iter() {
		switch f.Kind() {
		case KindTank:
			tankForm = f
		case KindArrv:
			arrvForm = f
		}
	}
	if tankForm == nil || tankForm.Size() != 2 {
		t.Fatalf("tank formation = %+v, want size 2", tankForm)
	}
	if arrvForm == nil || arrvForm.Size() != 1 {
		t.Fatalf("arrv formation = %+v, want size 1", arrvForm)
	}
}

func TestHealthIsSumOfMembers(t *testing.T) {
	s := NewStore(SideAlly)
	addSquad(s, 0, KindTank, 3, 1)
	f := s.Iter()[0]
	cur, max := f.Health()
	if cur != 300 || max != 300 {
		t.Errorf("Health() = (%d,%d), want (300,300)", cur, max)
	}
}

func TestBoundingBoxContainsEveryMember(t *testing.T) {
	s := NewStore(SideAlly)
	addSquad(s, 0, KindTank, 4, 1)
	f := s.Iter()[0]
	bbox := f.BoundingBox()
	for _, id := range f.UnitIDs() {
		e := s.entities[id]
		p := s.posMap.Get(e)
		a := s.attrMap.Get(e)
		if !bbox.Rect.Inflate(0).Inside(p.X, p.Y) {
			t.Errorf("unit %d at (%v,%v) radius %v outside formation rect %+v", id, p.X, p.Y, a.Radius, bbox.Rect)
		}
	}
}

func TestUpdateAccumulatesDerivativesWithinATick(t *testing.T) {
	s := NewStore(SideAlly)
	addSquad(s, 0, KindTank, 2, 1)

	s.Update(Update{ID: 1, X: 5, Y: 0, Durability: 100}, 3)
	s.Update(Update{ID: 2, X: 10, Y: 7, Durability: 100}, 3)

	f := s.Iter()[0]
	dvt, n := f.DvtSums(3)
	if n != 2 {
		t.Fatalf("DvtSums formation size = %d, want 2", n)
	}
	if dvt.DX != 5 || dvt.DY != 7 {
		t.Errorf("DvtSums = %+v, want DX=5 DY=7 (sum across both units this tick)", dvt)
	}
}

func TestDvtSumsResetsOnNewTick(t *testing.T) {
	s := NewStore(SideAlly)
	addSquad(s, 0, KindTank, 1, 1)
	s.Update(Update{ID: 1, X: 5, Y: 0, Durability: 100}, 1)

	f := s.Iter()[0]
	dvt, _ := f.DvtSums(2)
	if dvt.DX != 0 || dvt.DY != 0 {
		t.Errorf("DvtSums at a later tick without new updates = %+v, want zero", dvt)
	}
}

func TestUpdateRemovesDestroyedUnit(t *testing.T) {
	s := NewStore(SideAlly)
	addSquad(s, 0, KindTank, 2, 1)

	s.Update(Update{ID: 1, X: 0, Y: 0, Durability: 0}, 1)

	f := s.Iter()[0]
	if f.Size() != 1 {
		t.Fatalf("Size() after kill = %d, want 1", f.Size())
	}
	cur, max := f.Health()
	if cur != 100 || max != 100 {
		t.Errorf("Health() after kill = (%d,%d), want (100,100)", cur, max)
	}
	if _, ok := s.entities[1]; ok {
		t.Errorf("destroyed unit 1 still present in entity index")
	}
}

func TestUpdateDestroyingLastUnitRemovesFormation(t *testing.T) {
	s := NewStore(SideAlly)
	addSquad(s, 0, KindTank, 1, 1)
	s.Update(Update{ID: 1, X: 0, Y: 0, Durability: 0}, 1)
	if s.Total() != 0 {
		t.Errorf("Total() after last unit destroyed = %d, want 0", s.Total())
	}
}

func TestUpdateOnUnknownUnitIsIgnored(t *testing.T) {
	s := NewStore(SideAlly)
	addSquad(s, 0, KindTank, 1, 1)
	s.Update(Update{ID: 999, X: 1, Y: 1, Durability: 50}, 1)
	if s.Total() != 1 || s.Iter()[0].Size() != 1 {
		t.Errorf("update to unknown unit mutated the store")
	}
}

func TestSplitPreservesUnitSetAndHealth(t *testing.T) {
	s := NewStore(SideAlly)
	addSquad(s, 0, KindTank, 6, 1)
	orig := s.Iter()[0]
	origIDs := append([]int64(nil), orig.UnitIDs()...)
	origCur, origMax := orig.Health()

	idA, idB, ok := s.Split(orig.ID)
	if !ok {
		t.Fatalf("Split failed")
	}
	if s.Total() != 2 {
		t.Fatalf("Total() after split = %d, want 2", s.Total())
	}

	refA, _ := s.GetByID(idA)
	refB, _ := s.GetByID(idB)

	seen := make(map[int64]bool)
	for _, id := range refA.UnitIDs() {
		seen[id] = true
	}
	for _, id := range refB.UnitIDs() {
		if seen[id] {
			t.Errorf("unit %d present in both halves", id)
		}
		seen[id] = true
	}
	if len(seen) != len(origIDs) {
		t.Errorf("split halves contain %d distinct units, want %d", len(seen), len(origIDs))
	}
	for _, id := range origIDs {
		if !seen[id] {
			t.Errorf("unit %d missing after split", id)
		}
	}

	curA, maxA := refA.Health()
	curB, maxB := refB.Health()
	if curA+curB != origCur || maxA+maxB != origMax {
		t.Errorf("split halves health (%d/%d)+(%d/%d) != original (%d/%d)", curA, maxA, curB, maxB, origCur, origMax)
	}
}

func TestSplitRefusesSingleUnitFormation(t *testing.T) {
	s := NewStore(SideAlly)
	addSquad(s, 0, KindTank, 1, 1)
	f := s.Iter()[0]
	if _, _, ok := s.Split(f.ID); ok {
		t.Errorf("Split on a single-unit formation should be refused")
	}
}

func TestRouteDefaultsToIdle(t *testing.T) {
	s := NewStore(SideAlly)
	addSquad(s, 0, KindTank, 1, 1)
	f := s.Iter()[0]
	if f.Route().State != RouteIdle {
		t.Errorf("fresh formation route state = %v, want RouteIdle", f.Route().State)
	}
}

func TestRouteMutationIsVisibleThroughSubsequentGetByID(t *testing.T) {
	s := NewStore(SideAlly)
	addSquad(s, 0, KindTank, 1, 1)
	f := s.Iter()[0]
	f.Route().State = RouteReady

	again, _ := s.GetByID(f.ID)
	if again.Route().State != RouteReady {
		t.Errorf("route mutation via one Ref not visible through a fresh GetByID")
	}
}

func TestStuckFlagRoundTrips(t *testing.T) {
	s := NewStore(SideAlly)
	addSquad(s, 0, KindTank, 1, 1)
	f := s.Iter()[0]
	if f.Stuck() {
		t.Errorf("fresh formation should not start stuck")
	}
	f.SetStuck(true)
	again, _ := s.GetByID(f.ID)
	if !again.Stuck() {
		t.Errorf("SetStuck(true) not visible through a fresh GetByID")
	}
}

func TestReingestDoesNotMergeIntoExistingFormation(t *testing.T) {
	s := NewStore(SideAlly)
	addSquad(s, 0, KindTank, 2, 1)
	addSquad(s, 1, KindTank, 2, 100)
	if s.Total() != 2 {
		t.Errorf("Total() after a second ingest pass = %d, want 2 (a fresh builder never merges into an existing formation)", s.Total())
	}
}
