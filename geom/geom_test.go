package geom

import "testing"

func TestBoundarySqRadius(t *testing.T) {
	ra := Boundary{Rect: Rect{Left: 10, Top: 10, Right: 14, Bottom: 13}, CX: 12, CY: 11.5}
	if got := ra.SqRadius(); got != 6.25 {
		t.Errorf("ra.SqRadius() = %v, want 6.25", got)
	}
	rb := Boundary{Rect: Rect{Left: 10, Top: 10, Right: 15, Bottom: 14}, CX: 11, CY: 13}
	if got := rb.SqRadius(); got != 25 {
		t.Errorf("rb.SqRadius() = %v, want 25", got)
	}
}

func TestBoundarySqDistToLine(t *testing.T) {
	ra := Boundary{Rect: Rect{Left: 10, Top: 10, Right: 14, Bottom: 14}, CX: 12, CY: 12}
	cases := []struct {
		fx, fy, tx, ty float64
		want           float64
	}{
		{10, 10, 14, 10, 4},
		{10, 16, 14, 16, 16},
		{10, 10, 10, 14, 4},
		{16, 10, 16, 14, 16},
		{8, 12, 12, 8, 8},
	}
	for _, c := range cases {
		if got := ra.SqDistToLine(c.fx, c.fy, c.tx, c.ty); got != c.want {
			t.Errorf("SqDistToLine(%v,%v,%v,%v) = %v, want %v", c.fx, c.fy, c.tx, c.ty, got, c.want)
		}
	}
}

func TestBoundaryPredictCollision(t *testing.T) {
	ra := Boundary{Rect: Rect{Left: 20, Top: 10, Right: 25, Bottom: 14}, CX: 21, CY: 13}
	rb := Boundary{Rect: Rect{Left: 0, Top: 10, Right: 5, Bottom: 14}, CX: 1, CY: 13}
	if got := ra.SqRadius(); got != 25 {
		t.Fatalf("ra.SqRadius() = %v, want 25", got)
	}
	if got := rb.SqRadius(); got != 25 {
		t.Fatalf("rb.SqRadius() = %v, want 25", got)
	}
	cases := []struct {
		tx, ty float64
		want   bool
	}{
		{20, 10, true},
		{2, 10, false},
		{4, 10, false},
		{8, 10, false},
		{12, 10, true},
	}
	for _, c := range cases {
		if got := rb.PredictCollision(c.tx, c.ty, ra); got != c.want {
			t.Errorf("PredictCollision(%v,%v) = %v, want %v", c.tx, c.ty, got, c.want)
		}
	}
}

func TestBoundaryCorrectTrajectory(t *testing.T) {
	ra := Boundary{Rect: Rect{Left: 20, Top: 10, Right: 25, Bottom: 14}, CX: 21, CY: 13}
	rb := Boundary{Rect: Rect{Left: 0, Top: 10, Right: 5, Bottom: 14}, CX: 1, CY: 13}
	tx, ty := rb.CorrectTrajectory(ra)
	if tx != 11 || ty != 13 {
		t.Fatalf("CorrectTrajectory = (%v,%v), want (11,13)", tx, ty)
	}
	if rb.PredictCollision(tx, ty, ra) {
		t.Errorf("corrected trajectory still predicts collision")
	}
}

func TestBoundaryCorrectTrajectoryA(t *testing.T) {
	me := Boundary{
		Rect:    Rect{Left: 29, Top: 81.97561338236046, Right: 57, Bottom: 139.97561338236045},
		CX:      43,
		CY:      110.97561338236036,
		Density: 0.386895646993817,
	}
	obstacle := Boundary{
		Rect:    Rect{Left: 59, Top: 81.97561338236046, Right: 87, Bottom: 139.97561338236045},
		CX:      73,
		CY:      110.97561338236035,
		Density: 0.386895646993817,
	}
	if !me.PredictCollision(487.4579573974935, 493.33292266981744, obstacle) {
		t.Fatalf("expected collision before correction")
	}
	tx, ty := me.CorrectTrajectory(obstacle)
	if me.PredictCollision(tx, ty, obstacle) {
		t.Errorf("corrected trajectory still predicts collision")
	}
}

func TestBoundaryCorrectTrajectoryB(t *testing.T) {
	me := Boundary{
		Rect: Rect{Left: 164, Top: 164, Right: 222, Bottom: 222},
		CX:   193, CY: 193,
		Density: 0.37355441778713294,
	}
	obstacle := Boundary{
		Rect: Rect{Left: 164, Top: 90, Right: 222, Bottom: 148},
		CX:   193, CY: 119,
		Density: 0.37355441778713294,
	}
	if !me.PredictCollision(207.04910379187322, 144.59873458304605, obstacle) {
		t.Fatalf("expected collision before correction")
	}
	tx, ty := me.CorrectTrajectory(obstacle)
	if me.PredictCollision(tx, ty, obstacle) {
		t.Errorf("corrected trajectory still predicts collision")
	}
	if me.PredictCollision(193, 201.02438661763952, obstacle) {
		t.Errorf("known-safe target still predicts collision")
	}
}

func TestRectInsideAndMaxSide(t *testing.T) {
	r := Rect{Left: 0, Top: 0, Right: 10, Bottom: 20}
	if !r.Inside(5, 5) {
		t.Errorf("expected (5,5) inside rect")
	}
	if r.Inside(11, 5) {
		t.Errorf("expected (11,5) outside rect")
	}
	if got := r.MaxSide(); got != 20 {
		t.Errorf("MaxSide() = %v, want 20", got)
	}
}

func TestRectInflateShrink(t *testing.T) {
	r := Rect{Left: 10, Top: 10, Right: 20, Bottom: 20}
	inflated := r.Inflate(5)
	want := Rect{Left: 5, Top: 5, Right: 25, Bottom: 25}
	if inflated != want {
		t.Errorf("Inflate(5) = %+v, want %+v", inflated, want)
	}
	shrunk := r.Shrink(20)
	if shrunk.Left != shrunk.Right || shrunk.Top != shrunk.Bottom {
		t.Errorf("over-shrunk rect should collapse to its center line, got %+v", shrunk)
	}
}

func TestBoundaryFromDiscs(t *testing.T) {
	b := BoundaryFromDiscs([]Disc{{X: 0, Y: 0, Radius: 1}, {X: 10, Y: 0, Radius: 1}})
	if b.CX != 5 || b.CY != 0 {
		t.Errorf("centroid = (%v,%v), want (5,0)", b.CX, b.CY)
	}
	wantRect := Rect{Left: -1, Top: -1, Right: 11, Bottom: 1}
	if b.Rect != wantRect {
		t.Errorf("rect = %+v, want %+v", b.Rect, wantRect)
	}
}
