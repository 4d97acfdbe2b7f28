package geom

import "testing"

func TestGrid3DWeldsNearCoincidentPoints(t *testing.T) {
	g := NewGrid3D[struct{}](0.1)
	qx, qy, qz, _ := g.Align(1.0, 2.0, 3.0)
	g.Set(qx, qy, qz, struct{}{})

	// A point 0.04 away quantizes to the same cell (1.04/0.1 rounds
	// to 10) and should weld to the first.
	wx, wy, wz, _ := g.Align(1.04, 2.0, 3.0)
	if wx != qx || wy != qy || wz != qz {
		t.Fatalf("near-coincident point did not weld: got (%v,%v,%v), want (%v,%v,%v)", wx, wy, wz, qx, qy, qz)
	}
}

func TestGrid3DDistantPointsDoNotWeld(t *testing.T) {
	g := NewGrid3D[struct{}](0.1)
	qx, qy, qz, _ := g.Align(0, 0, 0)
	g.Set(qx, qy, qz, struct{}{})

	wx, wy, wz, _ := g.Align(10, 10, 10)
	if wx == qx && wy == qy && wz == qz {
		t.Fatal("distant point should not weld to an unrelated cell")
	}
}

func TestGrid3DEq(t *testing.T) {
	g := NewGrid3D[struct{}](0.1)
	if !g.Eq(1.0, 1.0, 1.0, 1.02, 1.0, 1.0) {
		t.Fatal("points within resolution should compare equal")
	}
}

func TestGrid2DHasWithoutCreating(t *testing.T) {
	g := NewGrid2D[int](0.1)
	if g.Has(0, 0) {
		t.Fatal("empty grid should report Has=false")
	}
	qx, qy, _ := g.Align(0, 0)
	g.Set(qx, qy, 1)
	if !g.Has(0.02, 0.02) {
		t.Fatal("neighboring coordinate should report Has=true")
	}
}

func TestGridPayloadRoundTrips(t *testing.T) {
	g := NewGrid3D[int](0.1)
	qx, qy, qz, _ := g.Align(5, 5, 5)
	g.Set(qx, qy, qz, 7)
	_, _, _, v := g.Align(5, 5, 5)
	if v != 7 {
		t.Fatalf("payload = %d, want 7", v)
	}
}
