package geo

import (
	"math"
	"testing"
)

func TestHaversineKm_ZeroDistance(t *testing.T) {
	d := HaversineKm(10, 20, 10, 20)
	if d < 0 || d > 1e-9 {
		t.Fatalf("zero distance expected ~0, got %v", d)
	}
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// One degree of latitude is roughly 111.2 km.
	d := HaversineKm(0, 0, 1, 0)
	if math.Abs(d-111.19) > 0.1 {
		t.Fatalf("HaversineKm(0,0,1,0) = %v, want ~111.19", d)
	}
	// Berlin to Paris is about 878 km.
	d = HaversineKm(52.5200, 13.4050, 48.8566, 2.3522)
	if math.Abs(d-878) > 5 {
		t.Fatalf("Berlin-Paris = %v, want ~878", d)
	}
}

func TestWithinRange_Boundary(t *testing.T) {
	d := HaversineKm(0, 0, 0, 0.01)
	if !WithinRange(0, 0, 0, 0.01, d) {
		t.Fatalf("expected point exactly at range to be reachable")
	}
	if WithinRange(0, 0, 0, 0.01, d-0.001) {
		t.Fatalf("expected point beyond range to be unreachable")
	}
}
