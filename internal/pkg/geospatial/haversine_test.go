package geospatial

import (
	"math"
	"testing"
)

func TestHaversine_Identity(t *testing.T) {
	points := [][2]float64{
		{10.315366, 123.918746},
		{0, 0},
		{-89.9, 179.9},
		{43.263, -2.935},
	}
	for _, p := range points {
		if d := Haversine(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("distance(%v, %v) = %f, want 0", p, p, d)
		}
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	pairs := [][4]float64{
		{10.315366, 123.918746, 10.3153, 123.918},
		{43.263, -2.935, 43.264, -2.934},
		{-33.86, 151.21, 51.5, -0.12},
	}
	for _, p := range pairs {
		ab := Haversine(p[0], p[1], p[2], p[3])
		ba := Haversine(p[2], p[3], p[0], p[1])
		if ab != ba {
			t.Errorf("asymmetric distance: %f vs %f", ab, ba)
		}
	}
}

func TestHaversine_ReferencePair(t *testing.T) {
	d := Haversine(10.315366, 123.918746, 10.3153, 123.918)
	// dLat ≈ 7.3 m, dLon ≈ 81.6 m at this latitude.
	if d < 81 || d > 83 {
		t.Fatalf("expected ~82m, got %f", d)
	}
}

func TestHaversine_QuarterMeridian(t *testing.T) {
	d := Haversine(0, 0, 90, 0)
	want := EarthRadiusMeters * math.Pi / 2
	if math.Abs(d-want) > 1e-6 {
		t.Fatalf("expected %f, got %f", want, d)
	}
}

func TestHaversine_MonotonicWithSeparation(t *testing.T) {
	prev := 0.0
	for i := 1; i <= 10; i++ {
		d := Haversine(10.315, 123.9175, 10.315+float64(i)*0.001, 123.9175)
		if d <= prev {
			t.Fatalf("step %d: distance %f not greater than %f", i, d, prev)
		}
		prev = d
	}
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	lat, lon, radius := 10.315, 123.9175, 500.0
	minLat, minLon, maxLat, maxLon := BoundingBox(lat, lon, radius)

	if minLat >= lat || maxLat <= lat || minLon >= lon || maxLon <= lon {
		t.Fatalf("box does not surround centre: %f %f %f %f", minLat, minLon, maxLat, maxLon)
	}
	if d := Haversine(lat, lon, maxLat, lon); math.Abs(d-radius) > 0.01 {
		t.Errorf("north edge at %fm, want %fm", d, radius)
	}
	if d := Haversine(lat, lon, lat, maxLon); d < radius-0.01 {
		t.Errorf("east edge at %fm, want at least %fm", d, radius)
	}
}

func TestBoundingBox_Pole(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox(90, 0, 1000)
	if maxLat != 90 || minLon != -180 || maxLon != 180 {
		t.Fatalf("unexpected pole box: %f %f %f %f", minLat, minLon, maxLat, maxLon)
	}
}

func TestMiles(t *testing.T) {
	if got := Miles(1609); got != 1 {
		t.Fatalf("expected 1 mile, got %f", got)
	}
}
