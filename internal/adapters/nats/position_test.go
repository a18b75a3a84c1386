package natsadapter

import (
	"testing"
	"time"

	"github.com/samirrijal/propfinder/internal/core/domain"
)

func TestFixRoundTrip(t *testing.T) {
	at := time.Date(2025, 4, 15, 2, 43, 53, 0, time.UTC)
	data, err := EncodeFix(domain.Coordinate{Latitude: 10.315366, Longitude: 123.918746}, at)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	fix, err := DecodeFix(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fix.Coordinate.Latitude != 10.315366 || fix.Coordinate.Longitude != 123.918746 {
		t.Errorf("unexpected coordinate %v", fix.Coordinate)
	}
	if !fix.Time.Equal(at) {
		t.Errorf("expected %v, got %v", at, fix.Time)
	}
}

func TestDecodeFix_Errors(t *testing.T) {
	data, _ := EncodeFixError("permission denied")
	if _, err := DecodeFix(data); err == nil || err.Error() != "permission denied" {
		t.Fatalf("expected device error, got %v", err)
	}
	if _, err := DecodeFix([]byte(`{"lat": 10.3}`)); err == nil {
		t.Fatal("expected error for missing lon")
	}
	if _, err := DecodeFix([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestDecodeFix_ZeroCoordinate(t *testing.T) {
	fix, err := DecodeFix([]byte(`{"lat": 0, "lon": 0}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fix.Coordinate != (domain.Coordinate{}) {
		t.Errorf("expected origin, got %v", fix.Coordinate)
	}
}

func TestSubjects(t *testing.T) {
	if got := PositionSubject("radar"); got != "observer.radar.position" {
		t.Errorf("unexpected position subject %s", got)
	}
	if got := LocateSubject("map"); got != "observer.map.locate" {
		t.Errorf("unexpected locate subject %s", got)
	}
	if got := ProximitySubject("radar", domain.TransitionEnter); got != "proximity.radar.enter" {
		t.Errorf("unexpected proximity subject %s", got)
	}
	if got := NotificationSubject("agent-1"); got != "notifications.agent-1" {
		t.Errorf("unexpected notification subject %s", got)
	}
}
