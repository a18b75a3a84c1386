package http

import "testing"

func TestProximitySubject(t *testing.T) {
	tests := []struct {
		viewport, kind, want string
	}{
		{"", "", "proximity.>"},
		{"radar", "", "proximity.radar.*"},
		{"", "enter", "proximity.*.enter"},
		{"map", "leave", "proximity.map.leave"},
	}
	for _, tt := range tests {
		if got := proximitySubject(tt.viewport, tt.kind); got != tt.want {
			t.Errorf("proximitySubject(%q, %q) = %q, want %q", tt.viewport, tt.kind, got, tt.want)
		}
	}
}
