package graph

import "testing"

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"insat-3dr", "INSAT-3DR"},
		{"  INSAT-3DR  ", "INSAT-3DR"},
		{"Insat-3dr", "INSAT-3DR"},
		{"", ""},
		{"   ", ""},
		{"megha-tropiques", "MEGHA-TROPIQUES"},
	}
	for _, tt := range tests {
		if got := NormalizeID(tt.in); got != tt.want {
			t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Satellite", "Satellite"},
		{"Data Product", "DataProduct"},
		{"Satellite!", "Satellite"},
		{"***", ""},
		{"", ""},
		{"Sensor_Type", "SensorType"},
	}
	for _, tt := range tests {
		if got := SanitizeLabel(tt.in); got != tt.want {
			t.Errorf("SanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeRelType(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"carries_sensor", "CARRIES_SENSOR"},
		{"carries sensor", "CARRIES_SENSOR"},
		{"  carries   sensor  ", "CARRIES_SENSOR"},
		{"CARRIES_SENSOR", "CARRIES_SENSOR"},
		{"launched-by", "LAUNCHEDBY"},
		{"***", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeRelType(tt.in); got != tt.want {
			t.Errorf("SanitizeRelType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
