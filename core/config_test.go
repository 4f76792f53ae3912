package core

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.StepsPerDegree != DefaultStepsPerDegree {
		t.Errorf("expected default steps-per-degree %f, got %f", DefaultStepsPerDegree, cfg.StepsPerDegree)
	}
	if cfg.MinAngleDeg != -30 || cfg.MaxAngleDeg != 60 {
		t.Errorf("expected flexion window [-30, 60], got [%f, %f]", cfg.MinAngleDeg, cfg.MaxAngleDeg)
	}
	if cfg.LoadCellSamples != DefaultLoadCellSamples {
		t.Errorf("expected %d load cell samples, got %d", DefaultLoadCellSamples, cfg.LoadCellSamples)
	}
	if cfg.GripInterval() != time.Second {
		t.Errorf("expected 1s grip interval, got %v", cfg.GripInterval())
	}
	if cfg.StiffnessInterval() != 20*time.Millisecond {
		t.Errorf("expected 20ms stiffness interval, got %v", cfg.StiffnessInterval())
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	data := []byte(`{
		"steps_per_degree": 8,
		"grip_interval_ms": 500,
		"calibration": {"offset": 412, "scale": 0.0045}
	}`)

	cfg, err := LoadConfig(data)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.StepsPerDegree != 8 {
		t.Errorf("expected steps_per_degree 8, got %f", cfg.StepsPerDegree)
	}
	if cfg.GripIntervalMs != 500 {
		t.Errorf("expected grip_interval_ms 500, got %d", cfg.GripIntervalMs)
	}
	if cfg.Calibration.Offset != 412 || cfg.Calibration.Scale != 0.0045 {
		t.Errorf("calibration not applied: %+v", cfg.Calibration)
	}
	// Unset fields still get defaults.
	if cfg.MaxAngleDeg != 60 {
		t.Errorf("expected default max angle, got %f", cfg.MaxAngleDeg)
	}
}

func TestLoadConfigRejectsBadJSON(t *testing.T) {
	if _, err := LoadConfig([]byte("{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestValidateRejectsWaypointOutsideWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExtendedDeg = 90

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for waypoint outside flexion window")
	}
}

func TestValidateRejectsWindowWithoutZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinAngleDeg = 10
	cfg.ExtendedDeg = 50
	cfg.FlexedDeg = 15
	cfg.MidDeg = 25

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for flexion window excluding zero")
	}
}

func TestValidateRejectsEmptyWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinAngleDeg = 60
	cfg.MaxAngleDeg = -30

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty flexion window")
	}
}

func TestStepsForAngle(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		deg  float64
		want int64
	}{
		{50, 200},
		{-25, -100},
		{25, 100},
		{0, 0},
		{0.1, 0}, // rounds to nearest step
	}
	for _, tt := range tests {
		if got := cfg.StepsForAngle(tt.deg); got != tt.want {
			t.Errorf("StepsForAngle(%f) = %d, want %d", tt.deg, got, tt.want)
		}
	}
}
