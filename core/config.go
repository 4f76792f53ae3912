package core

import (
	"encoding/json"
	"errors"
	"math"
	"time"
)

// Defaults for a 28BYJ-48-class geared actuator on the finger jig.
const (
	DefaultStepsPerDegree  = 4.0
	DefaultLoadCellSamples = 5
)

// Config holds the fixed-at-initialization parameters of the device. The
// flexion window and steps-per-degree constant come from the clinical
// calibration of the jig and never change at runtime.
type Config struct {
	// Conversion factor between motor steps and joint angle.
	StepsPerDegree float64 `json:"steps_per_degree"`

	// Clinically declared flexion window, degrees.
	MinAngleDeg float64 `json:"min_angle_deg"`
	MaxAngleDeg float64 `json:"max_angle_deg"`

	// Waypoints of the repeating flexion/extension cycle, degrees.
	ExtendedDeg float64 `json:"extended_deg"`
	FlexedDeg   float64 `json:"flexed_deg"`
	MidDeg      float64 `json:"mid_deg"`

	// Motion limits in steps/s and steps/s^2.
	MaxSpeed float64 `json:"max_speed"`
	Accel    float64 `json:"accel"`

	// Sampling cadence and oversampling.
	GripIntervalMs      int `json:"grip_interval_ms"`
	StiffnessIntervalMs int `json:"stiffness_interval_ms"`
	LoadCellSamples     int `json:"load_cell_samples"`

	// Load-cell channel calibration.
	Calibration Calibration `json:"calibration"`
}

// LoadConfig parses a JSON configuration blob, fills in defaults, and
// validates the result. Zero is the "unset" sentinel for every field: a field
// left at zero takes its default, so an explicit zero cannot be configured
// (e.g. flexed_deg of 0 becomes the default -25). A waypoint meant to sit at
// the neutral position must use a value that rounds to step zero instead.
func LoadConfig(jsonData []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultConfig returns the configuration for the standard assessment jig.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.StepsPerDegree == 0 {
		cfg.StepsPerDegree = DefaultStepsPerDegree
	}
	if cfg.MinAngleDeg == 0 {
		cfg.MinAngleDeg = -30
	}
	if cfg.MaxAngleDeg == 0 {
		cfg.MaxAngleDeg = 60
	}
	if cfg.ExtendedDeg == 0 {
		cfg.ExtendedDeg = 50
	}
	if cfg.FlexedDeg == 0 {
		cfg.FlexedDeg = -25
	}
	if cfg.MidDeg == 0 {
		cfg.MidDeg = 25
	}
	if cfg.MaxSpeed == 0 {
		cfg.MaxSpeed = 400 // 100 deg/s at the default calibration
	}
	if cfg.Accel == 0 {
		cfg.Accel = 800
	}
	if cfg.GripIntervalMs == 0 {
		cfg.GripIntervalMs = 1000
	}
	if cfg.StiffnessIntervalMs == 0 {
		cfg.StiffnessIntervalMs = 20
	}
	if cfg.LoadCellSamples == 0 {
		cfg.LoadCellSamples = DefaultLoadCellSamples
	}
	if cfg.Calibration.Scale == 0 {
		cfg.Calibration.Scale = 1
	}
}

// Validate rejects configurations that would let the actuator leave the
// declared flexion window or stall the loop.
func (c *Config) Validate() error {
	if c.StepsPerDegree <= 0 {
		return errors.New("steps_per_degree must be positive")
	}
	if c.MinAngleDeg >= c.MaxAngleDeg {
		return errors.New("flexion window is empty")
	}
	// Position resets to 0 on stop, so the window must contain 0.
	if c.MinAngleDeg > 0 || c.MaxAngleDeg < 0 {
		return errors.New("flexion window must contain the zero position")
	}
	for _, deg := range []float64{c.ExtendedDeg, c.FlexedDeg, c.MidDeg} {
		if deg < c.MinAngleDeg || deg > c.MaxAngleDeg {
			return errors.New("waypoint outside flexion window")
		}
	}
	if c.MaxSpeed <= 0 || c.Accel <= 0 {
		return errors.New("max_speed and accel must be positive")
	}
	if c.GripIntervalMs <= 0 || c.StiffnessIntervalMs <= 0 {
		return errors.New("sampling intervals must be positive")
	}
	if c.LoadCellSamples <= 0 {
		return errors.New("load_cell_samples must be positive")
	}
	return nil
}

// StepsForAngle converts a joint angle to an absolute step count.
func (c *Config) StepsForAngle(deg float64) int64 {
	return int64(math.Round(deg * c.StepsPerDegree))
}

// GripInterval is the pacing interval between grip-mode samples.
func (c *Config) GripInterval() time.Duration {
	return time.Duration(c.GripIntervalMs) * time.Millisecond
}

// StiffnessInterval is the short stabilization interval between stiffness
// ticks.
func (c *Config) StiffnessInterval() time.Duration {
	return time.Duration(c.StiffnessIntervalMs) * time.Millisecond
}
