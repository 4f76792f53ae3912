package core

import (
	"errors"
	"math"
	"time"
)

// Waypoint identifies a target position in the actuator's repeating
// flexion/extension cycle.
type Waypoint uint8

const (
	WaypointExtended Waypoint = iota // maximal extension
	WaypointFlexed                   // flexion past neutral
	WaypointMid                      // positive mid hold
)

func (w Waypoint) String() string {
	switch w {
	case WaypointExtended:
		return "extended"
	case WaypointFlexed:
		return "flexed"
	case WaypointMid:
		return "mid"
	}
	return "unknown"
}

// nextWaypoint is the explicit cycle table, consulted only once the previous
// target has been fully reached. Earlier firmware picked the next target by
// comparing the position against literal step counts; its middle branch
// checked a constant that was never set as a target, collapsing the cycle to
// a two-point bounce. The table keeps all three waypoints in the rotation.
var nextWaypoint = map[Waypoint]Waypoint{
	WaypointExtended: WaypointFlexed,
	WaypointFlexed:   WaypointMid,
	WaypointMid:      WaypointExtended,
}

// ErrBoundsViolation reports a motion target outside the calibrated flexion
// window. Physical safety depends on catching this before actuation.
var ErrBoundsViolation = errors.New("motion target outside flexion window")

// Motion advances the actuator toward a target position without ever blocking
// the loop. Position and target are absolute signed step counts; pacing comes
// from a monotonic clock so the step rate is independent of tick frequency.
// The record persists across ticks and mode switches and is reset only when
// the device stops.
type Motion struct {
	backend ActuatorBackend

	position int64
	target   int64

	// Calibrated flexion window in steps.
	minStep int64
	maxStep int64

	maxSpeed float64 // steps/s
	accel    float64 // steps/s^2

	speed        float64 // current speed, steps/s
	rampSteps    int64   // steps taken in the current acceleration ramp
	nextStepTime time.Time

	waypoint      Waypoint
	waypointSteps map[Waypoint]int64

	halted bool
}

// startWaypoint seeds the cycle so the first selected target from the boot
// position is maximal extension.
const startWaypoint = WaypointMid

func NewMotion(cfg *Config, backend ActuatorBackend) *Motion {
	return &Motion{
		backend:  backend,
		minStep:  cfg.StepsForAngle(cfg.MinAngleDeg),
		maxStep:  cfg.StepsForAngle(cfg.MaxAngleDeg),
		maxSpeed: cfg.MaxSpeed,
		accel:    cfg.Accel,
		waypoint: startWaypoint,
		waypointSteps: map[Waypoint]int64{
			WaypointExtended: cfg.StepsForAngle(cfg.ExtendedDeg),
			WaypointFlexed:   cfg.StepsForAngle(cfg.FlexedDeg),
			WaypointMid:      cfg.StepsForAngle(cfg.MidDeg),
		},
	}
}

// Position returns the current absolute position in steps.
func (m *Motion) Position() int64 {
	return m.position
}

// Target returns the current target position in steps.
func (m *Motion) Target() int64 {
	return m.target
}

// DistanceToGo returns the remaining distance to the target in steps.
func (m *Motion) DistanceToGo() int64 {
	d := m.target - m.position
	if d < 0 {
		return -d
	}
	return d
}

// Waypoint returns the waypoint whose target is currently set.
func (m *Motion) Waypoint() Waypoint {
	return m.waypoint
}

// Halted reports whether actuation is halted pending a reset.
func (m *Motion) Halted() bool {
	return m.halted
}

// MoveTo validates and sets a new target position. A target outside the
// calibrated flexion window halts actuation and returns ErrBoundsViolation;
// the profile stays halted until Reset clears the fault.
func (m *Motion) MoveTo(target int64) error {
	if target < m.minStep || target > m.maxStep {
		m.Halt()
		m.halted = true
		return ErrBoundsViolation
	}
	m.target = target
	return nil
}

// CycleTick drives the repeating three-waypoint trajectory: once the previous
// target is fully reached the next waypoint is selected from the cycle table,
// then the profile advances by at most one step.
func (m *Motion) CycleTick(now time.Time) error {
	if m.halted {
		return nil
	}

	if m.DistanceToGo() == 0 {
		m.waypoint = nextWaypoint[m.waypoint]
		if err := m.MoveTo(m.waypointSteps[m.waypoint]); err != nil {
			return err
		}
	}

	m.Advance(now)
	return nil
}

// Advance takes at most one step toward the target, honoring the configured
// max speed and acceleration. It never blocks or sleeps; when the next step
// is not yet due it simply returns false.
func (m *Motion) Advance(now time.Time) bool {
	if m.halted || m.position == m.target {
		m.speed = 0
		m.rampSteps = 0
		return false
	}

	if now.Before(m.nextStepTime) {
		return false
	}

	dir := int64(1)
	if m.target < m.position {
		dir = -1
	}

	// The window invariant is enforced on targets; this guards the position
	// itself in case the backend state and profile ever disagree.
	next := m.position + dir
	if next < m.minStep || next > m.maxStep {
		m.Halt()
		m.halted = true
		return false
	}

	m.backend.Step(dir > 0)
	m.position = next
	m.rampSteps++

	dist := m.DistanceToGo()
	if dist == 0 {
		m.speed = 0
		m.rampSteps = 0
		return true
	}

	m.speed = m.rampSpeed(dist)
	interval := time.Duration(float64(time.Second) / m.speed)
	m.nextStepTime = now.Add(interval)
	return true
}

// rampSpeed returns the permitted speed after the current step: accelerating
// from rest, capped by max speed, and decelerating so the profile can stop at
// the target without overshoot.
func (m *Motion) rampSpeed(distanceToGo int64) float64 {
	ramp := m.rampSteps
	if distanceToGo < ramp {
		ramp = distanceToGo
	}

	speed := math.Sqrt(2 * m.accel * float64(ramp))
	if speed > m.maxSpeed {
		speed = m.maxSpeed
	}
	return speed
}

// NextStepDue returns the deadline of the next pending step.
func (m *Motion) NextStepDue() time.Time {
	return m.nextStepTime
}

// Halt stops motion in place: the target collapses onto the current position
// and the speed ramp is cleared. The output stage stays energized.
func (m *Motion) Halt() {
	m.target = m.position
	m.speed = 0
	m.rampSteps = 0
}

// Reset is the stop action: halt, zero current and target position, release
// the output stage, clear any bounds fault, and rewind the waypoint cycle so
// the next assessment starts toward maximal extension.
func (m *Motion) Reset() {
	m.Halt()
	m.position = 0
	m.target = 0
	m.halted = false
	m.waypoint = startWaypoint
	m.nextStepTime = time.Time{}
	m.backend.Release()
}
