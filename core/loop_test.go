package core

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	clock *fakeClock
	src   *byteQueue
	adc   *mockADC
	back  *mockBackend
	out   bytes.Buffer
	ctrl  *Controller
}

func newHarness(t *testing.T, cfg *Config) *harness {
	t.Helper()

	h := &harness{
		clock: &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
		src:   &byteQueue{},
		adc:   &mockADC{loadCell: []ADCValue{150}, fsr: 300},
		back:  &mockBackend{},
	}

	ctrl, err := NewController(cfg, h.src, h.adc, h.back, &h.out, h.clock)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	h.ctrl = ctrl
	return h
}

func (h *harness) lines() []string {
	out := strings.TrimRight(h.out.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func (h *harness) linesWith(suffix string) []string {
	var matched []string
	for _, line := range h.lines() {
		if strings.HasSuffix(line, suffix) {
			matched = append(matched, line)
		}
	}
	return matched
}

// runFor ticks the loop with a fixed simulated step until d has elapsed.
func (h *harness) runFor(d, step time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		h.ctrl.Tick()
		h.clock.advance(step)
	}
}

func TestBootBanner(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.ctrl.Boot()

	lines := h.lines()
	if len(lines) == 0 || lines[0] != "READY" {
		t.Fatalf("boot must lead with READY, got %v", lines)
	}
	var menuLines int
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "Send '") {
			menuLines++
		}
	}
	if menuLines != 3 {
		t.Errorf("expected 3 menu lines, got %d in %v", menuLines, lines)
	}
}

func TestGripScenario(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.src.push('1')

	h.runFor(3500*time.Millisecond, 10*time.Millisecond)

	if h.ctrl.Mode() != ModeGrip {
		t.Errorf("expected ModeGrip, got %v", h.ctrl.Mode())
	}
	if got := h.lines(); len(got) == 0 || got[0] != "Mode: Grip Strength" {
		t.Fatalf("expected grip acknowledgement first, got %v", got)
	}

	// One Weight line per pacing interval: t=0s, 1s, 2s, 3s.
	weights := h.linesWith(",Weight")
	if len(weights) != 4 {
		t.Errorf("expected 4 Weight lines over 3.5s, got %d: %v", len(weights), weights)
	}
	for _, line := range weights {
		if line != "150.00,Weight" {
			t.Errorf("unexpected Weight line %q", line)
		}
	}

	// Grip mode never actuates.
	if len(h.back.steps) != 0 {
		t.Errorf("grip mode generated %d steps", len(h.back.steps))
	}
}

func TestGripDropsNegativeWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Calibration = Calibration{Offset: 500, Scale: 1} // raw 150 calibrates below zero
	h := newHarness(t, cfg)
	h.src.push('1')

	h.runFor(2500*time.Millisecond, 10*time.Millisecond)

	if weights := h.linesWith(",Weight"); len(weights) != 0 {
		t.Errorf("negative weights were emitted: %v", weights)
	}
	// The acknowledgement still goes out.
	if got := h.lines(); len(got) != 1 || got[0] != "Mode: Grip Strength" {
		t.Errorf("expected only the grip acknowledgement, got %v", got)
	}
}

func TestStiffnessScenario(t *testing.T) {
	cfg := DefaultConfig()
	h := newHarness(t, cfg)
	h.src.push('2')

	h.runFor(time.Second, 5*time.Millisecond)

	if h.ctrl.Mode() != ModeStiffness {
		t.Errorf("expected ModeStiffness, got %v", h.ctrl.Mode())
	}
	if got := h.lines(); len(got) == 0 || got[0] != "Mode: Joint Stiffness" {
		t.Fatalf("expected stiffness acknowledgement first, got %v", got)
	}

	// FSR cadence is ~20ms; a second of simulated time yields ~50 samples.
	fsr := h.linesWith(",FSR")
	if len(fsr) < 40 {
		t.Errorf("expected roughly one FSR line per 20ms, got %d", len(fsr))
	}
	for _, line := range fsr {
		if line != "300,FSR" {
			t.Errorf("unexpected FSR line %q", line)
		}
	}

	// Motion heads toward maximal extension and respects the window.
	if h.ctrl.motion.Position() <= 0 {
		t.Errorf("expected motion toward extension, position %d", h.ctrl.motion.Position())
	}
	if h.ctrl.motion.Position() > cfg.StepsForAngle(cfg.MaxAngleDeg) {
		t.Errorf("position %d exceeded configured bound", h.ctrl.motion.Position())
	}
	if len(h.back.steps) == 0 {
		t.Error("expected step pulses in stiffness mode")
	}
}

func TestStopScenario(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.src.push('2')
	h.runFor(300*time.Millisecond, 5*time.Millisecond)

	if h.ctrl.motion.Position() == 0 {
		t.Fatal("expected the actuator to be moving before stop")
	}
	stepsBefore := len(h.back.steps)

	h.src.push('3')
	h.ctrl.Tick() // stop completes within this tick

	if h.ctrl.Mode() != ModeIdle {
		t.Errorf("expected ModeIdle after stop, got %v", h.ctrl.Mode())
	}
	if h.ctrl.motion.Position() != 0 || h.ctrl.motion.Target() != 0 {
		t.Errorf("expected zeroed positions, got %d/%d",
			h.ctrl.motion.Position(), h.ctrl.motion.Target())
	}
	if h.back.released == 0 {
		t.Error("expected actuator output stage released")
	}

	lines := h.lines()
	if len(lines) < 2 ||
		lines[len(lines)-2] != "Mode: Stopping" ||
		lines[len(lines)-1] != "Stopped: actuator released, position zeroed" {
		t.Errorf("expected stopping acknowledgement and stop status, got %v", lines[max(0, len(lines)-2):])
	}

	// No further actuation until a new mode command arrives.
	h.runFor(time.Second, 5*time.Millisecond)
	if len(h.back.steps) != stepsBefore {
		t.Errorf("idle device stepped %d more times", len(h.back.steps)-stepsBefore)
	}
}

func TestUnrecognizedBytesAreSilent(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.src.push('x', '9', 0x00, 0xFF)

	h.runFor(100*time.Millisecond, 5*time.Millisecond)

	if h.ctrl.Mode() != ModeIdle {
		t.Errorf("expected ModeIdle, got %v", h.ctrl.Mode())
	}
	if out := h.out.String(); out != "" {
		t.Errorf("unrecognized bytes produced output: %q", out)
	}
}

func TestModeSwitchStopsPreviousCadence(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.src.push('1')
	h.runFor(1500*time.Millisecond, 10*time.Millisecond)

	weightsBefore := len(h.linesWith(",Weight"))
	if weightsBefore == 0 {
		t.Fatal("expected Weight lines before the switch")
	}

	h.src.push('2')
	h.runFor(2*time.Second, 10*time.Millisecond)

	if got := len(h.linesWith(",Weight")); got != weightsBefore {
		t.Errorf("grip sampling continued after mode switch: %d -> %d", weightsBefore, got)
	}
	if len(h.linesWith(",FSR")) == 0 {
		t.Error("expected FSR lines after switching to stiffness")
	}
}

func TestBoundsFaultHaltsAndReports(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	// Corrupt the extension waypoint beyond the window to force the fault path.
	h.ctrl.motion.waypointSteps[WaypointExtended] = 10000

	h.src.push('2')
	h.runFor(500*time.Millisecond, 5*time.Millisecond)

	var fault bool
	for _, line := range h.lines() {
		if strings.HasPrefix(line, "FAULT:") {
			fault = true
		}
	}
	if !fault {
		t.Error("expected a FAULT status line")
	}
	if !h.ctrl.motion.Halted() {
		t.Error("expected actuation halted after bounds violation")
	}
	if len(h.back.steps) != 0 {
		t.Errorf("faulted profile generated %d steps", len(h.back.steps))
	}

	// Stop clears the fault and returns to Idle.
	h.src.push('3')
	h.ctrl.Tick()
	if h.ctrl.Mode() != ModeIdle || h.ctrl.motion.Halted() {
		t.Error("expected stop to clear the fault")
	}
}
