package core

import (
	"context"
	"io"
	"strconv"
	"time"
)

// DefaultPollInterval bounds how long the loop sleeps between ticks so host
// commands stay responsive even when no timer is due soon.
const DefaultPollInterval = 5 * time.Millisecond

// Controller wires the command interpreter, mode state machine, motion
// profile, sampler and emitter into the single cooperative tick loop. All
// components share one execution context; there is no parallelism and hence
// no locking.
type Controller struct {
	cfg     *Config
	clock   Clock
	sched   *Scheduler
	sm      *StateMachine
	interp  *Interpreter
	motion  *Motion
	sampler *Sampler
	emitter *Emitter
	backend ActuatorBackend

	gripTimer      Timer
	stiffnessTimer Timer
	motionTimer    Timer

	pollInterval time.Duration
}

// NewController validates the configuration, prepares both ADC channels, and
// assembles the loop. The returned controller is in ModeIdle.
func NewController(cfg *Config, src ByteSource, adc ADCDriver, backend ActuatorBackend, w io.Writer, clock Clock) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := adc.ConfigureChannel(ChannelLoadCell); err != nil {
		return nil, err
	}
	if err := adc.ConfigureChannel(ChannelFSR); err != nil {
		return nil, err
	}

	c := &Controller{
		cfg:          cfg,
		clock:        clock,
		sched:        NewScheduler(),
		motion:       NewMotion(cfg, backend),
		sampler:      NewSampler(adc, cfg.Calibration, cfg.LoadCellSamples),
		emitter:      NewEmitter(w),
		backend:      backend,
		pollInterval: DefaultPollInterval,
	}

	c.sm = NewStateMachine(c.enterMode)
	c.interp = NewInterpreter(src, c.sm)

	c.gripTimer.Handler = c.gripTick
	c.stiffnessTimer.Handler = c.stiffnessTick
	c.motionTimer.Handler = c.motionTick

	return c, nil
}

// Mode returns the active operating mode.
func (c *Controller) Mode() Mode {
	return c.sm.Mode()
}

// Boot emits the readiness sequence the host waits for.
func (c *Controller) Boot() {
	c.emitter.Banner([]string{
		"Load cell channel ready (" + strconv.Itoa(c.cfg.LoadCellSamples) + "-sample average)",
		"FSR channel ready",
		"Actuator ready: " + c.backend.Name(),
	}, Menu())
}

// Tick runs one pass of the cooperative loop: poll for a command, drain a
// pending stop, then dispatch due timers.
func (c *Controller) Tick() {
	c.interp.Poll()

	if c.sm.Mode() == ModeStopping {
		c.finishStop()
	}

	c.sched.Dispatch(c.clock.Now())
}

// Run drives the tick loop until ctx is canceled. Between ticks it sleeps
// until the next scheduled deadline, bounded by the poll interval. On
// cancellation the actuator is released.
func (c *Controller) Run(ctx context.Context) error {
	c.Boot()

	for {
		select {
		case <-ctx.Done():
			c.motion.Reset()
			return ctx.Err()
		default:
		}

		c.Tick()

		sleep := c.pollInterval
		if wake, ok := c.sched.NextWake(); ok {
			if d := wake.Sub(c.clock.Now()); d < sleep {
				sleep = d
			}
		}
		if sleep > 0 {
			time.Sleep(sleep)
		}
	}
}

// enterMode rearms the cadence timers for the new mode and acknowledges it.
// The internal Stopping to Idle transition is the one silent entry.
func (c *Controller) enterMode(m Mode) {
	c.sched.Cancel(&c.gripTimer)
	c.sched.Cancel(&c.stiffnessTimer)
	c.sched.Cancel(&c.motionTimer)

	if m != ModeIdle {
		c.emitter.Status("Mode: " + m.String())
	}

	now := c.clock.Now()
	switch m {
	case ModeGrip:
		c.gripTimer.WakeTime = now
		c.sched.Schedule(&c.gripTimer)
	case ModeStiffness:
		c.stiffnessTimer.WakeTime = now
		c.sched.Schedule(&c.stiffnessTimer)
		c.motionTimer.WakeTime = now
		c.sched.Schedule(&c.motionTimer)
	}
}

// finishStop completes the self-clearing Stopping mode within the same tick
// it was observed: motion halted, positions zeroed, output stage released,
// status line emitted, then back to Idle.
func (c *Controller) finishStop() {
	c.motion.Reset()
	c.emitter.Status("Stopped: actuator released, position zeroed")
	c.sm.Set(ModeIdle)
}

// gripTick samples the load-cell channel and paces the next emission from the
// monotonic clock, so the sample rate stays near one per interval regardless
// of how long the averaged read takes.
func (c *Controller) gripTick(t *Timer) uint8 {
	if c.sm.Mode() != ModeGrip {
		return SF_DONE
	}

	if r, ok := c.sampler.SampleWeight(); ok {
		c.emitter.Reading(r)
	}

	t.WakeTime = c.clock.Now().Add(c.cfg.GripInterval())
	return SF_RESCHEDULE
}

// stiffnessTick samples the FSR channel once per stabilization interval.
func (c *Controller) stiffnessTick(t *Timer) uint8 {
	if c.sm.Mode() != ModeStiffness {
		return SF_DONE
	}

	if r, ok := c.sampler.SampleForce(); ok {
		c.emitter.Reading(r)
	}

	now := c.clock.Now()
	t.WakeTime = t.WakeTime.Add(c.cfg.StiffnessInterval())
	if !t.WakeTime.After(now) {
		// Fell behind; resync instead of replaying missed samples.
		t.WakeTime = now.Add(c.cfg.StiffnessInterval())
	}
	return SF_RESCHEDULE
}

// motionTick advances the flexion/extension cycle and reschedules itself for
// the profile's next step deadline.
func (c *Controller) motionTick(t *Timer) uint8 {
	if c.sm.Mode() != ModeStiffness || c.motion.Halted() {
		return SF_DONE
	}

	now := c.clock.Now()
	if err := c.motion.CycleTick(now); err != nil {
		c.emitter.Status("FAULT: " + err.Error() + "; actuation halted")
		return SF_DONE
	}

	t.WakeTime = c.motion.NextStepDue()
	if !t.WakeTime.After(now) {
		t.WakeTime = now.Add(c.cfg.StiffnessInterval())
	}
	return SF_RESCHEDULE
}
