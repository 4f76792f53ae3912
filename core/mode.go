package core

// Mode identifies the device operating mode. Exactly one mode is active at a
// time and it is the sole dispatch key for the control loop.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeGrip
	ModeStiffness
	ModeStopping
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "Idle"
	case ModeGrip:
		return "Grip Strength"
	case ModeStiffness:
		return "Joint Stiffness"
	case ModeStopping:
		return "Stopping"
	}
	return "Unknown"
}

// StateMachine owns the current Mode. Every transition goes through Set; no
// other component writes the mode directly. The device boots in ModeIdle.
type StateMachine struct {
	mode    Mode
	onEnter func(Mode)
}

// NewStateMachine creates a state machine in ModeIdle. onEnter is invoked on
// every Set call, including re-entry into the already active mode.
func NewStateMachine(onEnter func(Mode)) *StateMachine {
	return &StateMachine{
		mode:    ModeIdle,
		onEnter: onEnter,
	}
}

// Mode returns the active mode.
func (s *StateMachine) Mode() Mode {
	return s.mode
}

// Set is the controlled transition function. It assigns the mode and notifies
// the owner so per-mode cadence timers can be rearmed.
func (s *StateMachine) Set(m Mode) {
	s.mode = m
	if s.onEnter != nil {
		s.onEnter(m)
	}
}
