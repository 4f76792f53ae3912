package core

// ActuatorBackend defines the hardware abstraction for the flexion actuator.
// Implementations sequence the motor coils via GPIO or a driver chip.
type ActuatorBackend interface {
	// Step advances the motor exactly one step. forward=true moves toward
	// extension. Called from the tick loop; must return promptly.
	Step(forward bool)

	// Release de-energizes the output stage so the finger can move freely
	// with no holding torque. The next Step call re-energizes the coils.
	Release()

	// Name returns the backend implementation name.
	Name() string
}
