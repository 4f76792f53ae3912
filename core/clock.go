package core

import "time"

// Clock supplies monotonic time to the control loop. Motion step cadence and
// emission deadlines are computed from it rather than from loop iteration
// counts, so tick jitter does not change the actuator's angular velocity.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the hardware clock used outside of tests.
var SystemClock Clock = systemClock{}
