//go:build rp2040 || rp2350

package main

import (
	"context"
	"machine"
	"time"

	"flexgrip/core"
)

// serialSource feeds host command bytes into the interpreter without ever
// blocking the control loop.
type serialSource struct{}

func (serialSource) TryReadByte() (byte, bool) {
	if machine.Serial.Buffered() == 0 {
		return 0, false
	}
	b, err := machine.Serial.ReadByte()
	if err != nil {
		return 0, false
	}
	return b, true
}

// serialWriter sends telemetry and status lines back over the same channel.
type serialWriter struct{}

func (serialWriter) Write(p []byte) (int, error) {
	return machine.Serial.Write(p)
}

func main() {
	// Give the USB CDC link a moment to enumerate before the banner.
	time.Sleep(500 * time.Millisecond)

	machine.InitADC()

	backend, err := newEasyStepperBackend(
		machine.GP16, machine.GP17, machine.GP18, machine.GP19,
		2048, // 28BYJ-48 full revolution
		12,
	)
	if err != nil {
		for {
			println("actuator init failed:", err.Error())
			time.Sleep(5 * time.Second)
		}
	}

	ctrl, err := core.NewController(
		core.DefaultConfig(),
		serialSource{},
		NewRPAdcDriver(),
		backend,
		serialWriter{},
		core.SystemClock,
	)
	if err != nil {
		for {
			println("controller init failed:", err.Error())
			time.Sleep(5 * time.Second)
		}
	}

	// Run never returns on-device; the context exists for the shared core.
	_ = ctrl.Run(context.Background())
}
