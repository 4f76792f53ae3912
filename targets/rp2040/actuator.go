//go:build rp2040 || rp2350

package main

import (
	"machine"

	"tinygo.org/x/drivers/easystepper"
)

// easyStepperBackend adapts an easystepper 4-wire driver to
// core.ActuatorBackend. Step timing is owned by the motion profile; the
// driver's RPM only bounds the coil switch rate inside a single step.
type easyStepperBackend struct {
	device *easystepper.Device
}

func newEasyStepperBackend(pin1, pin2, pin3, pin4 machine.Pin, stepCount uint, rpm uint32) (*easyStepperBackend, error) {
	device, err := easystepper.New(easystepper.DeviceConfig{
		Pin1:      pin1,
		Pin2:      pin2,
		Pin3:      pin3,
		Pin4:      pin4,
		StepCount: stepCount,
		RPM:       rpm,
	})
	if err != nil {
		return nil, err
	}
	device.Configure()
	return &easyStepperBackend{device: device}, nil
}

func (b *easyStepperBackend) Step(forward bool) {
	if forward {
		b.device.Move(1)
	} else {
		b.device.Move(-1)
	}
}

// Release de-energizes all coils so the joint can be moved freely.
func (b *easyStepperBackend) Release() {
	b.device.Off()
}

func (b *easyStepperBackend) Name() string {
	return "easystepper/4wire"
}
