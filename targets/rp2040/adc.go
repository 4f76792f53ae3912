//go:build rp2040 || rp2350

package main

import (
	"errors"
	"machine"

	"flexgrip/core"
)

// RpAdcDriver implements core.ADCDriver using TinyGo's machine.ADC.
//
// Channel mapping on the assessment board:
//
//	ChannelLoadCell -> ADC0 (GP26), load-cell amplifier output
//	ChannelFSR      -> ADC1 (GP27), FSR voltage divider
type RpAdcDriver struct {
	channels map[core.ADCChannelID]*machine.ADC
}

func NewRPAdcDriver() *RpAdcDriver {
	return &RpAdcDriver{
		channels: make(map[core.ADCChannelID]*machine.ADC),
	}
}

func (d *RpAdcDriver) pinFor(ch core.ADCChannelID) (machine.Pin, error) {
	switch ch {
	case core.ChannelLoadCell:
		return machine.ADC0, nil
	case core.ChannelFSR:
		return machine.ADC1, nil
	}
	return machine.NoPin, errors.New("unsupported ADC channel")
}

// ConfigureChannel sets up the pin mux for a sensor channel.
func (d *RpAdcDriver) ConfigureChannel(ch core.ADCChannelID) error {
	if _, ok := d.channels[ch]; ok {
		// already configured
		return nil
	}

	pin, err := d.pinFor(ch)
	if err != nil {
		return err
	}

	adc := machine.ADC{Pin: pin}
	if err := adc.Configure(machine.ADCConfig{}); err != nil {
		return err
	}

	d.channels[ch] = &adc
	return nil
}

// ReadRaw returns a raw 12-bit value (0-4095) from a sensor channel.
func (d *RpAdcDriver) ReadRaw(ch core.ADCChannelID) (core.ADCValue, error) {
	adc, ok := d.channels[ch]
	if !ok {
		if err := d.ConfigureChannel(ch); err != nil {
			return 0, err
		}
		adc = d.channels[ch]
	}

	// TinyGo rp2040 ADC returns a 12-bit value in the upper bits of a
	// uint16; shift back down so the calibration range matches the ADC.
	return core.ADCValue(adc.Get() >> 4), nil
}
