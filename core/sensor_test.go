package core

import (
	"errors"
	"testing"
)

// mockADC scripts per-channel conversion results.
type mockADC struct {
	loadCell []ADCValue // consumed in order; the last value repeats
	fsr      ADCValue

	loadCellErr error
	fsrErr      error

	loadCellReads int
	fsrReads      int
}

func (a *mockADC) ConfigureChannel(ch ADCChannelID) error { return nil }

func (a *mockADC) ReadRaw(ch ADCChannelID) (ADCValue, error) {
	switch ch {
	case ChannelLoadCell:
		a.loadCellReads++
		if a.loadCellErr != nil {
			return 0, a.loadCellErr
		}
		if len(a.loadCell) == 0 {
			return 0, nil
		}
		v := a.loadCell[0]
		if len(a.loadCell) > 1 {
			a.loadCell = a.loadCell[1:]
		}
		return v, nil
	case ChannelFSR:
		a.fsrReads++
		if a.fsrErr != nil {
			return 0, a.fsrErr
		}
		return a.fsr, nil
	}
	return 0, errors.New("unknown channel")
}

func TestSampleWeightAveragesAndCalibrates(t *testing.T) {
	adc := &mockADC{loadCell: []ADCValue{100, 110, 120, 130, 140}}
	s := NewSampler(adc, Calibration{Offset: 20, Scale: 0.5}, 5)

	r, ok := s.SampleWeight()
	if !ok {
		t.Fatal("expected an accepted sample")
	}
	if adc.loadCellReads != 5 {
		t.Errorf("expected 5 conversions, got %d", adc.loadCellReads)
	}
	// avg = 120, (120 - 20) * 0.5 = 50
	if r.Value != 50 {
		t.Errorf("expected calibrated value 50, got %f", r.Value)
	}
	if r.Sensor != SensorWeight {
		t.Errorf("expected Weight channel tag, got %v", r.Sensor)
	}
}

func TestSampleWeightDropsNegative(t *testing.T) {
	adc := &mockADC{loadCell: []ADCValue{10}}
	s := NewSampler(adc, Calibration{Offset: 100, Scale: 1}, 5)

	if _, ok := s.SampleWeight(); ok {
		t.Error("negative calibrated weight was not dropped")
	}
}

func TestSampleWeightDropsOnReadError(t *testing.T) {
	adc := &mockADC{loadCellErr: errors.New("conversion failed")}
	s := NewSampler(adc, Calibration{Scale: 1}, 5)

	if _, ok := s.SampleWeight(); ok {
		t.Error("failed conversion was not dropped")
	}
}

func TestSampleForceSingleRawRead(t *testing.T) {
	adc := &mockADC{fsr: 512}
	// A calibration that would distort the value if it were applied.
	s := NewSampler(adc, Calibration{Offset: 100, Scale: 10}, 5)

	r, ok := s.SampleForce()
	if !ok {
		t.Fatal("expected an accepted sample")
	}
	if adc.fsrReads != 1 {
		t.Errorf("expected exactly 1 conversion, got %d", adc.fsrReads)
	}
	if r.Value != 512 {
		t.Errorf("expected raw value 512, got %f", r.Value)
	}
	if r.Sensor != SensorFSR {
		t.Errorf("expected FSR channel tag, got %v", r.Sensor)
	}
}

func TestSampleForceDropsOnReadError(t *testing.T) {
	adc := &mockADC{fsrErr: errors.New("conversion failed")}
	s := NewSampler(adc, Calibration{Scale: 1}, 5)

	if _, ok := s.SampleForce(); ok {
		t.Error("failed conversion was not dropped")
	}
}

func TestSamplerDefaultsSampleCount(t *testing.T) {
	adc := &mockADC{loadCell: []ADCValue{100}}
	s := NewSampler(adc, Calibration{Scale: 1}, 0)

	if _, ok := s.SampleWeight(); !ok {
		t.Fatal("expected an accepted sample")
	}
	if adc.loadCellReads != DefaultLoadCellSamples {
		t.Errorf("expected %d conversions, got %d", DefaultLoadCellSamples, adc.loadCellReads)
	}
}
