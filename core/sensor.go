package core

// SensorType tags a reading with its originating channel.
type SensorType uint8

const (
	SensorWeight SensorType = iota
	SensorFSR
)

func (s SensorType) String() string {
	switch s {
	case SensorWeight:
		return "Weight"
	case SensorFSR:
		return "FSR"
	}
	return "Unknown"
}

// Reading is a single sampled value. Readings are transient: produced once
// per sampling event, handed to the emitter, never stored on-device.
type Reading struct {
	Value  float64
	Sensor SensorType
}

// Calibration nulls the load-cell zero drift and converts raw counts to
// physical units. The pair is fixed at initialization and never changes for
// the device's operating lifetime.
type Calibration struct {
	Offset float64 `json:"offset"`
	Scale  float64 `json:"scale"`
}

// Apply converts a raw averaged count to a calibrated value.
func (c Calibration) Apply(raw float64) float64 {
	return (raw - c.Offset) * c.Scale
}

// Sampler reads the two sensor channels. Both share the same post-read
// policy: a negative or failed reading is dropped without any upstream
// signal.
type Sampler struct {
	adc         ADCDriver
	calibration Calibration
	samples     int
}

func NewSampler(adc ADCDriver, calibration Calibration, samples int) *Sampler {
	if samples <= 0 {
		samples = DefaultLoadCellSamples
	}

	return &Sampler{
		adc:         adc,
		calibration: calibration,
		samples:     samples,
	}
}

// SampleWeight averages several load-cell conversions and applies the fixed
// calibration. The repeated conversions make this call cost tens of
// milliseconds on hardware, so it is only invoked from the low-frequency
// grip path. ok is false when the sample was dropped.
func (s *Sampler) SampleWeight() (Reading, bool) {
	var sum uint32
	for i := 0; i < s.samples; i++ {
		v, err := s.adc.ReadRaw(ChannelLoadCell)
		if err != nil {
			return Reading{}, false
		}
		sum += uint32(v)
	}

	value := s.calibration.Apply(float64(sum) / float64(s.samples))
	if value < 0 {
		return Reading{}, false
	}

	return Reading{Value: value, Sensor: SensorWeight}, true
}

// SampleForce performs a single raw FSR conversion. No averaging, no
// calibration transform; cheap enough to run every stiffness tick.
func (s *Sampler) SampleForce() (Reading, bool) {
	v, err := s.adc.ReadRaw(ChannelFSR)
	if err != nil {
		return Reading{}, false
	}

	value := float64(v)
	if value < 0 {
		return Reading{}, false
	}

	return Reading{Value: value, Sensor: SensorFSR}, true
}
