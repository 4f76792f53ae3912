package core

// ADCChannelID identifies a logical ADC channel on the target.
type ADCChannelID uint8

// The device carries exactly two sensor channels: the amplified load cell for
// grip strength and the FSR for flexion resistance.
const (
	ChannelLoadCell ADCChannelID = iota
	ChannelFSR
)

// ADCValue is a raw conversion result as seen by the rest of the firmware.
type ADCValue uint16

// ADCDriver is the abstract ADC interface the sampler reads through.
type ADCDriver interface {
	// ConfigureChannel prepares a channel for analog input.
	ConfigureChannel(ch ADCChannelID) error

	// ReadRaw performs a one-shot conversion on the given channel.
	ReadRaw(ch ADCChannelID) (ADCValue, error)
}
