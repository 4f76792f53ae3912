package core

import (
	"io"
	"strconv"
)

// Emitter formats sensor readings and status text onto the host channel.
// Reading lines are "<value>,<sensor>"; everything else is free text. No
// framing distinguishes the two beyond line shape, so the host parses by
// structure.
type Emitter struct {
	w io.Writer
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Reading writes one telemetry line for an accepted sample. Weight values
// carry two decimals; FSR values are whole raw counts.
func (e *Emitter) Reading(r Reading) {
	decimals := 2
	if r.Sensor == SensorFSR {
		decimals = 0
	}

	line := strconv.FormatFloat(r.Value, 'f', decimals, 64) + "," + r.Sensor.String() + "\n"
	_, _ = io.WriteString(e.w, line)
}

// Status writes a free-text status line. The wire contract has no error
// channel, so write failures are not reported.
func (e *Emitter) Status(text string) {
	_, _ = io.WriteString(e.w, text+"\n")
}

// Banner emits the boot sequence: the readiness line the host waits for,
// setup-confirmation lines, then the command menu.
func (e *Emitter) Banner(setup, menu []string) {
	e.Status("READY")
	for _, line := range setup {
		e.Status(line)
	}
	for _, line := range menu {
		e.Status(line)
	}
}
