// Package analysis computes grip-strength metrics from a recorded telemetry
// CSV: peak force, plateau steadiness, and force decay times.
package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Sample is one calibrated load-cell reading with its host timestamp.
type Sample struct {
	Time  time.Time
	Value float64
}

// ReadRecords loads the rows for one sensor from a session CSV, in file
// order. Rows for other sensors are skipped.
func ReadRecords(path, sensor string) ([]Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 3

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if header[0] != "Timestamp" || header[1] != "Value" || header[2] != "Sensor" {
		return nil, fmt.Errorf("unexpected csv header %v", header)
	}

	var samples []Sample
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if row[2] != sensor {
			continue
		}

		ts, err := time.Parse(time.RFC3339Nano, row[0])
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", row[0], err)
		}
		value, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse value %q: %w", row[1], err)
		}
		samples = append(samples, Sample{Time: ts, Value: value})
	}
	return samples, nil
}

// Peak returns the maximum force in the trace and its sample index.
func Peak(samples []Sample) (float64, int) {
	peak, at := 0.0, -1
	for i, s := range samples {
		if s.Value > peak {
			peak, at = s.Value, i
		}
	}
	return peak, at
}

// PlateauCoefficient returns the coefficient of variation, in percent, over
// the plateau: every sample at or above 90% of peak force. A lower value
// means a steadier sustained grip. With fewer than two plateau samples the
// coefficient is zero.
func PlateauCoefficient(samples []Sample) float64 {
	peak, at := Peak(samples)
	if at < 0 || peak <= 0 {
		return 0
	}

	threshold := 0.9 * peak
	var plateau []float64
	for _, s := range samples {
		if s.Value >= threshold {
			plateau = append(plateau, s.Value)
		}
	}
	if len(plateau) < 2 {
		return 0
	}

	var sum float64
	for _, v := range plateau {
		sum += v
	}
	mean := sum / float64(len(plateau))

	// Sample standard deviation: the plateau readings are a sample of the
	// sustained grip, not the whole population.
	var sq float64
	for _, v := range plateau {
		d := v - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / float64(len(plateau)-1))

	return 100 * stddev / mean
}

// TimeToPercent measures force decay: for each requested percentage of peak,
// the elapsed time from the peak sample to the first later sample at or below
// that level. Percentages the trace never decays to are absent from the map.
func TimeToPercent(samples []Sample, percents []int) map[int]time.Duration {
	decay := make(map[int]time.Duration)
	peak, at := Peak(samples)
	if at < 0 || peak <= 0 {
		return decay
	}

	for _, pct := range percents {
		level := peak * float64(pct) / 100
		for _, s := range samples[at+1:] {
			if s.Value <= level {
				decay[pct] = s.Time.Sub(samples[at].Time)
				break
			}
		}
	}
	return decay
}

// DefaultDecayLevels are the points reported by Summarize.
var DefaultDecayLevels = []int{80, 75, 50, 25}

// Result summarizes one grip assessment.
type Result struct {
	Samples    int
	Peak       float64
	PeakTime   time.Duration // elapsed from the first sample to the peak
	PlateauCV  float64
	DecayTimes map[int]time.Duration
}

// Summarize computes the full metric set for a trace.
func Summarize(samples []Sample) Result {
	peak, at := Peak(samples)
	var peakTime time.Duration
	if at >= 0 {
		peakTime = samples[at].Time.Sub(samples[0].Time)
	}
	return Result{
		Samples:    len(samples),
		Peak:       peak,
		PeakTime:   peakTime,
		PlateauCV:  PlateauCoefficient(samples),
		DecayTimes: TimeToPercent(samples, DefaultDecayLevels),
	}
}

func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "samples: %d\n", r.Samples)
	fmt.Fprintf(&b, "peak force: %.2f at %s\n", r.Peak, r.PeakTime)
	fmt.Fprintf(&b, "plateau CV: %.1f%%\n", r.PlateauCV)

	levels := make([]int, 0, len(r.DecayTimes))
	for pct := range r.DecayTimes {
		levels = append(levels, pct)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))
	for _, pct := range levels {
		fmt.Fprintf(&b, "time to %d%%: %s\n", pct, r.DecayTimes[pct])
	}
	return b.String()
}

// rfdWindow is the initial window over which the rate of force development
// is evaluated.
const rfdWindow = 100 * time.Millisecond

// RelaxationRate returns the mean of the negative slopes between consecutive
// post-peak samples, in force units per second. ok is false when force never
// declines after the peak.
func RelaxationRate(samples []Sample) (float64, bool) {
	_, at := Peak(samples)
	if at < 0 {
		return 0, false
	}

	var sum float64
	var n int
	post := samples[at:]
	for i := 1; i < len(post); i++ {
		dt := post[i].Time.Sub(post[i-1].Time).Seconds()
		if dt <= 0 {
			continue
		}
		if slope := (post[i].Value - post[i-1].Value) / dt; slope < 0 {
			sum += slope
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// Impulse returns the force-time integral over the whole trace, by the
// trapezoidal rule.
func Impulse(samples []Sample) float64 {
	var total float64
	for i := 1; i < len(samples); i++ {
		dt := samples[i].Time.Sub(samples[i-1].Time).Seconds()
		total += (samples[i].Value + samples[i-1].Value) / 2 * dt
	}
	return total
}

// MaxRFD returns the steepest rise between consecutive samples within the
// first 100ms of the trace. ok is false when fewer than two samples fall
// inside the window.
func MaxRFD(samples []Sample) (float64, bool) {
	if len(samples) < 2 {
		return 0, false
	}

	cutoff := samples[0].Time.Add(rfdWindow)
	steepest := math.Inf(-1)
	var n int
	for i := 1; i < len(samples) && !samples[i].Time.After(cutoff); i++ {
		dt := samples[i].Time.Sub(samples[i-1].Time).Seconds()
		if dt <= 0 {
			continue
		}
		if slope := (samples[i].Value - samples[i-1].Value) / dt; slope > steepest {
			steepest = slope
		}
		n++
	}
	if n == 0 {
		return 0, false
	}
	return steepest, true
}

// StiffnessResult summarizes one joint stiffness assessment over the FSR
// trace.
type StiffnessResult struct {
	Samples        int
	PeakForce      float64
	RelaxationRate float64 // mean negative post-peak slope
	HasRelaxation  bool
	Impulse        float64 // force-time integral
	MaxRFD         float64 // steepest rise in the first 100ms
	HasRFD         bool
}

// SummarizeStiffness computes the stiffness metric set for an FSR trace.
func SummarizeStiffness(samples []Sample) StiffnessResult {
	peak, _ := Peak(samples)
	r := StiffnessResult{
		Samples:   len(samples),
		PeakForce: peak,
		Impulse:   Impulse(samples),
	}
	r.RelaxationRate, r.HasRelaxation = RelaxationRate(samples)
	r.MaxRFD, r.HasRFD = MaxRFD(samples)
	return r
}

func (r StiffnessResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "samples: %d\n", r.Samples)
	fmt.Fprintf(&b, "peak force: %.2f\n", r.PeakForce)
	if r.HasRelaxation {
		fmt.Fprintf(&b, "force relaxation rate: %.2f/s\n", r.RelaxationRate)
	} else {
		b.WriteString("force relaxation rate: not calculated\n")
	}
	fmt.Fprintf(&b, "force-time integral: %.2f\n", r.Impulse)
	if r.HasRFD {
		fmt.Fprintf(&b, "max rate of force development (first 100ms): %.2f/s\n", r.MaxRFD)
	} else {
		b.WriteString("max rate of force development: not calculated\n")
	}
	return b.String()
}
