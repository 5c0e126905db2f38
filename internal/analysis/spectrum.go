// Package analysis characterizes frame-time behavior: summary jitter
// statistics and a power spectrum for spotting periodic stutter
// (compositor beats, thermal throttling cycles, misbehaving timers).
package analysis

import (
	"math"
	"math/cmplx"
	"sort"
	"time"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude spectrum of the series. Input is
// zero-padded to a power of two; only the first half (real input) is
// returned.
func PowerSpectrum(samples []float64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	n := 1
	for n < len(samples) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, samples)

	spectrum := fft.FFTReal(padded)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the strongest non-DC frequency in hz,
// given the rate the series was sampled at.
func DominantFrequency(ps []float64, sampleRate float64) float64 {
	maxPower, maxIdx := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			maxIdx = i
		}
	}
	if maxIdx == 0 {
		return 0
	}
	return float64(maxIdx) * sampleRate / float64(2*len(ps))
}

// JitterStats summarizes a frame-duration series.
type JitterStats struct {
	Mean   time.Duration
	StdDev time.Duration
	P95    time.Duration
	Worst  time.Duration
}

// Jitter computes summary statistics over frame durations.
func Jitter(frames []time.Duration) JitterStats {
	if len(frames) == 0 {
		return JitterStats{}
	}

	var sum time.Duration
	worst := frames[0]
	for _, d := range frames {
		sum += d
		if d > worst {
			worst = d
		}
	}
	mean := sum / time.Duration(len(frames))

	var variance float64
	for _, d := range frames {
		diff := float64(d - mean)
		variance += diff * diff
	}
	variance /= float64(len(frames))

	sorted := make([]time.Duration, len(frames))
	copy(sorted, frames)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	p95 := sorted[len(sorted)*95/100]

	return JitterStats{
		Mean:   mean,
		StdDev: time.Duration(math.Sqrt(variance)),
		P95:    p95,
		Worst:  worst,
	}
}
