// Package period estimates the fundamental period of a quasi-periodic
// signal via FFT-based autocorrelation. It is the analysis counterpart
// to the freeze engine: given a captured loop, it reports the period
// the engine locked onto and the corresponding frequency.
package period

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultMinFrequencyHz = 20.0
	defaultMaxFrequencyHz = 5000.0
	minSignalLength       = 32
)

// ErrNoPeriodicity is returned when no autocorrelation peak stands out
// in the configured frequency range (e.g. noise or silence).
var ErrNoPeriodicity = errors.New("no periodicity detected")

// Result holds a period estimate.
type Result struct {
	// PeriodSamples is the estimated fundamental period in samples,
	// refined to sub-sample precision by parabolic interpolation.
	PeriodSamples float64
	// FrequencyHz is sampleRate / PeriodSamples.
	FrequencyHz float64
	// Confidence is the normalized autocorrelation at the detected
	// lag, in (0, 1]; values near 1 indicate a strongly periodic
	// signal.
	Confidence float64
}

// Option configures an estimate.
type Option func(*config)

type config struct {
	minFreqHz float64
	maxFreqHz float64
}

// WithFrequencyRange restricts the search to fundamentals in
// [minHz, maxHz].
func WithFrequencyRange(minHz, maxHz float64) Option {
	return func(cfg *config) {
		if minHz > 0 && maxHz > minHz {
			cfg.minFreqHz = minHz
			cfg.maxFreqHz = maxHz
		}
	}
}

// Estimate detects the fundamental period of signal.
//
// The autocorrelation is computed through the power spectrum
// (Wiener-Khinchin): FFT of the zero-padded, mean-removed signal,
// squared magnitudes, inverse FFT. The strongest normalized peak in
// the lag range implied by the frequency bounds wins.
func Estimate(signal []float64, sampleRate float64, opts ...Option) (Result, error) {
	if len(signal) < minSignalLength {
		return Result{}, fmt.Errorf("period signal must have >= %d samples: %d",
			minSignalLength, len(signal))
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Result{}, fmt.Errorf("period sample rate must be > 0: %f", sampleRate)
	}

	cfg := config{
		minFreqHz: defaultMinFrequencyHz,
		maxFreqHz: defaultMaxFrequencyHz,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	autocorr, err := autocorrelate(signal)
	if err != nil {
		return Result{}, err
	}

	if autocorr[0] <= 0 {
		return Result{}, ErrNoPeriodicity
	}

	minLag := int(math.Floor(sampleRate / cfg.maxFreqHz))
	if minLag < 2 {
		minLag = 2
	}

	maxLag := int(math.Ceil(sampleRate / cfg.minFreqHz))
	if maxLag > len(signal)-1 {
		maxLag = len(signal) - 1
	}

	if minLag >= maxLag {
		return Result{}, fmt.Errorf("period lag range empty: [%d, %d]", minLag, maxLag)
	}

	bestLag := -1
	bestValue := 0.0

	for lag := minLag; lag <= maxLag; lag++ {
		if autocorr[lag] > bestValue {
			bestValue = autocorr[lag]
			bestLag = lag
		}
	}

	confidence := bestValue / autocorr[0]
	if bestLag < 0 || confidence < 0.2 {
		return Result{}, ErrNoPeriodicity
	}

	lag := refinePeak(autocorr, bestLag)

	return Result{
		PeriodSamples: lag,
		FrequencyHz:   sampleRate / lag,
		Confidence:    confidence,
	}, nil
}

// autocorrelate returns the (unnormalized) autocorrelation of the
// mean-removed signal for lags [0, len(signal)).
func autocorrelate(signal []float64) ([]float64, error) {
	n := len(signal)
	fftSize := nextPowerOf2(2 * n)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("period: failed to create FFT plan: %w", err)
	}

	mean := 0.0
	for _, v := range signal {
		mean += v
	}
	mean /= float64(n)

	padded := make([]complex128, fftSize)
	for i, v := range signal {
		padded[i] = complex(v-mean, 0)
	}

	spec := make([]complex128, fftSize)

	err = plan.Forward(spec, padded)
	if err != nil {
		return nil, fmt.Errorf("period: forward FFT failed: %w", err)
	}

	re := make([]float64, fftSize)
	im := make([]float64, fftSize)
	power := make([]float64, fftSize)

	for i, c := range spec {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Power(power, re, im)

	for i := range spec {
		spec[i] = complex(power[i], 0)
	}

	err = plan.Inverse(padded, spec)
	if err != nil {
		return nil, fmt.Errorf("period: inverse FFT failed: %w", err)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = real(padded[i])
	}

	return out, nil
}

// refinePeak fits a parabola through the peak and its neighbors and
// returns the fractional lag of the vertex.
func refinePeak(autocorr []float64, lag int) float64 {
	if lag <= 0 || lag >= len(autocorr)-1 {
		return float64(lag)
	}

	left := autocorr[lag-1]
	center := autocorr[lag]
	right := autocorr[lag+1]

	denom := left - 2*center + right
	if denom == 0 {
		return float64(lag)
	}

	delta := 0.5 * (left - right) / denom
	if delta < -0.5 || delta > 0.5 {
		return float64(lag)
	}

	return float64(lag) + delta
}

func nextPowerOf2(n int) int {
	size := 1
	for size < n {
		size *= 2
	}
	return size
}
